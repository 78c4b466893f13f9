package classify

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	fencedJSON = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	labelPair  = regexp.MustCompile(`"category":\s*"(.*?)",\s*"subcategory":\s*"(.*?)"`)
)

type labelPayload struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// parseResponse extracts a label from model output. Models wrap JSON in
// fences, prose, or both, so extraction is a ladder: fenced block, first
// brace-to-brace slice, then a bare regex over the key pair. Anything that
// still fails degrades to Uncategorized.
func parseResponse(raw string, taxonomy []Category) Label {
	for _, candidate := range jsonCandidates(raw) {
		var payload labelPayload
		if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
			continue
		}
		if payload.Category == "" || payload.Subcategory == "" {
			continue
		}
		return snapToTaxonomy(Label{Category: payload.Category, Subcategory: payload.Subcategory}, taxonomy)
	}

	if m := labelPair.FindStringSubmatch(raw); m != nil && m[1] != "" && m[2] != "" {
		return snapToTaxonomy(Label{Category: m[1], Subcategory: m[2]}, taxonomy)
	}

	return Uncategorized
}

func jsonCandidates(raw string) []string {
	var out []string
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			out = append(out, raw[start:end+1])
		}
	}
	return out
}

// snapToTaxonomy maps a free-form model label onto the closed set. Exact
// match wins; otherwise fuzzy rank picks the closest name, and an
// unmatchable category degrades the whole label.
func snapToTaxonomy(l Label, taxonomy []Category) Label {
	if len(taxonomy) == 0 {
		return l
	}

	cat := matchCategory(l.Category, taxonomy)
	if cat == nil {
		return Uncategorized
	}

	sub := matchName(l.Subcategory, cat.Subcategories)
	if sub == "" {
		if len(cat.Subcategories) == 0 {
			return Uncategorized
		}
		sub = cat.Subcategories[0]
	}

	return Label{Category: cat.Name, Subcategory: sub}
}

func matchCategory(name string, taxonomy []Category) *Category {
	names := make([]string, len(taxonomy))
	for i, c := range taxonomy {
		names[i] = c.Name
	}
	matched := matchName(name, names)
	for i := range taxonomy {
		if taxonomy[i].Name == matched {
			return &taxonomy[i]
		}
	}
	return nil
}

func matchName(name string, candidates []string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	for _, c := range candidates {
		if strings.EqualFold(c, name) {
			return c
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}
