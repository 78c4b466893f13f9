package classify

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// PatternRule binds a merchant substring to a fixed label, bypassing the LLM
// for descriptions it matches.
type PatternRule struct {
	Pattern string
	Label   Label
}

// DefaultPatternRules cover merchants frequent enough in local statements
// that calling a model for them is wasted spend.
var DefaultPatternRules = []PatternRule{
	{Pattern: "NTUC", Label: Label{Category: "Groceries", Subcategory: "Groceries"}},
	{Pattern: "FAIRPRICE", Label: Label{Category: "Groceries", Subcategory: "Groceries"}},
	{Pattern: "COLD STORAGE", Label: Label{Category: "Groceries", Subcategory: "Groceries"}},
	{Pattern: "SHENG SIONG", Label: Label{Category: "Groceries", Subcategory: "Groceries"}},
	{Pattern: "GRABFOOD", Label: Label{Category: "Food & Dining", Subcategory: "Grab Food"}},
	{Pattern: "GRAB* A-", Label: Label{Category: "Transportation", Subcategory: "Grab Car/Taxi"}},
	{Pattern: "GETGO", Label: Label{Category: "Transportation", Subcategory: "GetGo Rental Car"}},
	{Pattern: "SHELL", Label: Label{Category: "Transportation", Subcategory: "Car Refuel"}},
	{Pattern: "CALTEX", Label: Label{Category: "Transportation", Subcategory: "Car Refuel"}},
	{Pattern: "EZ-LINK", Label: Label{Category: "Utilities", Subcategory: "Cash Card"}},
	{Pattern: "TRANSIT LINK", Label: Label{Category: "Transportation", Subcategory: "Public Transport"}},
	{Pattern: "NETFLIX", Label: Label{Category: "Utilities", Subcategory: "Subscriptions"}},
	{Pattern: "SPOTIFY", Label: Label{Category: "Utilities", Subcategory: "Subscriptions"}},
	{Pattern: "SHOPEE", Label: Label{Category: "Shopping", Subcategory: "Online Shopping"}},
	{Pattern: "LAZADA", Label: Label{Category: "Shopping", Subcategory: "Online Shopping"}},
	{Pattern: "AMAZON", Label: Label{Category: "Shopping", Subcategory: "Online Shopping"}},
	{Pattern: "SINGTEL", Label: Label{Category: "Utilities", Subcategory: "Mobile Phone"}},
	{Pattern: "SP SERVICES", Label: Label{Category: "Utilities", Subcategory: "Electricity & Gas"}},
	{Pattern: "GUARDIAN", Label: Label{Category: "Others", Subcategory: "Medical"}},
	{Pattern: "WATSONS", Label: Label{Category: "Others", Subcategory: "Medical"}},
}

// patternIndex is an Aho-Corasick automaton over uppercase merchant
// substrings; one scan resolves all rules at once.
type patternIndex struct {
	matcher *ahocorasick.Matcher
	labels  []Label
}

func newPatternIndex(rules []PatternRule) *patternIndex {
	if len(rules) == 0 {
		return nil
	}
	patterns := make([][]byte, len(rules))
	labels := make([]Label, len(rules))
	for i, r := range rules {
		patterns[i] = []byte(strings.ToUpper(r.Pattern))
		labels[i] = r.Label
	}
	return &patternIndex{matcher: ahocorasick.NewMatcher(patterns), labels: labels}
}

// lookup returns the label of the first rule (in declaration order) whose
// pattern occurs in the description.
func (p *patternIndex) lookup(description string) (Label, bool) {
	if p == nil {
		return Label{}, false
	}
	hits := p.matcher.Match([]byte(strings.ToUpper(description)))
	if len(hits) == 0 {
		return Label{}, false
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h < best {
			best = h
		}
	}
	return p.labels[best], true
}
