package classify

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Engine classifies description batches. It is a total function: every input
// position gets a label, and any per-item failure degrades that position to
// Uncategorized without affecting its neighbors.
type Engine struct {
	completer Completer
	logger    *slog.Logger
	taxonomy  []Category
	patterns  *patternIndex
	limiter   *rate.Limiter
	workers   int
	timeout   time.Duration
}

// NewEngine builds an engine with the default taxonomy and pattern rules.
// A nil completer is allowed; every non-pattern item then degrades.
func NewEngine(completer Completer, logger *slog.Logger) *Engine {
	return &Engine{
		completer: completer,
		logger:    logger,
		taxonomy:  DefaultTaxonomy,
		patterns:  newPatternIndex(DefaultPatternRules),
		workers:   4,
		timeout:   30 * time.Second,
	}
}

// WithWorkers sets the worker pool size. Values below 1 are clamped.
func (e *Engine) WithWorkers(n int) *Engine {
	if n < 1 {
		n = 1
	}
	e.workers = n
	return e
}

// WithTimeout sets the per-item completion deadline.
func (e *Engine) WithTimeout(d time.Duration) *Engine {
	if d > 0 {
		e.timeout = d
	}
	return e
}

// WithRateLimit caps completion requests per second across all workers.
func (e *Engine) WithRateLimit(rps float64, burst int) *Engine {
	if rps > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return e
}

// WithPatternRules replaces the built-in merchant rules.
func (e *Engine) WithPatternRules(rules []PatternRule) *Engine {
	e.patterns = newPatternIndex(rules)
	return e
}

// WithTaxonomy replaces the label set offered to the model.
func (e *Engine) WithTaxonomy(taxonomy []Category) *Engine {
	e.taxonomy = taxonomy
	return e
}

type job struct {
	index       int
	description string
}

type outcome struct {
	index int
	label Label
}

// Classify labels every description. The result slice is positionally
// aligned with the input regardless of worker completion order.
func (e *Engine) Classify(ctx context.Context, descriptions []string) []Label {
	labels := make([]Label, len(descriptions))
	if len(descriptions) == 0 {
		return labels
	}

	// Pattern pre-pass: resolve what we can locally, queue the rest.
	var pending []job
	for i, desc := range descriptions {
		if label, ok := e.patterns.lookup(desc); ok {
			labels[i] = label
			continue
		}
		pending = append(pending, job{index: i, description: desc})
	}
	if len(pending) == 0 {
		return labels
	}

	jobs := make(chan job)
	outcomes := make(chan outcome, len(pending))

	var wg sync.WaitGroup
	workers := e.workers
	if workers > len(pending) {
		workers = len(pending)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes <- outcome{index: j.index, label: e.classifyOne(ctx, j.description)}
			}
		}()
	}

	for _, j := range pending {
		jobs <- j
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	collected := make([]outcome, 0, len(pending))
	for o := range outcomes {
		collected = append(collected, o)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })
	for _, o := range collected {
		labels[o.index] = o.label
	}

	return labels
}

func (e *Engine) classifyOne(ctx context.Context, description string) Label {
	if e.completer == nil {
		return Uncategorized
	}

	itemCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if e.limiter != nil {
		if err := e.limiter.Wait(itemCtx); err != nil {
			e.logger.Warn("rate limit wait aborted", "description", description, "error", err)
			return Uncategorized
		}
	}

	raw, err := e.completer.Complete(itemCtx, buildPrompt(e.taxonomy, description))
	if err != nil {
		e.logger.Warn("classification degraded", "description", description, "error", err)
		return Uncategorized
	}

	label := parseResponse(raw, e.taxonomy)
	e.logger.Debug("classified description",
		"description", description,
		"category", label.Category,
		"subcategory", label.Subcategory,
		"raw_response", raw,
	)
	return label
}
