package classify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// noPatterns disables the pre-pass so every item reaches the completer.
func noPatterns(e *Engine) *Engine {
	return e.WithPatternRules(nil)
}

func TestClassifyPreservesOrderUnderConcurrency(t *testing.T) {
	descriptions := []string{"merchant zero", "merchant one", "merchant two", "merchant three"}

	// Later submissions finish first; results must still line up by index.
	var remaining atomic.Int32
	remaining.Store(int32(len(descriptions)))
	completer := completerFunc(func(ctx context.Context, prompt string) (string, error) {
		delay := time.Duration(remaining.Add(-1)) * 20 * time.Millisecond
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		for i, d := range descriptions {
			if containsDescription(prompt, d) {
				return fmt.Sprintf(`{"category": "Others", "subcategory": "%s"}`, subFor(i)), nil
			}
		}
		return "", errors.New("unknown prompt")
	})

	engine := noPatterns(NewEngine(completer, testLogger()).WithWorkers(4))
	labels := engine.Classify(context.Background(), descriptions)

	require.Len(t, labels, len(descriptions))
	for i := range descriptions {
		assert.Equal(t, subFor(i), labels[i].Subcategory, "index %d", i)
	}
}

func subFor(i int) string {
	// Cycle through real subcategories so taxonomy snapping keeps them.
	subs := DefaultTaxonomy[5].Subcategories
	return subs[i%len(subs)]
}

func containsDescription(prompt, desc string) bool {
	return strings.HasSuffix(prompt, desc+"\n")
}

func TestClassifyIsolatesFailures(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, prompt string) (string, error) {
		if containsDescription(prompt, "broken merchant") {
			return "", errors.New("boom")
		}
		return `{"category": "Groceries", "subcategory": "Groceries"}`, nil
	})

	engine := noPatterns(NewEngine(completer, testLogger()).WithWorkers(2))
	labels := engine.Classify(context.Background(), []string{"good merchant", "broken merchant", "another good one"})

	assert.Equal(t, "Groceries", labels[0].Category)
	assert.Equal(t, Uncategorized, labels[1])
	assert.Equal(t, "Groceries", labels[2].Category)
}

func TestClassifyPerItemTimeout(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	engine := noPatterns(NewEngine(completer, testLogger()).WithTimeout(10 * time.Millisecond))
	labels := engine.Classify(context.Background(), []string{"slow merchant"})

	assert.Equal(t, Uncategorized, labels[0])
}

func TestClassifyNilCompleterDegrades(t *testing.T) {
	engine := noPatterns(NewEngine(nil, testLogger()))
	labels := engine.Classify(context.Background(), []string{"a", "b"})

	assert.Equal(t, []Label{Uncategorized, Uncategorized}, labels)
}

func TestClassifyPatternPrePassSkipsCompleter(t *testing.T) {
	var calls atomic.Int32
	completer := completerFunc(func(ctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		return `{"category": "Others", "subcategory": "Leisure"}`, nil
	})

	engine := NewEngine(completer, testLogger())
	labels := engine.Classify(context.Background(), []string{
		"NTUC FAIRPRICE JURONG",
		"NETFLIX.COM SINGAPORE",
		"SOME UNKNOWN MERCHANT",
	})

	assert.Equal(t, Label{Category: "Groceries", Subcategory: "Groceries"}, labels[0])
	assert.Equal(t, Label{Category: "Utilities", Subcategory: "Subscriptions"}, labels[1])
	assert.Equal(t, "Others", labels[2].Category)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClassifyEmptyInput(t *testing.T) {
	engine := NewEngine(nil, testLogger())
	assert.Empty(t, engine.Classify(context.Background(), nil))
}
