package morph

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of chunk analyses kept by Cached.
const DefaultCacheSize = 1024

// Cached remembers successful analyses keyed by chunk text.
// Choruses and re-crawled songs produce identical chunks, so repeated input is common.
// Failures are not cached.
type Cached struct {
	next  Analyzer
	cache *lru.Cache[string, []Morpheme]
}

// NewCached wraps next with an LRU cache of the given size.
func NewCached(next Analyzer, size int) (*Cached, error) {
	if next == nil {
		return nil, fmt.Errorf("cached analyzer requires an analyzer")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []Morpheme](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// Analyze returns the cached analysis of text or delegates to the wrapped analyzer.
func (c *Cached) Analyze(ctx context.Context, text string) ([]Morpheme, error) {
	if cached, ok := c.cache.Get(text); ok {
		return cached, nil
	}
	morphemes, err := c.next.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, morphemes)
	return morphemes, nil
}

// AnalyzeBatch serves hits from the cache and sends only the misses downstream.
func (c *Cached) AnalyzeBatch(ctx context.Context, texts []string) []Result {
	results := make([]Result, len(texts))
	var missIndices []int
	var missTexts []string

	for i, text := range texts {
		if cached, ok := c.cache.Get(text); ok {
			results[i] = Ok(cached)
			continue
		}
		missIndices = append(missIndices, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return results
	}

	fresh := AnalyzeAll(ctx, c.next, missTexts)
	for j, idx := range missIndices {
		if j >= len(fresh) {
			results[idx] = Failed(fmt.Errorf("%w: missing result", ErrAnalysis))
			continue
		}
		results[idx] = fresh[j]
		if !fresh[j].Failed() {
			c.cache.Add(missTexts[j], fresh[j].Morphemes)
		}
	}
	return results
}

// Len returns the number of cached analyses.
func (c *Cached) Len() int {
	return c.cache.Len()
}
