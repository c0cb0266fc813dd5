package morph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAnalyzer struct {
	calls int
	fail  map[string]bool
}

func (a *countingAnalyzer) Analyze(_ context.Context, text string) ([]Morpheme, error) {
	a.calls++
	if a.fail[text] {
		return nil, errors.New("boom")
	}
	return []Morpheme{{Surface: text, BaseForm: text, POS: "名詞"}}, nil
}

type batchAnalyzer struct {
	countingAnalyzer
	batches [][]string
}

func (a *batchAnalyzer) AnalyzeBatch(ctx context.Context, texts []string) []Result {
	a.batches = append(a.batches, texts)
	out := make([]Result, len(texts))
	for i, text := range texts {
		m, err := a.countingAnalyzer.Analyze(ctx, text)
		if err != nil {
			out[i] = Failed(err)
			continue
		}
		out[i] = Ok(m)
	}
	return out
}

func TestResult(t *testing.T) {
	assert.False(t, Ok(nil).Failed())
	assert.True(t, Failed(errors.New("x")).Failed())
	assert.ErrorIs(t, Failed(nil).Err, ErrAnalysis)
}

func TestAnalyzeAll(t *testing.T) {
	a := &countingAnalyzer{fail: map[string]bool{"bad": true}}

	results := AnalyzeAll(context.Background(), a, []string{"one", "bad", "two"})
	require.Len(t, results, 3)
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.Equal(t, "two", results[2].Morphemes[0].Surface)
}

func TestAnalyzeAll_UsesBatch(t *testing.T) {
	a := &batchAnalyzer{}

	results := AnalyzeAll(context.Background(), a, []string{"a", "b"})
	require.Len(t, results, 2)
	assert.Equal(t, [][]string{{"a", "b"}}, a.batches)
}

func TestCached_Analyze(t *testing.T) {
	inner := &countingAnalyzer{fail: map[string]bool{"bad": true}}
	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		m, err := c.Analyze(ctx, "サビ")
		require.NoError(t, err)
		assert.Equal(t, "サビ", m[0].Surface)
	}
	assert.Equal(t, 1, inner.calls)

	_, err = c.Analyze(ctx, "bad")
	require.Error(t, err)
	_, err = c.Analyze(ctx, "bad")
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls, "failures must not be cached")
	assert.Equal(t, 1, c.Len())
}

func TestCached_AnalyzeBatch(t *testing.T) {
	inner := &batchAnalyzer{countingAnalyzer: countingAnalyzer{fail: map[string]bool{"bad": true}}}
	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Analyze(ctx, "a")
	require.NoError(t, err)

	results := c.AnalyzeBatch(ctx, []string{"a", "b", "bad"})
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Morphemes[0].Surface)
	assert.Equal(t, "b", results[1].Morphemes[0].Surface)
	assert.True(t, results[2].Failed())
	assert.Equal(t, [][]string{{"b", "bad"}}, inner.batches, "only misses go downstream")
}

func TestNewCached_NilAnalyzer(t *testing.T) {
	_, err := NewCached(nil, 1)
	require.Error(t, err)
}
