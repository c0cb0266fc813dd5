// Package morph defines the morphological analyzer capability used by the tokenizer
// and its implementations.
package morph

import (
	"context"
	"errors"
)

// Morpheme is a single analyzed unit of text.
type Morpheme struct {
	// Surface is the text as it appeared in the input.
	Surface string `json:"surface"`
	// BaseForm is the dictionary (lemma) form.
	BaseForm string `json:"baseForm"`
	// POS is the primary part-of-speech tag. The vocabulary is analyzer-defined.
	POS string `json:"pos"`
}

// Analyzer turns text into morphemes.
// Implementations must accept input up to the chunker's hard limit.
type Analyzer interface {
	Analyze(ctx context.Context, text string) ([]Morpheme, error)
}

// BatchAnalyzer analyzes several texts in one call.
// It returns exactly one Result per text, in input order.
type BatchAnalyzer interface {
	Analyzer
	AnalyzeBatch(ctx context.Context, texts []string) []Result
}

// Result is the outcome of analyzing one chunk.
type Result struct {
	Morphemes []Morpheme
	Err       error
}

// Ok wraps a successful analysis.
func Ok(morphemes []Morpheme) Result {
	return Result{Morphemes: morphemes}
}

// Failed wraps a failed analysis.
func Failed(err error) Result {
	if err == nil {
		err = ErrAnalysis
	}
	return Result{Err: err}
}

// Failed reports whether the analysis failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// ErrAnalysis is the generic analyzer failure.
var ErrAnalysis = errors.New("morphological analysis failed")

// AnalyzeAll analyzes texts one by one with a, converting errors into failed results.
func AnalyzeAll(ctx context.Context, a Analyzer, texts []string) []Result {
	if b, ok := a.(BatchAnalyzer); ok {
		return b.AnalyzeBatch(ctx, texts)
	}
	results := make([]Result, len(texts))
	for i, text := range texts {
		morphemes, err := a.Analyze(ctx, text)
		if err != nil {
			results[i] = Failed(err)
			continue
		}
		results[i] = Ok(morphemes)
	}
	return results
}
