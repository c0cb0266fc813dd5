// Package pipeline turns raw lyric text into filtered tokens:
// normalize, split into chunks, analyze each chunk, filter the morphemes.
//
// A chunk whose analysis fails contributes no tokens; the other chunks are
// still processed. Lyric text is heterogeneous and losing one chunk is better
// than losing the document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pricofy/lyric-tokenizer/internal/chunker"
	"github.com/pricofy/lyric-tokenizer/internal/filter"
	"github.com/pricofy/lyric-tokenizer/internal/logger"
	"github.com/pricofy/lyric-tokenizer/internal/metrics"
	"github.com/pricofy/lyric-tokenizer/internal/morph"
	"github.com/pricofy/lyric-tokenizer/internal/normalizer"
)

// ErrConfiguration is returned by New for invalid arguments.
var ErrConfiguration = errors.New("invalid pipeline configuration")

// Pipeline is configured once and reused; Run may be called concurrently.
type Pipeline struct {
	normalizer   *normalizer.Normalizer
	analyzer     morph.Analyzer
	filter       *filter.Filter
	maxChars     int
	hardMaxChars int
	batchChars   int
	concurrency  int
	logger       logger.Logger
	metrics      *metrics.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLimits sets the soft and hard chunk limits in characters.
func WithLimits(maxChars, hardMaxChars int) Option {
	return func(p *Pipeline) {
		p.maxChars = maxChars
		p.hardMaxChars = hardMaxChars
	}
}

// WithFilter sets the token filter configuration.
func WithFilter(cfg filter.Config) Option {
	return func(p *Pipeline) {
		p.filter = filter.New(cfg)
	}
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalizer.Normalizer) Option {
	return func(p *Pipeline) {
		if n != nil {
			p.normalizer = n
		}
	}
}

// WithConcurrency analyzes up to n chunks at a time. Output order is unaffected.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.concurrency = n
	}
}

// WithBatchChars bounds the characters per call to a batch analyzer.
func WithBatchChars(n int) Option {
	return func(p *Pipeline) {
		p.batchChars = n
	}
}

// WithLogger sets the logger used for chunk failures.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New creates a Pipeline around analyzer.
func New(analyzer morph.Analyzer, opts ...Option) (*Pipeline, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("%w: analyzer is required", ErrConfiguration)
	}

	p := &Pipeline{
		normalizer:   normalizer.Default(),
		analyzer:     analyzer,
		filter:       filter.New(filter.Config{}),
		maxChars:     chunker.DefaultMaxChars,
		hardMaxChars: chunker.DefaultHardMaxChars,
		batchChars:   chunker.DefaultBatchChars,
		concurrency:  1,
		logger:       logger.GetDefault(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.maxChars <= 0 || p.hardMaxChars <= 0 {
		return nil, fmt.Errorf("%w: chunk limits must be positive (max %d, hard %d)", ErrConfiguration, p.maxChars, p.hardMaxChars)
	}
	if p.maxChars > p.hardMaxChars {
		return nil, fmt.Errorf("%w: maxChars %d exceeds hardMaxChars %d", ErrConfiguration, p.maxChars, p.hardMaxChars)
	}
	if p.concurrency <= 0 {
		p.concurrency = 1
	}
	return p, nil
}

// NewDefault creates a Pipeline around the process-wide Kagome analyzer.
func NewDefault(opts ...Option) (*Pipeline, error) {
	analyzer, err := morph.Default()
	if err != nil {
		return nil, fmt.Errorf("%w: default analyzer unavailable: %v", ErrConfiguration, err)
	}
	return New(analyzer, opts...)
}

// ChunkResult describes what one chunk contributed.
type ChunkResult struct {
	Index  int
	Chars  int
	Tokens []string
	// Err is set when the analyzer failed or the chunk was skipped after
	// cancellation. The chunk then contributes no tokens.
	Err error
}

// Failed reports whether the chunk contributed nothing because of an error.
func (c ChunkResult) Failed() bool {
	return c.Err != nil
}

// Result is the outcome of one Run.
type Result struct {
	// Tokens in text order: chunk order, then analyzer order within a chunk.
	Tokens []string
	Chunks []ChunkResult
}

// FailedChunks counts chunks that contributed nothing because of an error.
func (r *Result) FailedChunks() int {
	n := 0
	for _, c := range r.Chunks {
		if c.Failed() {
			n++
		}
	}
	return n
}

// Tokenize returns the tokens of text. See Run.
func (p *Pipeline) Tokenize(ctx context.Context, text string) ([]string, error) {
	res, err := p.Run(ctx, text)
	if res == nil {
		return nil, err
	}
	return res.Tokens, err
}

// Run tokenizes text. Analyzer failures never fail the run: the chunk is
// recorded as failed and skipped. The returned error is non-nil only when
// normalization fails or ctx is canceled; on cancellation the partial Result
// is returned along with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, text string) (*Result, error) {
	p.metrics.IncDocuments()

	normalized, err := p.normalizer.Normalize(text)
	if err != nil {
		return nil, err
	}

	chunks, err := chunker.Split(normalized, p.maxChars, p.hardMaxChars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	res := &Result{Tokens: []string{}, Chunks: make([]ChunkResult, len(chunks))}
	if len(chunks) == 0 {
		return res, nil
	}

	analyses := p.analyze(ctx, chunks)

	var runErr error
	for i, chunk := range chunks {
		cr := ChunkResult{Index: i, Chars: chunker.Len(chunk)}
		analysis := analyses[i]
		switch {
		case analysis.Failed() && ctx.Err() != nil && errors.Is(analysis.Err, ctx.Err()):
			cr.Err = analysis.Err
			runErr = analysis.Err
		case analysis.Failed():
			cr.Err = analysis.Err
			p.logger.Warn("chunk analysis failed", "chunk", i, "chunks", len(chunks), "chars", cr.Chars, "error", analysis.Err)
		default:
			for _, m := range analysis.Morphemes {
				if token, ok := p.filter.Accept(m); ok {
					cr.Tokens = append(cr.Tokens, token)
				}
			}
			res.Tokens = append(res.Tokens, cr.Tokens...)
		}
		p.metrics.ObserveChunk(cr.Chars, cr.Failed())
		p.metrics.AddTokens(len(cr.Tokens))
		res.Chunks[i] = cr
	}

	return res, runErr
}

// analyze returns one result per chunk, indexed like chunks.
func (p *Pipeline) analyze(ctx context.Context, chunks []string) []morph.Result {
	results := make([]morph.Result, len(chunks))

	if batcher, ok := p.analyzer.(morph.BatchAnalyzer); ok {
		offset := 0
		for _, batch := range chunker.Batch(chunks, p.batchChars) {
			if err := ctx.Err(); err != nil {
				fillFailed(results[offset:], err)
				break
			}
			out := p.analyzeBatch(ctx, batcher, batch)
			for j := range batch {
				if j < len(out) {
					results[offset+j] = out[j]
				} else {
					results[offset+j] = morph.Failed(fmt.Errorf("%w: analyzer returned %d results for %d chunks", morph.ErrAnalysis, len(out), len(batch)))
				}
			}
			offset += len(batch)
		}
		return results
	}

	if p.concurrency <= 1 {
		for i, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				fillFailed(results[i:], err)
				break
			}
			results[i] = p.analyzeOne(ctx, chunk)
		}
		return results
	}

	// Each goroutine writes only its own index; the merge happens by position.
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = morph.Failed(err)
				return nil
			}
			results[i] = p.analyzeOne(ctx, chunk)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// analyzeOne is the per-chunk failure boundary: errors and panics become a failed result.
func (p *Pipeline) analyzeOne(ctx context.Context, chunk string) (result morph.Result) {
	start := time.Now()
	defer func() {
		p.metrics.ObserveAnalyze(time.Since(start))
		if r := recover(); r != nil {
			result = morph.Failed(fmt.Errorf("%w: analyzer panic: %v", morph.ErrAnalysis, r))
		}
	}()

	morphemes, err := p.analyzer.Analyze(ctx, chunk)
	if err != nil {
		return morph.Failed(err)
	}
	return morph.Ok(morphemes)
}

// analyzeBatch is analyzeOne for batch analyzers: a panic fails the whole batch.
func (p *Pipeline) analyzeBatch(ctx context.Context, batcher morph.BatchAnalyzer, batch []string) (out []morph.Result) {
	start := time.Now()
	defer func() {
		p.metrics.ObserveAnalyze(time.Since(start))
		if r := recover(); r != nil {
			out = make([]morph.Result, len(batch))
			fillFailed(out, fmt.Errorf("%w: analyzer panic: %v", morph.ErrAnalysis, r))
		}
	}()
	return batcher.AnalyzeBatch(ctx, batch)
}

func fillFailed(results []morph.Result, err error) {
	for i := range results {
		results[i] = morph.Failed(err)
	}
}
