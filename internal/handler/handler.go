// Package handler provides the Lambda handlers for the lyric tokenizer.
package handler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pricofy/lyric-tokenizer/internal/domain"
	"github.com/pricofy/lyric-tokenizer/internal/filter"
	"github.com/pricofy/lyric-tokenizer/internal/logger"
	"github.com/pricofy/lyric-tokenizer/internal/morph"
	"github.com/pricofy/lyric-tokenizer/internal/pipeline"
)

// DefaultDocumentConcurrency is how many documents of one request are tokenized at once.
const DefaultDocumentConcurrency = 4

// Deps are the collaborators of a Handler.
type Deps struct {
	Analyzer morph.Analyzer
	// Filter is the configured filter; requests may override either option.
	Filter filter.Config
	// Options are applied to every pipeline built by the handler.
	Options             []pipeline.Option
	DocumentConcurrency int
	Logger              logger.Logger
}

// Handler tokenizes lyric documents.
type Handler struct {
	deps Deps
}

// New creates a Handler.
func New(deps Deps) (*Handler, error) {
	if deps.Analyzer == nil {
		return nil, fmt.Errorf("handler requires an analyzer")
	}
	if deps.DocumentConcurrency <= 0 {
		deps.DocumentConcurrency = DefaultDocumentConcurrency
	}
	if deps.Logger == nil {
		deps.Logger = logger.GetDefault()
	}
	// Fail on bad options now rather than on the first request
	if _, err := pipeline.New(deps.Analyzer, deps.Options...); err != nil {
		return nil, err
	}
	return &Handler{deps: deps}, nil
}

// Handle processes a tokenize request.
// Each document runs through its own pipeline invocation; a failed chunk only
// removes that chunk's tokens from its document.
func (h *Handler) Handle(ctx context.Context, req domain.Request) (*domain.Response, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	log := h.deps.Logger.With("requestId", req.RequestID)

	// Validate request
	if err := validateRequest(req); err != nil {
		return &domain.Response{RequestID: req.RequestID, Error: err.Error()}, nil
	}

	// Empty input - return immediately
	if len(req.Documents) == 0 {
		return &domain.Response{RequestID: req.RequestID, Results: []domain.DocumentResult{}}, nil
	}

	// Resolve filter overrides once for the whole request
	cfg := h.deps.Filter
	if req.KeepPOS != nil {
		cfg.KeepPOS = *req.KeepPOS
	}
	if req.NGWords != nil {
		cfg.NGWords = *req.NGWords
	}
	opts := append(append([]pipeline.Option{}, h.deps.Options...),
		pipeline.WithFilter(cfg),
		pipeline.WithLogger(log),
	)
	p, err := pipeline.New(h.deps.Analyzer, opts...)
	if err != nil {
		return &domain.Response{RequestID: req.RequestID, Error: fmt.Sprintf("failed to create pipeline: %v", err)}, nil
	}

	results := make([]domain.DocumentResult, len(req.Documents))
	var g errgroup.Group
	g.SetLimit(h.deps.DocumentConcurrency)
	for i, doc := range req.Documents {
		g.Go(func() error {
			results[i] = tokenizeDocument(ctx, p, doc)
			return nil
		})
	}
	_ = g.Wait()

	resp := &domain.Response{RequestID: req.RequestID, Results: results}
	for _, r := range results {
		resp.ChunksProcessed += r.Chunks
		resp.ChunksFailed += r.FailedChunks
	}

	log.Info("tokenized documents",
		"documents", len(results),
		"chunks", resp.ChunksProcessed,
		"failedChunks", resp.ChunksFailed)

	return resp, nil
}

func tokenizeDocument(ctx context.Context, p *pipeline.Pipeline, doc domain.Document) domain.DocumentResult {
	out := domain.DocumentResult{ID: doc.ID, Tokens: []string{}}
	res, err := p.Run(ctx, doc.Text)
	if res != nil {
		out.Tokens = res.Tokens
		out.Chunks = len(res.Chunks)
		out.FailedChunks = res.FailedChunks()
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

// validateRequest checks the request is valid.
func validateRequest(req domain.Request) error {
	if req.Documents == nil {
		return fmt.Errorf("documents is required")
	}
	seen := make(map[string]bool, len(req.Documents))
	for _, doc := range req.Documents {
		if doc.ID == "" {
			return fmt.Errorf("document id is required")
		}
		if seen[doc.ID] {
			return fmt.Errorf("duplicate document id %q", doc.ID)
		}
		seen[doc.ID] = true
	}
	return nil
}
