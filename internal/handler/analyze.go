package handler

import (
	"context"
	"fmt"

	"github.com/pricofy/lyric-tokenizer/internal/domain"
	"github.com/pricofy/lyric-tokenizer/internal/morph"
)

// AnalyzeHandler serves the analyzer Lambda: raw morphemes for each chunk.
type AnalyzeHandler struct {
	analyzer morph.Analyzer
}

// NewAnalyzeHandler creates an AnalyzeHandler.
func NewAnalyzeHandler(analyzer morph.Analyzer) (*AnalyzeHandler, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("analyze handler requires an analyzer")
	}
	return &AnalyzeHandler{analyzer: analyzer}, nil
}

// Handle analyzes every chunk of req. A failing chunk is reported in its own
// result and does not affect the others.
func (h *AnalyzeHandler) Handle(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	if req.Chunks == nil {
		return &domain.AnalyzeResponse{Error: "chunks is required"}, nil
	}

	results := morph.AnalyzeAll(ctx, h.analyzer, req.Chunks)
	resp := &domain.AnalyzeResponse{Results: make([]domain.ChunkAnalysis, len(results))}
	for i, r := range results {
		if r.Failed() {
			resp.Results[i] = domain.ChunkAnalysis{Error: r.Err.Error()}
			continue
		}
		morphemes := make([]domain.Morpheme, len(r.Morphemes))
		for j, m := range r.Morphemes {
			morphemes[j] = domain.Morpheme{Surface: m.Surface, BaseForm: m.BaseForm, POS: m.POS}
		}
		resp.Results[i] = domain.ChunkAnalysis{Morphemes: morphemes}
	}
	return resp, nil
}
