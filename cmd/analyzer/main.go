// Package main is the entry point for the analyzer Lambda function.
// It serves raw morphological analysis to the tokenizer's remote backend.
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/pricofy/lyric-tokenizer/internal/config"
	"github.com/pricofy/lyric-tokenizer/internal/domain"
	"github.com/pricofy/lyric-tokenizer/internal/handler"
	"github.com/pricofy/lyric-tokenizer/internal/logger"
	"github.com/pricofy/lyric-tokenizer/internal/morph"
	"github.com/pricofy/lyric-tokenizer/internal/warmup"
)

type app struct {
	handler *handler.AnalyzeHandler
	warmer  *warmup.Warmer
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.GetDefault().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(&logger.Config{
		Level:  logger.Level(cfg.Log.Level),
		JSON:   cfg.Log.JSON,
		Output: os.Stderr,
	})

	k, err := morph.NewKagome(cfg.Analyzer.Mode)
	if err != nil {
		logger.GetDefault().Error("failed to load dictionary", "error", err)
		os.Exit(1)
	}

	a, err := newApp(k)
	if err != nil {
		logger.GetDefault().Error("failed to create handler", "error", err)
		os.Exit(1)
	}

	lambda.Start(a.handleRequest)
}

func newApp(analyzer morph.Analyzer) (*app, error) {
	h, err := handler.NewAnalyzeHandler(analyzer)
	if err != nil {
		return nil, err
	}
	return &app{
		handler: h,
		warmer: &warmup.Warmer{
			Prime: func(ctx context.Context) error {
				_, err := analyzer.Analyze(ctx, "ウォームアップ")
				return err
			},
		},
	}, nil
}

func (a *app) handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	if w, ok := warmup.IsWarmupEvent(event); ok {
		return a.warmer.Handle(ctx, w)
	}

	var req domain.AnalyzeRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	return a.handler.Handle(ctx, req)
}
