// Package main is the entry point for the lyric tokenizer Lambda function.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/pricofy/lyric-tokenizer/internal/config"
	"github.com/pricofy/lyric-tokenizer/internal/domain"
	"github.com/pricofy/lyric-tokenizer/internal/handler"
	"github.com/pricofy/lyric-tokenizer/internal/logger"
	"github.com/pricofy/lyric-tokenizer/internal/metrics"
	"github.com/pricofy/lyric-tokenizer/internal/morph"
	"github.com/pricofy/lyric-tokenizer/internal/normalizer"
	"github.com/pricofy/lyric-tokenizer/internal/pipeline"
	"github.com/pricofy/lyric-tokenizer/internal/remote"
	"github.com/pricofy/lyric-tokenizer/internal/warmup"
)

// primeText is analyzed on warmup so dictionary pages are resident.
const primeText = "ウォームアップ"

type app struct {
	handler *handler.Handler
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

	analyzer, err := buildAnalyzer(ctx, cfg)
	if err != nil {
		logger.GetDefault().Error("failed to build analyzer", "backend", cfg.Analyzer.Backend, "error", err)
		os.Exit(1)
	}

	a, err := newApp(cfg, analyzer)
	if err != nil {
		logger.GetDefault().Error("failed to create handler", "error", err)
		os.Exit(1)
	}

	lambda.Start(a.handleRequest)
}

func newApp(cfg *config.Config, analyzer morph.Analyzer) (*app, error) {
	filterCfg, err := cfg.Filter.Selections()
	if err != nil {
		return nil, err
	}

	h, err := handler.New(handler.Deps{
		Analyzer: analyzer,
		Filter:   filterCfg,
		Options: []pipeline.Option{
			pipeline.WithLimits(cfg.Chunk.MaxChars, cfg.Chunk.HardMaxChars),
			pipeline.WithBatchChars(cfg.Chunk.BatchChars),
			pipeline.WithConcurrency(cfg.Analyzer.Concurrency),
			pipeline.WithNormalizer(normalizer.New(cfg.Filter.NoiseChars)),
			pipeline.WithMetrics(metrics.Default()),
		},
		DocumentConcurrency: cfg.Handler.DocumentConcurrency,
		Logger:              logger.GetDefault(),
	})
	if err != nil {
		return nil, err
	}

	warmer := &warmup.Warmer{}
	if cfg.Analyzer.Backend == config.BackendKagome {
		warmer.Prime = func(ctx context.Context) error {
			_, err := analyzer.Analyze(ctx, primeText)
			return err
		}
	}

	return &app{handler: h, warmer: warmer}, nil
}

// buildAnalyzer creates the configured analyzer once per process.
func buildAnalyzer(ctx context.Context, cfg *config.Config) (morph.Analyzer, error) {
	var analyzer morph.Analyzer
	switch cfg.Analyzer.Backend {
	case config.BackendLambda:
		client, err := remote.New(ctx, cfg.AnalyzerFunction(), remote.WithTimeout(cfg.Analyzer.Timeout))
		if err != nil {
			return nil, err
		}
		analyzer = client
	case config.BackendKagome:
		var (
			k   *morph.Kagome
			err error
		)
		if cfg.Analyzer.Mode == morph.ModeNormal {
			k, err = morph.Default()
		} else {
			k, err = morph.NewKagome(cfg.Analyzer.Mode)
		}
		if err != nil {
			return nil, err
		}
		analyzer = k
	default:
		return nil, fmt.Errorf("unknown analyzer backend %q", cfg.Analyzer.Backend)
	}

	if cfg.Analyzer.CacheSize > 0 {
		return morph.NewCached(analyzer, cfg.Analyzer.CacheSize)
	}
	return analyzer, nil
}

func (a *app) handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Warmup detection (MUST be first - before any other processing)
	if w, ok := warmup.IsWarmupEvent(event); ok {
		return a.warmer.Handle(ctx, w)
	}

	// Parse the request and delegate to the handler
	var req domain.Request
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	return a.handler.Handle(ctx, req)
}
