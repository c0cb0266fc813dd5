// Package config loads the tokenizer configuration from defaults and the environment.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/pricofy/lyric-tokenizer/internal/chunker"
	"github.com/pricofy/lyric-tokenizer/internal/filter"
	"github.com/pricofy/lyric-tokenizer/internal/morph"
	"github.com/pricofy/lyric-tokenizer/internal/normalizer"
	"github.com/pricofy/lyric-tokenizer/internal/remote"
)

// EnvPrefix prefixes every tokenizer environment variable.
// LYRIC_CHUNK_MAX_CHARS maps to chunk.max_chars.
const EnvPrefix = "LYRIC_"

// Analyzer backends.
const (
	BackendKagome = "kagome"
	BackendLambda = "lambda"
)

type Config struct {
	Environment string         `koanf:"environment" validate:"required"`
	Chunk       ChunkConfig    `koanf:"chunk"`
	Filter      FilterConfig   `koanf:"filter"`
	Analyzer    AnalyzerConfig `koanf:"analyzer"`
	Handler     HandlerConfig  `koanf:"handler"`
	Log         LogConfig      `koanf:"log"`
}

type ChunkConfig struct {
	MaxChars     int `koanf:"max_chars"      validate:"gt=0,ltefield=HardMaxChars"`
	HardMaxChars int `koanf:"hard_max_chars" validate:"gt=0"`
	BatchChars   int `koanf:"batch_chars"    validate:"gt=0"`
}

// FilterConfig holds selections in text form: "default", "none" or a comma list.
type FilterConfig struct {
	KeepPOS    string `koanf:"keep_pos"`
	NGWords    string `koanf:"ng_words"`
	NoiseChars string `koanf:"noise_chars"`
}

type AnalyzerConfig struct {
	Backend      string `koanf:"backend"       validate:"oneof=kagome lambda"`
	Mode         string `koanf:"mode"          validate:"oneof=normal search extended"`
	FunctionName string `koanf:"function_name"`
	CacheSize    int    `koanf:"cache_size"    validate:"gte=0"`
	Concurrency  int    `koanf:"concurrency"   validate:"gte=1"`
	// Timeout bounds one remote invocation; a timed-out batch fails its chunks.
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
}

type HandlerConfig struct {
	DocumentConcurrency int `koanf:"document_concurrency" validate:"gte=1"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment: "dev",
		Chunk: ChunkConfig{
			MaxChars:     chunker.DefaultMaxChars,
			HardMaxChars: chunker.DefaultHardMaxChars,
			BatchChars:   chunker.DefaultBatchChars,
		},
		Filter: FilterConfig{
			KeepPOS:    "default",
			NGWords:    "default",
			NoiseChars: normalizer.DefaultNoiseChars,
		},
		Analyzer: AnalyzerConfig{
			Backend:     BackendKagome,
			Mode:        morph.ModeNormal,
			CacheSize:   morph.DefaultCacheSize,
			Concurrency: 1,
			Timeout:     30 * time.Second,
		},
		Handler: HandlerConfig{
			DocumentConcurrency: 4,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  true,
		},
	}
}

// Load reads defaults, then environment variables, then validates.
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        "",
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// transformEnv maps ENVIRONMENT and LYRIC_* variables to koanf paths and drops
// everything else. LYRIC_ANALYZER_FUNCTION_NAME -> analyzer.function_name
func transformEnv(key, value string) (string, any) {
	if key == "ENVIRONMENT" {
		return "environment", value
	}
	if !strings.HasPrefix(key, EnvPrefix) {
		return "", nil
	}
	parts := strings.FieldsFunc(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), func(r rune) bool {
		return r == '_'
	})
	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], value
	}
	return parts[0] + "." + strings.Join(parts[1:], "_"), value
}

// Validate checks struct constraints and the filter selections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := c.Filter.Selections(); err != nil {
		return err
	}
	return nil
}

// Selections parses the text selections into a filter configuration.
func (f FilterConfig) Selections() (filter.Config, error) {
	var cfg filter.Config
	if err := cfg.KeepPOS.UnmarshalText([]byte(f.KeepPOS)); err != nil {
		return filter.Config{}, fmt.Errorf("filter.keep_pos: %w", err)
	}
	if err := cfg.NGWords.UnmarshalText([]byte(f.NGWords)); err != nil {
		return filter.Config{}, fmt.Errorf("filter.ng_words: %w", err)
	}
	return cfg, nil
}

// AnalyzerFunction returns the configured analyzer Lambda or the default for the environment.
func (c *Config) AnalyzerFunction() string {
	if c.Analyzer.FunctionName != "" {
		return c.Analyzer.FunctionName
	}
	return remote.FunctionName(c.Environment)
}
