// Package remote analyzes chunks by invoking the analyzer Lambda.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/pricofy/lyric-tokenizer/internal/domain"
	"github.com/pricofy/lyric-tokenizer/internal/morph"
)

// FunctionPrefix is prepended to the environment to build the default function name.
const FunctionPrefix = "pricofy-lyric-analyzer-"

// ErrRemote wraps every failure reported by or on the way to the analyzer Lambda.
var ErrRemote = errors.New("remote analyzer")

// Invoker is the subset of the Lambda client used here.
type Invoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Client sends chunks to the analyzer Lambda. It implements morph.BatchAnalyzer.
type Client struct {
	lambdaClient Invoker
	functionName string
	timeout      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each invocation. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// FunctionName returns the analyzer function for an environment.
func FunctionName(environment string) string {
	if environment == "" {
		environment = "dev"
	}
	return FunctionPrefix + environment
}

// New creates a Client using the default AWS configuration.
func New(ctx context.Context, functionName string, opts ...Option) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewWithInvoker(lambda.NewFromConfig(cfg), functionName, opts...), nil
}

// NewWithInvoker creates a Client around an existing invoker.
func NewWithInvoker(inv Invoker, functionName string, opts ...Option) *Client {
	c := &Client{lambdaClient: inv, functionName: functionName}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze analyzes a single chunk.
func (c *Client) Analyze(ctx context.Context, text string) ([]morph.Morpheme, error) {
	results := c.AnalyzeBatch(ctx, []string{text})
	if results[0].Failed() {
		return nil, results[0].Err
	}
	return results[0].Morphemes, nil
}

// AnalyzeBatch sends all texts in one invocation. If the invocation itself
// fails every text fails; otherwise each text gets its own result.
func (c *Client) AnalyzeBatch(ctx context.Context, texts []string) []morph.Result {
	results := make([]morph.Result, len(texts))
	if len(texts) == 0 {
		return results
	}

	resp, err := c.invokeLambda(ctx, texts)
	if err == nil && len(resp.Results) != len(texts) {
		err = fmt.Errorf("%w: got %d results for %d chunks", ErrRemote, len(resp.Results), len(texts))
	}
	if err != nil {
		for i := range results {
			results[i] = morph.Failed(err)
		}
		return results
	}

	for i, analysis := range resp.Results {
		if analysis.Error != "" {
			results[i] = morph.Failed(fmt.Errorf("%w: %s", ErrRemote, analysis.Error))
			continue
		}
		morphemes := make([]morph.Morpheme, len(analysis.Morphemes))
		for j, m := range analysis.Morphemes {
			morphemes[j] = morph.Morpheme{Surface: m.Surface, BaseForm: m.BaseForm, POS: m.POS}
		}
		results[i] = morph.Ok(morphemes)
	}
	return results
}

// invokeLambda calls the analyzer Lambda with the given chunks.
func (c *Client) invokeLambda(ctx context.Context, chunks []string) (*domain.AnalyzeResponse, error) {
	payload, err := json.Marshal(domain.AnalyzeRequest{Chunks: chunks})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrRemote, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.lambdaClient.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: &c.functionName,
		Payload:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to invoke %s: %w", ErrRemote, c.functionName, err)
	}

	if result.FunctionError != nil {
		return nil, fmt.Errorf("%w: lambda error: %s", ErrRemote, *result.FunctionError)
	}

	var resp domain.AnalyzeResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrRemote, err)
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("%w: analyzer error: %s", ErrRemote, resp.Error)
	}

	return &resp, nil
}
