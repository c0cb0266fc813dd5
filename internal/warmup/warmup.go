// Package warmup handles the CloudWatch warmup events that keep Lambda instances warm.
// Cold starts are expensive here: the analyzer dictionary is loaded on first use.
package warmup

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"golang.org/x/sync/errgroup"
)

const (
	// Source identifies warmup events from CloudWatch
	Source = "warmup"

	// Delay ensures instances overlap to create true concurrency
	Delay = 75 * time.Millisecond
)

// Event represents the CloudWatch Event payload for warmup
type Event struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// Response is the response returned by warmup operations
type Response struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// Invoker is the subset of the Lambda client used for self-invocation.
type Invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// Warmer answers warmup events.
type Warmer struct {
	// Prime is run on every warmup so the instance is ready for real traffic.
	Prime func(ctx context.Context) error
	// NewInvoker builds the client for self-invocation. Defaults to the AWS client.
	NewInvoker func(ctx context.Context) (Invoker, error)
	// FunctionName is the function to self-invoke. Defaults to AWS_LAMBDA_FUNCTION_NAME.
	FunctionName string
	// Delay overrides the overlap delay.
	Delay time.Duration
}

// IsWarmupEvent reports whether event is a warmup ping rather than a request.
func IsWarmupEvent(event json.RawMessage) (*Event, bool) {
	var e Event
	if err := json.Unmarshal(event, &e); err != nil || e.Source != Source {
		return nil, false
	}
	return &e, true
}

// Handle processes a warmup event and optionally self-invokes
// to maintain multiple warm instances.
func (w *Warmer) Handle(ctx context.Context, event *Event) (interface{}, error) {
	instancesWarmed := 1 // This instance counts as 1

	if w.Prime != nil {
		if err := w.Prime(ctx); err != nil {
			return nil, err
		}
	}

	if event.Concurrency > 0 {
		if err := w.selfInvoke(ctx, event.Concurrency); err == nil {
			instancesWarmed += event.Concurrency
		}
	}

	// Brief delay to ensure instances overlap
	delay := w.Delay
	if delay == 0 {
		delay = Delay
	}
	time.Sleep(delay)

	return map[string]interface{}{
		"statusCode": 200,
		"body": Response{
			Status:          "warm",
			InstancesWarmed: instancesWarmed,
		},
	}, nil
}

// selfInvoke invokes this Lambda function N times asynchronously
// to create additional warm instances.
func (w *Warmer) selfInvoke(ctx context.Context, count int) error {
	newInvoker := w.NewInvoker
	if newInvoker == nil {
		newInvoker = defaultInvoker
	}
	client, err := newInvoker(ctx)
	if err != nil {
		return err
	}

	functionName := w.FunctionName
	if functionName == "" {
		functionName = os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	}

	// Children must not fan out again
	payload, err := json.Marshal(Event{Source: Source})
	if err != nil {
		return err
	}

	var g errgroup.Group
	for i := 0; i < count; i++ {
		g.Go(func() error {
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(functionName),
				InvocationType: types.InvocationTypeEvent, // async, don't wait for the child
				Payload:        payload,
			})
			return err
		})
	}
	return g.Wait()
}

func defaultInvoker(ctx context.Context) (Invoker, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return lambdasdk.NewFromConfig(cfg), nil
}
