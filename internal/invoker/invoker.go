// Package invoker turns a model identifier and prompt into a single
// Bedrock InvokeModel call and a normalized result.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vnmchuo/bedrock-compare/internal/provider"
	"github.com/vnmchuo/bedrock-compare/internal/provider/claude"
	"github.com/vnmchuo/bedrock-compare/internal/provider/nova"
)

// Runtime is the part of *bedrockruntime.Client the invoker needs.
type Runtime interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Invoker struct {
	runtime Runtime
	codecs  map[provider.Profile]provider.Codec
	strict  bool
	tracer  trace.Tracer
	now     func() time.Time
}

type Option func(*Invoker)

// WithStrictProfiles rejects identifiers that match no provider marker
// instead of treating them as amazon-style.
func WithStrictProfiles() Option {
	return func(i *Invoker) { i.strict = true }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(i *Invoker) { i.tracer = tracer }
}

// WithCodec registers or replaces the codec for codec.Profile().
func WithCodec(codec provider.Codec) Option {
	return func(i *Invoker) { i.codecs[codec.Profile()] = codec }
}

func WithClock(now func() time.Time) Option {
	return func(i *Invoker) { i.now = now }
}

func New(rt Runtime, opts ...Option) *Invoker {
	i := &Invoker{
		runtime: rt,
		codecs: map[provider.Profile]provider.Codec{
			provider.ProfileAnthropic: claude.New(),
			provider.ProfileAmazon:    nova.New(),
		},
		tracer: noop.NewTracerProvider().Tracer("invoker"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Resolve classifies modelID using the invoker's strictness setting.
func (i *Invoker) Resolve(modelID string) (provider.Model, error) {
	return provider.Resolve(modelID, i.strict)
}

func (i *Invoker) Invoke(ctx context.Context, req provider.Request) (*provider.Result, error) {
	model, err := i.Resolve(req.ModelID)
	if err != nil {
		return nil, err
	}
	return i.InvokeResolved(ctx, model, req.Prompt, req.Params)
}

// InvokeResolved calls an already resolved model. Latency is measured around
// the network call only.
func (i *Invoker) InvokeResolved(ctx context.Context, model provider.Model, prompt string, params provider.Params) (*provider.Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, provider.ErrEmptyPrompt
	}
	codec, ok := i.codecs[model.Profile]
	if !ok {
		return nil, &provider.UnsupportedProviderError{ModelID: model.ID}
	}

	ctx, span := i.tracer.Start(ctx, "invoker.invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("model", model.ID),
		attribute.String("profile", model.Profile.String()),
	)

	body, err := codec.MarshalRequest(prompt, params)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", model.Profile, err)
	}

	start := i.now()
	out, err := i.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model.ID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	latency := i.now().Sub(start)
	if latency < 0 {
		latency = 0
	}
	span.SetAttributes(attribute.Int64("latency_ms", latency.Milliseconds()))

	if err != nil {
		terr := &provider.TransportError{ModelID: model.ID, Err: err}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			terr.Code = apiErr.ErrorCode()
		}
		span.RecordError(terr)
		span.SetStatus(codes.Error, "transport")
		return nil, terr
	}

	text, err := codec.UnmarshalResponse(out.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed response")
		return nil, err
	}

	return &provider.Result{
		ModelID: model.ID,
		Profile: model.Profile,
		Text:    text,
		Latency: latency,
	}, nil
}
