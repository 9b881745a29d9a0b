// Command invoke sends one prompt to one Bedrock model and prints the
// generated text.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.opentelemetry.io/otel"

	"github.com/vnmchuo/bedrock-compare/config"
	"github.com/vnmchuo/bedrock-compare/internal/bedrock"
	"github.com/vnmchuo/bedrock-compare/internal/invoker"
	"github.com/vnmchuo/bedrock-compare/internal/provider"
	"github.com/vnmchuo/bedrock-compare/internal/telemetry"
)

func main() {
	model := flag.String("model", "anthropic.claude-3-sonnet-20240229-v1:0", "Bedrock model identifier")
	prompt := flag.String("prompt", "Hello, how are you?", "prompt text")
	maxTokens := flag.Int("max-tokens", 0, "max_tokens (anthropic-style models)")
	temperature := flag.Float64("temperature", -1, "temperature (anthropic-style models)")
	topK := flag.Int("top-k", 0, "top_k (anthropic-style models)")
	topP := flag.Float64("top-p", -1, "top_p (anthropic-style models)")
	maxNewTokens := flag.Int("max-new-tokens", 0, "max_new_tokens (amazon-style models)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTracer, err := telemetry.InitTracer("bedrock-invoke", cfg)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer shutdownTracer()

	ctx := context.Background()
	rt, err := bedrock.NewRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init bedrock client: %v", err)
	}

	opts := []invoker.Option{invoker.WithTracer(otel.GetTracerProvider().Tracer("bedrock-invoke"))}
	if cfg.StrictProviderMatch {
		opts = append(opts, invoker.WithStrictProfiles())
	}
	inv := invoker.New(rt, opts...)

	// Unset flags keep the profile defaults.
	var params provider.Params
	if *maxTokens > 0 {
		params.MaxTokens = provider.Int(*maxTokens)
	}
	if *temperature >= 0 {
		params.Temperature = provider.Float(*temperature)
	}
	if *topK > 0 {
		params.TopK = provider.Int(*topK)
	}
	if *topP >= 0 {
		params.TopP = provider.Float(*topP)
	}
	if *maxNewTokens > 0 {
		params.MaxNewTokens = provider.Int(*maxNewTokens)
	}

	res, err := inv.Invoke(ctx, provider.Request{ModelID: *model, Prompt: *prompt, Params: params})
	if err != nil {
		shutdownTracer()
		fmt.Fprintf(os.Stderr, "invoke failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Response: %s\n", res.Text)
	fmt.Printf("Latency: %.4f seconds\n", res.LatencySeconds())
}
