// Command compare runs every prompt of a plan against every model in order
// and prints responses and latencies.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/vnmchuo/bedrock-compare/config"
	"github.com/vnmchuo/bedrock-compare/internal/bedrock"
	"github.com/vnmchuo/bedrock-compare/internal/compare"
	"github.com/vnmchuo/bedrock-compare/internal/invoker"
	"github.com/vnmchuo/bedrock-compare/internal/telemetry"
)

func main() {
	planPath := flag.String("plan", "", "YAML plan file (default: built-in plan)")
	stopOnError := flag.Bool("stop-on-error", false, "halt at the first failed call")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	plan := compare.DefaultPlan()
	if *planPath != "" {
		plan, err = compare.LoadPlan(*planPath)
		if err != nil {
			log.Fatalf("failed to load plan: %v", err)
		}
	}

	shutdownTracer, err := telemetry.InitTracer("bedrock-compare", cfg)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer shutdownTracer()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bedrock.NewRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init bedrock client: %v", err)
	}

	opts := []invoker.Option{invoker.WithTracer(otel.GetTracerProvider().Tracer("bedrock-compare"))}
	if cfg.StrictProviderMatch {
		opts = append(opts, invoker.WithStrictProfiles())
	}
	inv := invoker.New(rt, opts...)

	// Resolve models once before any call is made.
	for _, m := range plan.Models {
		if _, err := inv.Resolve(m); err != nil {
			log.Fatalf("invalid plan: %v", err)
		}
	}

	out := os.Stdout
	printer := compare.NewPrinter(out, len(plan.Models))
	results, runErr := compare.Run(ctx, inv, plan, compare.Options{
		StopOnError: *stopOnError,
		OnEntry:     printer.Entry,
	})
	printer.Close()
	if results != nil {
		fmt.Fprintln(out)
		if err := compare.WriteSummary(out, results); err != nil {
			log.Printf("failed to write summary: %v", err)
		}
	}
	if runErr != nil {
		log.Printf("comparison stopped: %v", runErr)
		stop()
		shutdownTracer()
		os.Exit(1)
	}
	if failed := len(results.Failures()); failed > 0 {
		log.Printf("%d of %d calls failed", failed, len(results.Entries()))
	}
}
