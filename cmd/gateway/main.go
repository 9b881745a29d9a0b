package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/vnmchuo/bedrock-compare/config"
	"github.com/vnmchuo/bedrock-compare/internal/bedrock"
	"github.com/vnmchuo/bedrock-compare/internal/invoker"
	"github.com/vnmchuo/bedrock-compare/internal/proxy"
	"github.com/vnmchuo/bedrock-compare/internal/telemetry"
	"github.com/vnmchuo/bedrock-compare/pkg/ratelimit"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Init telemetry
	shutdownTracer, err := telemetry.InitTracer("bedrock-gateway", cfg)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer shutdownTracer()
	tracer := otel.GetTracerProvider().Tracer("bedrock-gateway")

	// 3. Bedrock runtime client
	ctx := context.Background()
	rt, err := bedrock.NewRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init bedrock client: %v", err)
	}
	log.Printf("Bedrock runtime client ready (region %s)", cfg.AWSRegion)

	// 4. Init invoker
	opts := []invoker.Option{invoker.WithTracer(tracer)}
	if cfg.StrictProviderMatch {
		opts = append(opts, invoker.WithStrictProfiles())
	}
	inv := invoker.New(rt, opts...)

	// 5. Rate limiter, only when Redis is configured
	var limiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to ping redis: %v", err)
		}
		log.Println("Redis connected, rate limiting enabled")
		limiter = ratelimit.NewLimiter(rdb, cfg.DefaultRateLimitTPM)
	}

	// 6. Init router and handler
	router := proxy.NewRouter(inv)
	handler := proxy.NewHandler(router, limiter, tracer)

	// 7. Init Chi router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"bedrock-gateway"}`))
	})
	r.Post("/v1/invoke", handler.HandleInvoke)
	r.Post("/v1/compare", handler.HandleCompare)

	// 8. Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // comparisons run sequentially
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Bedrock gateway starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
