package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vnmchuo/bedrock-compare/internal/compare"
	"github.com/vnmchuo/bedrock-compare/internal/provider"
	"github.com/vnmchuo/bedrock-compare/pkg/ratelimit"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	router  *Router
	limiter *ratelimit.Limiter
	tracer  trace.Tracer
}

// NewHandler builds the HTTP handlers. limiter may be nil.
func NewHandler(router *Router, limiter *ratelimit.Limiter, tracer trace.Tracer) *Handler {
	return &Handler{
		router:  router,
		limiter: limiter,
		tracer:  tracer,
	}
}

type invokeRequest struct {
	Model  string          `json:"model"`
	Prompt string          `json:"prompt"`
	Params provider.Params `json:"params"`
}

type invokeResponse struct {
	ID             string  `json:"id"`
	Model          string  `json:"model"`
	Profile        string  `json:"profile"`
	Text           string  `json:"text"`
	LatencySeconds float64 `json:"latency_seconds"`
}

type compareRequest struct {
	Models      []string        `json:"models"`
	Prompts     []string        `json:"prompts"`
	Params      provider.Params `json:"params"`
	StopOnError bool            `json:"stop_on_error"`
}

type compareEntry struct {
	Prompt         string  `json:"prompt"`
	Model          string  `json:"model"`
	Text           string  `json:"text,omitempty"`
	LatencySeconds float64 `json:"latency_seconds,omitempty"`
	Error          string  `json:"error,omitempty"`
}

type compareSummary struct {
	Model       string  `json:"model"`
	Calls       int     `json:"calls"`
	Failures    int     `json:"failures"`
	MeanSeconds float64 `json:"mean_seconds"`
	MinSeconds  float64 `json:"min_seconds"`
	MaxSeconds  float64 `json:"max_seconds"`
}

func (h *Handler) HandleInvoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := uuid.New().String()

	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, provider.ErrEmptyPrompt.Error())
		return
	}

	ctx, span := h.tracer.Start(ctx, "proxy.invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("request_id", requestID),
		attribute.String("model", req.Model),
	)

	model, err := h.router.Route(req.Model)
	if err != nil {
		writeInvokeError(w, err)
		return
	}

	if !h.allow(ctx, w, r, estimateTokens(model.Profile, req.Params)) {
		return
	}

	result, err := h.router.Execute(ctx, model, req.Prompt, req.Params)
	if err != nil {
		span.RecordError(err)
		writeInvokeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invokeResponse{
		ID:             requestID,
		Model:          result.ModelID,
		Profile:        result.Profile.String(),
		Text:           result.Text,
		LatencySeconds: result.LatencySeconds(),
	})
}

func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan := compare.DefaultPlan()
	if len(req.Models) > 0 {
		plan.Models = req.Models
	}
	if len(req.Prompts) > 0 {
		plan.Prompts = req.Prompts
	}
	plan.Params = plan.Params.Merge(req.Params)
	if err := plan.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Resolve every model up front so a bad identifier fails the request
	// before any call is made.
	tokens := 0
	for _, m := range plan.Models {
		model, err := h.router.Route(m)
		if err != nil {
			writeInvokeError(w, err)
			return
		}
		tokens += estimateTokens(model.Profile, plan.Params) * len(plan.Prompts)
	}

	ctx, span := h.tracer.Start(ctx, "proxy.compare")
	defer span.End()
	span.SetAttributes(
		attribute.Int("models", len(plan.Models)),
		attribute.Int("prompts", len(plan.Prompts)),
	)

	if !h.allow(ctx, w, r, tokens) {
		return
	}

	results, err := compare.Run(ctx, h.router, plan, compare.Options{StopOnError: req.StopOnError})
	if results == nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries := make([]compareEntry, 0, len(results.Entries()))
	for _, e := range results.Entries() {
		ce := compareEntry{Prompt: e.Prompt, Model: e.ModelID}
		if e.Err != nil {
			ce.Error = e.Err.Error()
		} else {
			ce.Text = e.Result.Text
			ce.LatencySeconds = e.Result.LatencySeconds()
		}
		entries = append(entries, ce)
	}

	summary := make([]compareSummary, 0, len(plan.Models))
	for _, s := range results.Summary() {
		summary = append(summary, compareSummary{
			Model:       s.ModelID,
			Calls:       s.Calls,
			Failures:    s.Failures,
			MeanSeconds: s.Mean.Seconds(),
			MinSeconds:  s.Min.Seconds(),
			MaxSeconds:  s.Max.Seconds(),
		})
	}

	resp := map[string]interface{}{
		"id":         results.RunID,
		"started_at": results.Started,
		"results":    entries,
		"summary":    summary,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) allow(ctx context.Context, w http.ResponseWriter, r *http.Request, tokens int) bool {
	res, err := h.limiter.Allow(ctx, clientKey(r), tokens)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "rate limiter unavailable")
		return false
	}
	if !res.Allowed {
		retryAfter := retryAfterSeconds(res.ResetAfter)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":       "rate limit exceeded",
			"retry_after": retryAfter,
		})
		return false
	}
	return true
}

// retryAfterSeconds rounds up to whole seconds, at least one.
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

func estimateTokens(p provider.Profile, params provider.Params) int {
	var limit *int
	switch p {
	case provider.ProfileAnthropic:
		limit = params.MaxTokens
	case provider.ProfileAmazon:
		limit = params.MaxNewTokens
	}
	if limit == nil || *limit <= 0 {
		return 1000
	}
	return *limit
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeInvokeError(w http.ResponseWriter, err error) {
	var (
		unsupported *provider.UnsupportedProviderError
		transport   *provider.TransportError
		malformed   *provider.MalformedResponseError
	)
	switch {
	case errors.Is(err, provider.ErrEmptyModel), errors.Is(err, provider.ErrEmptyPrompt), errors.As(err, &unsupported):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrProviderUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &transport), errors.As(err, &malformed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
