package proxy

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"github.com/vnmchuo/bedrock-compare/internal/provider"
)

// ErrProviderUnavailable is returned while a profile's breaker is open.
var ErrProviderUnavailable = errors.New("provider unavailable")

type Invoker interface {
	Resolve(modelID string) (provider.Model, error)
	InvokeResolved(ctx context.Context, model provider.Model, prompt string, params provider.Params) (*provider.Result, error)
}

// Router resolves models to profiles and trips a breaker per profile after
// repeated transport failures. It never retries.
type Router struct {
	invoker  Invoker
	breakers map[provider.Profile]*gobreaker.CircuitBreaker
}

func NewRouter(inv Invoker) *Router {
	breakers := make(map[provider.Profile]*gobreaker.CircuitBreaker)
	for _, p := range []provider.Profile{provider.ProfileAnthropic, provider.ProfileAmazon} {
		settings := gobreaker.Settings{
			Name:        p.String(),
			MaxRequests: 3,
			Interval:    5 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			// Bad input or a malformed body says nothing about provider health.
			IsSuccessful: func(err error) bool {
				var terr *provider.TransportError
				return err == nil || !errors.As(err, &terr)
			},
		}
		breakers[p] = gobreaker.NewCircuitBreaker(settings)
	}
	return &Router{
		invoker:  inv,
		breakers: breakers,
	}
}

func (r *Router) Route(modelID string) (provider.Model, error) {
	return r.invoker.Resolve(modelID)
}

func (r *Router) State(p provider.Profile) gobreaker.State {
	cb, ok := r.breakers[p]
	if !ok {
		return gobreaker.StateClosed
	}
	return cb.State()
}

func (r *Router) Execute(ctx context.Context, model provider.Model, prompt string, params provider.Params) (*provider.Result, error) {
	cb, ok := r.breakers[model.Profile]
	if !ok {
		return r.invoker.InvokeResolved(ctx, model, prompt, params)
	}
	result, err := cb.Execute(func() (interface{}, error) {
		return r.invoker.InvokeResolved(ctx, model, prompt, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrProviderUnavailable
	}
	if err != nil {
		return nil, err
	}
	return result.(*provider.Result), nil
}

// Invoke satisfies compare.Invoker so comparisons share the breakers.
func (r *Router) Invoke(ctx context.Context, req provider.Request) (*provider.Result, error) {
	model, err := r.Route(req.ModelID)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, model, req.Prompt, req.Params)
}
