package proxy

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/vnmchuo/bedrock-compare/internal/provider"
)

type MockInvoker struct {
	strict bool
	err    error
	text   string
	calls  []provider.Request
}

func (m *MockInvoker) Resolve(modelID string) (provider.Model, error) {
	return provider.Resolve(modelID, m.strict)
}

func (m *MockInvoker) InvokeResolved(ctx context.Context, model provider.Model, prompt string, params provider.Params) (*provider.Result, error) {
	m.calls = append(m.calls, provider.Request{ModelID: model.ID, Prompt: prompt, Params: params})
	if m.err != nil {
		return nil, m.err
	}
	return &provider.Result{
		ModelID: model.ID,
		Profile: model.Profile,
		Text:    m.text,
	}, nil
}

func TestRoute_Profiles(t *testing.T) {
	router := NewRouter(&MockInvoker{})

	m, err := router.Route("anthropic.claude-3-sonnet-20240229-v1:0")
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if m.Profile != provider.ProfileAnthropic {
		t.Errorf("Expected anthropic, got %s", m.Profile)
	}

	m, err = router.Route("cohere.command-r-v1:0")
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if m.Profile != provider.ProfileAmazon {
		t.Errorf("Expected amazon fallback, got %s", m.Profile)
	}
}

func TestRoute_Strict(t *testing.T) {
	router := NewRouter(&MockInvoker{strict: true})

	_, err := router.Route("cohere.command-r-v1:0")
	var unsupported *provider.UnsupportedProviderError
	if !errors.As(err, &unsupported) {
		t.Errorf("Expected UnsupportedProviderError, got %v", err)
	}
}

func TestExecute_CircuitBreakerOpen(t *testing.T) {
	inv := &MockInvoker{err: &provider.TransportError{ModelID: "amazon.nova-lite-v1:0", Err: errors.New("fail")}}
	router := NewRouter(inv)
	model := provider.Model{ID: "amazon.nova-lite-v1:0", Profile: provider.ProfileAmazon}

	// Trip the amazon breaker
	for i := 0; i < 3; i++ {
		_, _ = router.Execute(context.Background(), model, "hi", provider.Params{})
	}
	if router.State(provider.ProfileAmazon) != gobreaker.StateOpen {
		t.Fatalf("Expected amazon breaker open, got %s", router.State(provider.ProfileAmazon))
	}

	_, err := router.Execute(context.Background(), model, "hi", provider.Params{})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("Expected ErrProviderUnavailable, got %v", err)
	}
	if len(inv.calls) != 3 {
		t.Errorf("Open breaker must not call the invoker, got %d calls", len(inv.calls))
	}
	if router.State(provider.ProfileAnthropic) != gobreaker.StateClosed {
		t.Errorf("Anthropic breaker should stay closed")
	}
}

func TestExecute_MalformedDoesNotTrip(t *testing.T) {
	inv := &MockInvoker{err: &provider.MalformedResponseError{Profile: provider.ProfileAmazon, Field: "output"}}
	router := NewRouter(inv)
	model := provider.Model{ID: "amazon.nova-lite-v1:0", Profile: provider.ProfileAmazon}

	for i := 0; i < 5; i++ {
		_, err := router.Execute(context.Background(), model, "hi", provider.Params{})
		var malformed *provider.MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("Expected MalformedResponseError, got %v", err)
		}
	}
	if router.State(provider.ProfileAmazon) != gobreaker.StateClosed {
		t.Errorf("Expected breaker closed, got %s", router.State(provider.ProfileAmazon))
	}
}

func TestInvoke(t *testing.T) {
	inv := &MockInvoker{text: "ok"}
	router := NewRouter(inv)

	res, err := router.Invoke(context.Background(), provider.Request{ModelID: "anthropic.claude-3-sonnet-20240229-v1:0", Prompt: "hi"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if res.Text != "ok" || res.Profile != provider.ProfileAnthropic {
		t.Errorf("Unexpected result %+v", res)
	}
}
