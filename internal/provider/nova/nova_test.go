package nova

import (
	"errors"
	"testing"

	"github.com/vnmchuo/bedrock-compare/internal/provider"
)

func TestMarshalRequest(t *testing.T) {
	body, err := New().MarshalRequest("Hello", provider.Params{MaxNewTokens: provider.Int(500)})
	if err != nil {
		t.Fatalf("MarshalRequest failed: %v", err)
	}

	want := `{"inferenceConfig":{"max_new_tokens":500},"messages":[{"role":"user","content":[{"text":"Hello"}]}]}`
	if string(body) != want {
		t.Errorf("Expected %s, got %s", want, body)
	}
}

func TestMarshalRequest_IgnoresAnthropicParams(t *testing.T) {
	body, err := New().MarshalRequest("hi", provider.Params{
		MaxTokens:   provider.Int(10),
		Temperature: provider.Float(0.1),
	})
	if err != nil {
		t.Fatalf("MarshalRequest failed: %v", err)
	}

	want := `{"inferenceConfig":{"max_new_tokens":500},"messages":[{"role":"user","content":[{"text":"hi"}]}]}`
	if string(body) != want {
		t.Errorf("Expected %s, got %s", want, body)
	}
}

func TestUnmarshalResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"single fragment", `{"output":{"message":{"content":[{"text":"x"}]}}}`, "x"},
		{"concatenated in order", `{"output":{"message":{"role":"assistant","content":[{"text":"x"},{"text":"y"}]}},"stopReason":"end_turn"}`, "xy"},
		{"zero fragments", `{"output":{"message":{"content":[]}}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().UnmarshalResponse([]byte(tt.body))
			if err != nil {
				t.Fatalf("UnmarshalResponse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUnmarshalResponse_Malformed(t *testing.T) {
	tests := []struct {
		body  string
		field string
	}{
		{`{"content":[{"text":"x"}]}`, "output"},
		{`{"output":{}}`, "output.message"},
		{`{"output":{"message":{"role":"assistant"}}}`, "output.message.content"},
		{`{"output":{"message":{"content":[{"image":{}}]}}}`, "output.message.content[0].text"},
		{`{"output":`, ""},
	}

	for _, tt := range tests {
		_, err := New().UnmarshalResponse([]byte(tt.body))
		var malformed *provider.MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Errorf("Expected MalformedResponseError for %s, got %v", tt.body, err)
			continue
		}
		if malformed.Field != tt.field {
			t.Errorf("Expected field %q, got %q", tt.field, malformed.Field)
		}
	}
}
