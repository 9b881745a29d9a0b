package claude

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/vnmchuo/bedrock-compare/internal/provider"
)

func TestMarshalRequest_Defaults(t *testing.T) {
	body, err := New().MarshalRequest("Hello", provider.Params{})
	if err != nil {
		t.Fatalf("MarshalRequest failed: %v", err)
	}

	want := `{"anthropic_version":"bedrock-2023-05-31","max_tokens":2048,"temperature":0.9,"top_k":250,"top_p":1,` +
		`"messages":[{"role":"user","content":[{"type":"text","text":"Hello"}]}]}`
	if string(body) != want {
		t.Errorf("Expected %s, got %s", want, body)
	}
}

func TestMarshalRequest_Override(t *testing.T) {
	body, err := New().MarshalRequest("hi", provider.Params{
		MaxTokens:    provider.Int(10),
		TopP:         provider.Float(0.5),
		MaxNewTokens: provider.Int(999),
	})
	if err != nil {
		t.Fatalf("MarshalRequest failed: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if got["max_tokens"].(float64) != 10 {
		t.Errorf("Expected max_tokens 10, got %v", got["max_tokens"])
	}
	if got["top_p"].(float64) != 0.5 {
		t.Errorf("Expected top_p 0.5, got %v", got["top_p"])
	}
	if got["temperature"].(float64) != 0.9 {
		t.Errorf("Expected default temperature 0.9, got %v", got["temperature"])
	}
	if _, ok := got["max_new_tokens"]; ok {
		t.Errorf("max_new_tokens should be ignored, got body %s", body)
	}
}

func TestUnmarshalResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty content", `{"content":[]}`, ""},
		{"missing content", `{"id":"msg_1","role":"assistant"}`, ""},
		{"single fragment", `{"content":[{"type":"text","text":"Hello!"}]}`, "Hello!"},
		{"concatenated in order", `{"content":[{"text":"a"},{"text":"b"}]}`, "ab"},
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
	for _, body := range []string{`not json`, `{"content":[{"type":"tool_use"}]}`} {
		_, err := New().UnmarshalResponse([]byte(body))
		var malformed *provider.MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Errorf("Expected MalformedResponseError for %s, got %v", body, err)
			continue
		}
		if malformed.Profile != provider.ProfileAnthropic {
			t.Errorf("Expected anthropic profile, got %s", malformed.Profile)
		}
	}
}

func TestProfile(t *testing.T) {
	if New().Profile() != provider.ProfileAnthropic {
		t.Errorf("Expected anthropic profile, got %s", New().Profile())
	}
}
