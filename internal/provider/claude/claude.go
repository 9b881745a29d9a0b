package claude

import (
	"encoding/json"
	"fmt"

	"github.com/vnmchuo/bedrock-compare/internal/provider"
)

const AnthropicVersion = "bedrock-2023-05-31"

type Codec struct{}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopK             *int            `json:"top_k,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeResponse struct {
	Content []claudeFragment `json:"content"`
}

type claudeFragment struct {
	Type string  `json:"type"`
	Text *string `json:"text"`
}

func New() provider.Codec {
	return Codec{}
}

func (Codec) Profile() provider.Profile {
	return provider.ProfileAnthropic
}

func (Codec) Defaults() provider.Params {
	return provider.Params{
		MaxTokens:   provider.Int(2048),
		Temperature: provider.Float(0.9),
		TopK:        provider.Int(250),
		TopP:        provider.Float(1),
	}
}

func (c Codec) MarshalRequest(prompt string, params provider.Params) ([]byte, error) {
	return json.Marshal(c.mapRequest(prompt, params))
}

func (c Codec) mapRequest(prompt string, params provider.Params) claudeRequest {
	p := c.Defaults().Merge(params)

	return claudeRequest{
		AnthropicVersion: AnthropicVersion,
		MaxTokens:        *p.MaxTokens,
		Temperature:      p.Temperature,
		TopK:             p.TopK,
		TopP:             p.TopP,
		Messages: []claudeMessage{{
			Role:    "user",
			Content: []claudeContent{{Type: "text", Text: prompt}},
		}},
	}
}

// UnmarshalResponse joins content[].text in order. A body without content
// yields empty text.
func (Codec) UnmarshalResponse(body []byte) (string, error) {
	var claudeResp claudeResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", &provider.MalformedResponseError{Profile: provider.ProfileAnthropic, Err: err}
	}

	var text []byte
	for i, frag := range claudeResp.Content {
		if frag.Text == nil {
			return "", &provider.MalformedResponseError{
				Profile: provider.ProfileAnthropic,
				Field:   fmt.Sprintf("content[%d].text", i),
			}
		}
		text = append(text, *frag.Text...)
	}
	return string(text), nil
}
