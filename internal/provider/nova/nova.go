package nova

import (
	"encoding/json"
	"fmt"

	"github.com/vnmchuo/bedrock-compare/internal/provider"
)

type Codec struct{}

type novaRequest struct {
	InferenceConfig novaInferenceConfig `json:"inferenceConfig"`
	Messages        []novaMessage       `json:"messages"`
}

type novaInferenceConfig struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

type novaMessage struct {
	Role    string        `json:"role"`
	Content []novaContent `json:"content"`
}

type novaContent struct {
	Text string `json:"text"`
}

type novaResponse struct {
	Output *struct {
		Message *struct {
			Content []novaFragment `json:"content"`
		} `json:"message"`
	} `json:"output"`
}

type novaFragment struct {
	Text *string `json:"text"`
}

func New() provider.Codec {
	return Codec{}
}

func (Codec) Profile() provider.Profile {
	return provider.ProfileAmazon
}

func (Codec) Defaults() provider.Params {
	return provider.Params{MaxNewTokens: provider.Int(500)}
}

// MarshalRequest only honors MaxNewTokens.
func (c Codec) MarshalRequest(prompt string, params provider.Params) ([]byte, error) {
	p := c.Defaults().Merge(params)

	return json.Marshal(novaRequest{
		InferenceConfig: novaInferenceConfig{MaxNewTokens: *p.MaxNewTokens},
		Messages: []novaMessage{{
			Role:    "user",
			Content: []novaContent{{Text: prompt}},
		}},
	})
}

// UnmarshalResponse joins output.message.content[].text in order. Every level
// of that path must be present.
func (Codec) UnmarshalResponse(body []byte) (string, error) {
	var novaResp novaResponse
	if err := json.Unmarshal(body, &novaResp); err != nil {
		return "", &provider.MalformedResponseError{Profile: provider.ProfileAmazon, Err: err}
	}

	missing := func(field string) error {
		return &provider.MalformedResponseError{Profile: provider.ProfileAmazon, Field: field}
	}
	switch {
	case novaResp.Output == nil:
		return "", missing("output")
	case novaResp.Output.Message == nil:
		return "", missing("output.message")
	case novaResp.Output.Message.Content == nil:
		return "", missing("output.message.content")
	}

	var text []byte
	for i, frag := range novaResp.Output.Message.Content {
		if frag.Text == nil {
			return "", missing(fmt.Sprintf("output.message.content[%d].text", i))
		}
		text = append(text, *frag.Text...)
	}
	return string(text), nil
}
