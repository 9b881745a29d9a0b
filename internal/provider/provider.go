package provider

import (
	"strings"
	"time"
)

// Profile identifies the request and response shape of a model family.
type Profile int

const (
	ProfileUnknown Profile = iota
	ProfileAnthropic
	ProfileAmazon
)

func (p Profile) String() string {
	switch p {
	case ProfileAnthropic:
		return "anthropic"
	case ProfileAmazon:
		return "amazon"
	default:
		return "unknown"
	}
}

// Classify maps a model identifier to its profile by provider marker.
func Classify(modelID string) Profile {
	switch {
	case strings.Contains(modelID, "anthropic"):
		return ProfileAnthropic
	case strings.Contains(modelID, "amazon"):
		return ProfileAmazon
	default:
		return ProfileUnknown
	}
}

// Model is a model identifier with its profile already resolved.
type Model struct {
	ID      string
	Profile Profile
}

// Resolve classifies modelID once. Unknown identifiers fall back to the
// amazon profile unless strict is set.
func Resolve(modelID string, strict bool) (Model, error) {
	if strings.TrimSpace(modelID) == "" {
		return Model{}, ErrEmptyModel
	}
	profile := Classify(modelID)
	if profile == ProfileUnknown {
		if strict {
			return Model{}, &UnsupportedProviderError{ModelID: modelID}
		}
		profile = ProfileAmazon
	}
	return Model{ID: modelID, Profile: profile}, nil
}

// Params overrides generation defaults. Nil fields keep the profile default;
// fields a profile does not know are ignored.
type Params struct {
	MaxTokens    *int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopK         *int     `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	TopP         *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	MaxNewTokens *int     `json:"max_new_tokens,omitempty" yaml:"max_new_tokens,omitempty"`
}

// Merge returns p with every non-nil field of override applied on top.
func (p Params) Merge(override Params) Params {
	if override.MaxTokens != nil {
		p.MaxTokens = override.MaxTokens
	}
	if override.Temperature != nil {
		p.Temperature = override.Temperature
	}
	if override.TopK != nil {
		p.TopK = override.TopK
	}
	if override.TopP != nil {
		p.TopP = override.TopP
	}
	if override.MaxNewTokens != nil {
		p.MaxNewTokens = override.MaxNewTokens
	}
	return p
}

func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }

type Request struct {
	ModelID string
	Prompt  string
	Params  Params
}

type Result struct {
	ModelID string
	Profile Profile
	Text    string
	// Latency covers the network call only.
	Latency time.Duration
}

func (r *Result) LatencySeconds() float64 {
	return r.Latency.Seconds()
}

// Codec builds request bodies and extracts text for one profile.
type Codec interface {
	Profile() Profile
	Defaults() Params
	MarshalRequest(prompt string, params Params) ([]byte, error)
	UnmarshalResponse(body []byte) (string, error)
}
