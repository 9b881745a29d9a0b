package provider

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyModel  = errors.New("model identifier is empty")
	ErrEmptyPrompt = errors.New("prompt is empty")
)

// TransportError means the call to the inference endpoint did not complete.
// Code carries the service error code when one was returned.
type TransportError struct {
	ModelID string
	Code    string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("invoke %s: %s: %v", e.ModelID, e.Code, e.Err)
	}
	return fmt.Sprintf("invoke %s: %v", e.ModelID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError means the response body could not be parsed or
// lacked a field the profile requires.
type MalformedResponseError struct {
	Profile Profile
	Field   string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("malformed %s response: %s: %v", e.Profile, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("malformed %s response: missing %s", e.Profile, e.Field)
	default:
		return fmt.Sprintf("malformed %s response: %v", e.Profile, e.Err)
	}
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

type UnsupportedProviderError struct {
	ModelID string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("no provider profile matches model %q", e.ModelID)
}
