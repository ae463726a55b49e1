package services

import (
	"errors"
	"fmt"
)

// Provider failure kinds. ProviderError wraps exactly one of them.
var (
	ErrConnection    = errors.New("provider unreachable")
	ErrBadRequest    = errors.New("provider rejected the request")
	ErrUpstreamAuth  = errors.New("provider credential or review problem")
	ErrUpstreamOther = errors.New("provider error")
	ErrNoResults     = errors.New("no results")
)

// Graph API error codes with a dedicated user-facing reply.
const (
	GraphCodePendingReview = 10
	GraphCodeAuth          = 190
)

// ProviderError describes a failed call to MapQuest or the Graph API.
// For MapQuest Code is info.statuscode; for Graph it is error.code.
type ProviderError struct {
	Provider string
	Kind     error
	Code     int
	HasCode  bool
	Message  string
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	if e.HasCode {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Kind }

// connectionError classifies a transport failure. Timeouts and an open
// breaker count as connection failures too.
func connectionError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ErrConnection, Message: err.Error()}
}
