package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kaiwa-ai/kaiwa/src/entitlement"
)

// Common error variables
var (
	// ErrNoAPIKey indicates the API key is missing. This is a blocking,
	// user-actionable configuration error.
	ErrNoAPIKey = errors.New("API key is required")

	// ErrEmptyResponse indicates the API returned no choices.
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrFallbackCycle indicates the fallback chain revisited a model
	// within one logical request.
	ErrFallbackCycle = errors.New("fallback chain revisited a model")
)

// ErrorResponse represents a standard error response from the API.
// This matches the OpenRouter error format: {"error":{"message":"...","code":"..."}}
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// APIError represents an error response from the upstream API.
type APIError struct {
	StatusCode int
	Type       string `json:"type,omitempty"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	RequestID  string `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsRateLimit returns true if this is a rate limit error.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "invalid_api_key"
}

// DenialError carries an entitlement denial out of Send when no silent
// fallback could satisfy the request. It is always recoverable by the
// caller: switch model or wait for the quota window.
type DenialError struct {
	ModelID    string
	Reason     entitlement.Reason
	FallbackID string
}

// Error implements the error interface.
func (e *DenialError) Error() string {
	if e.FallbackID != "" {
		return fmt.Sprintf("model %s denied: %s (suggested fallback: %s)", e.ModelID, e.Reason.Message(), e.FallbackID)
	}
	return fmt.Sprintf("model %s denied: %s", e.ModelID, e.Reason.Message())
}

// IsDenial reports whether err is an entitlement denial and returns it.
func IsDenial(err error) (*DenialError, bool) {
	var d *DenialError
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
