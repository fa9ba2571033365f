// Package extractor defines the pluggable video source extraction mechanism
// and the priority-ordered registry that dispatches to it.
package extractor

import "fmt"

// Kind classifies extraction failures so callers can decide between retrying,
// falling back and surfacing a provider-broken condition.
type Kind string

const (
	// KindFormat marks malformed input ids or unexpected payload shapes.
	KindFormat Kind = "FORMAT"
	// KindNotAvailable marks 404s and empty or region-gated results.
	KindNotAvailable Kind = "NOT_AVAILABLE"
	// KindRateLimited marks HTTP 429 responses.
	KindRateLimited Kind = "RATE_LIMITED"
	// KindNetwork marks transport-level failures.
	KindNetwork Kind = "NETWORK"
	// KindCrypto marks decryption failures and key distribution problems.
	KindCrypto Kind = "CRYPTO"
	// KindUnknown marks anything that escaped classification.
	KindUnknown Kind = "UNKNOWN"
)

// Error is a classified extraction failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds a classified extraction error.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Retryable reports whether the failure is worth a user-initiated retry,
// as opposed to a provider-currently-broken condition.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindNetwork
}
