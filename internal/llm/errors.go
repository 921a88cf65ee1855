package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors are raised before any side effect; callers can fix
// the input and resubmit.
var (
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrMessageTooLong = errors.New("message is too long, please limit to 2000 characters")
)

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	// KindConfiguration covers missing or rejected credentials. Fatal until
	// an operator fixes the key.
	KindConfiguration ErrorKind = "configuration"
	// KindQuota covers rate-limit and quota exhaustion. Transient; the
	// caller may back off and retry.
	KindQuota ErrorKind = "quota"
	// KindUnavailable is the catch-all for any other provider failure.
	KindUnavailable ErrorKind = "unavailable"
)

// ProviderError wraps a failed provider call with its classification and a
// user-facing reason string. The underlying error is kept for logs.
type ProviderError struct {
	Kind ErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	switch e.Kind {
	case KindConfiguration:
		return "system error: invalid configuration, please check the API key"
	case KindQuota:
		return "API quota exceeded, please try again later"
	default:
		return fmt.Sprintf("the AI agent is currently unavailable: %v", e.Err)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ClassifyProviderError sorts a raw provider failure into the taxonomy by
// inspecting its message, mirroring how upstream SDKs surface these cases.
func ClassifyProviderError(err error) *ProviderError {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication"),
		strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "401"):
		return &ProviderError{Kind: KindConfiguration, Err: err}
	case strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "429"):
		return &ProviderError{Kind: KindQuota, Err: err}
	default:
		return &ProviderError{Kind: KindUnavailable, Err: err}
	}
}
