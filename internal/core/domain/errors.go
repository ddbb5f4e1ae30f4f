package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind is the closed set of failure classes a proxied operation can
// resolve to. Every failed operation produces exactly one kind.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindRateLimited       ErrorKind = "rate_limited"
	KindAuth              ErrorKind = "auth"
	KindNotFound          ErrorKind = "not_found"
	KindRemoteRateLimited ErrorKind = "remote_rate_limited"
	KindTimeout           ErrorKind = "timeout"
	KindOffline           ErrorKind = "offline"
	KindUnexpected        ErrorKind = "unexpected"
)

// ProxyError is the single error type returned from the proxy core.
// Callers switch on Kind; the remaining fields are populated per kind.
type ProxyError struct {
	Kind   ErrorKind
	Op     OperationKey
	Detail string

	// Status is the last HTTP status observed, when one was.
	Status int

	// RetryAfter is set for rate-limit kinds.
	RetryAfter time.Duration

	// LastHealthy is set for offline outcomes. Zero means the backend
	// was never seen healthy.
	LastHealthy time.Time
}

func (e *ProxyError) Error() string {
	switch e.Kind {
	case KindValidation:
		return fmt.Sprintf("invalid arguments for %s: %s", e.Op, e.Detail)
	case KindRateLimited:
		return fmt.Sprintf("rate limit exceeded for %s, retry after %ds", e.Op, int(e.RetryAfter.Seconds()))
	case KindAuth:
		return fmt.Sprintf("%s: backend rejected credentials", e.Op)
	case KindNotFound:
		if e.Detail != "" {
			return fmt.Sprintf("%s: not found: %s", e.Op, e.Detail)
		}
		return fmt.Sprintf("%s: not found", e.Op)
	case KindRemoteRateLimited:
		if e.RetryAfter > 0 {
			return fmt.Sprintf("%s: backend rate limited, retry after %ds", e.Op, int(e.RetryAfter.Seconds()))
		}
		return fmt.Sprintf("%s: backend rate limited", e.Op)
	case KindTimeout:
		return fmt.Sprintf("%s: backend timed out", e.Op)
	case KindOffline:
		return fmt.Sprintf("%s: backend unreachable (last healthy: %s)", e.Op, e.LastHealthyString())
	default:
		return fmt.Sprintf("%s: unexpected failure: %s", e.Op, e.Detail)
	}
}

// LastHealthyString renders the last-healthy timestamp for offline
// messages, "unset" when the backend was never reached.
func (e *ProxyError) LastHealthyString() string {
	if e.LastHealthy.IsZero() {
		return "unset"
	}
	return e.LastHealthy.Format(time.RFC3339)
}

// NewValidation builds a validation outcome. Never reaches the network.
func NewValidation(op OperationKey, format string, args ...any) *ProxyError {
	return &ProxyError{Kind: KindValidation, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// NewRateLimited builds a local rate-limit outcome.
func NewRateLimited(op OperationKey, retryAfter time.Duration) *ProxyError {
	return &ProxyError{Kind: KindRateLimited, Op: op, RetryAfter: retryAfter}
}

// NewOffline builds an offline outcome carrying the last known healthy time.
func NewOffline(op OperationKey, lastHealthy time.Time, detail string) *ProxyError {
	return &ProxyError{Kind: KindOffline, Op: op, LastHealthy: lastHealthy, Detail: detail}
}

// AsProxy extracts a *ProxyError from an error chain.
func AsProxy(err error) (*ProxyError, bool) {
	var pe *ProxyError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
