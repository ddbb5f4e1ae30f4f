package executor

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/vietddude/memgate/internal/core/domain"
	"github.com/vietddude/memgate/internal/infra/backend"
)

// classify maps an HTTP response onto the error taxonomy. It returns
// (nil, false) for success and (nil, true) for a retryable server-side
// failure; everything else resolves to a terminal outcome immediately.
// The mapping is exhaustive: no status leaves this function unclassified.
func classify(op domain.OperationKey, resp *backend.Response) (outcome *domain.ProxyError, retry bool) {
	switch {
	case resp.Status >= 200 && resp.Status < 300:
		return nil, false
	case resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden:
		return &domain.ProxyError{Kind: domain.KindAuth, Op: op, Status: resp.Status}, false
	case resp.Status == http.StatusNotFound:
		return &domain.ProxyError{Kind: domain.KindNotFound, Op: op, Status: resp.Status}, false
	case resp.Status == http.StatusTooManyRequests:
		return &domain.ProxyError{
			Kind:       domain.KindRemoteRateLimited,
			Op:         op,
			Status:     resp.Status,
			RetryAfter: resp.RetryAfter(),
		}, false
	case resp.Status >= 500:
		return nil, true
	default:
		// Remaining 4xx and anything non-standard.
		return &domain.ProxyError{
			Kind:   domain.KindUnexpected,
			Op:     op,
			Status: resp.Status,
			Detail: http.StatusText(resp.Status),
		}, false
	}
}

// transient reports whether a transport-level error is a timeout (or
// cancellation, which follows the same path). Everything else is a
// connection-level failure and classifies as offline.
func transient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
