// Package executor runs one logical backend operation: timeout, bounded
// retries, failure classification, and backend health tracking.
package executor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vietddude/memgate/internal/core/domain"
	"github.com/vietddude/memgate/internal/infra/backend"
	"github.com/vietddude/memgate/internal/proxy/metrics"
)

const defaultRetryInterval = 1 * time.Second

// Executor orchestrates backend calls. Safe for concurrent use; retry
// waits are local to each call.
type Executor struct {
	transport     backend.Transport
	timeout       time.Duration
	maxRetries    int
	retryInterval time.Duration

	// lastHealthy is the unix-nano time of the last successful response.
	// Zero means the backend was never seen healthy.
	lastHealthy atomic.Int64
}

// New creates an executor over the given transport.
func New(transport backend.Transport, timeout time.Duration, maxRetries int) *Executor {
	return &Executor{
		transport:     transport,
		timeout:       timeout,
		maxRetries:    maxRetries,
		retryInterval: defaultRetryInterval,
	}
}

// LastHealthy returns the time of the last successful backend response.
// ok is false when no success has occurred yet.
func (e *Executor) LastHealthy() (t time.Time, ok bool) {
	n := e.lastHealthy.Load()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n), true
}

func (e *Executor) markHealthy() {
	e.lastHealthy.Store(time.Now().UnixNano())
}

func (e *Executor) lastHealthyTime() time.Time {
	t, _ := e.LastHealthy()
	return t
}

// Execute runs one operation against the backend and returns the raw
// response body on success (nil for an empty body). Failures resolve to
// exactly one *domain.ProxyError.
//
// Retries apply only to server-side failures (5xx) and timeouts, with a
// fixed wait between attempts. Auth, not-found, and backend rate-limit
// responses are terminal on first occurrence.
func (e *Executor) Execute(ctx context.Context, op domain.OperationKey, args any) (json.RawMessage, error) {
	req, err := backend.BuildRequest(op, args)
	if err != nil {
		return nil, &domain.ProxyError{Kind: domain.KindUnexpected, Op: op, Detail: err.Error()}
	}

	var (
		lastStatus   int
		lastTimedOut bool
	)

	attempts := e.maxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			metrics.RetriesTotal.WithLabelValues(op.String()).Inc()
			select {
			case <-ctx.Done():
				return nil, e.exhausted(op, lastStatus, lastTimedOut)
			case <-time.After(e.retryInterval):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		resp, err := e.transport.Do(callCtx, req)
		cancel()

		if err != nil {
			if transient(err) {
				lastTimedOut = true
				slog.Debug("backend call timed out", "operation", op, "attempt", attempt+1)
				continue
			}
			// Not an HTTP response at all: the degraded-mode signal.
			return nil, domain.NewOffline(op, e.lastHealthyTime(), err.Error())
		}

		outcome, retry := classify(op, resp)
		if retry {
			lastStatus = resp.Status
			lastTimedOut = false
			slog.Debug("backend server failure", "operation", op, "status", resp.Status, "attempt", attempt+1)
			continue
		}
		if outcome != nil {
			return nil, outcome
		}

		e.markHealthy()
		if len(resp.Body) == 0 {
			return nil, nil
		}
		return resp.Body, nil
	}

	return nil, e.exhausted(op, lastStatus, lastTimedOut)
}

// exhausted converts the last transient failure into its terminal form.
func (e *Executor) exhausted(op domain.OperationKey, lastStatus int, timedOut bool) *domain.ProxyError {
	if timedOut || lastStatus == 0 {
		return &domain.ProxyError{Kind: domain.KindTimeout, Op: op}
	}
	return &domain.ProxyError{
		Kind:   domain.KindUnexpected,
		Op:     op,
		Status: lastStatus,
		Detail: "backend kept failing",
	}
}
