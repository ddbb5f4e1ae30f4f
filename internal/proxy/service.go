// Package proxy is the request-proxying core. Every operation flows
// validate → rate limit → execute; validation and local rate-limit
// failures resolve before any network call.
package proxy

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vietddude/memgate/internal/core/domain"
	"github.com/vietddude/memgate/internal/infra/backend"
	"github.com/vietddude/memgate/internal/proxy/executor"
	"github.com/vietddude/memgate/internal/proxy/metrics"
	"github.com/vietddude/memgate/internal/proxy/ratelimit"
	"github.com/vietddude/memgate/internal/proxy/validate"
)

// Service exposes the proxied operations as typed methods.
type Service struct {
	limiter *ratelimit.Limiter
	exec    *executor.Executor
}

// New wires the core pipeline over the given transport.
func New(transport backend.Transport, timeout time.Duration, maxRetries int) *Service {
	return &Service{
		limiter: ratelimit.New(),
		exec:    executor.New(transport, timeout, maxRetries),
	}
}

// LastHealthy reports when the backend last answered successfully.
func (s *Service) LastHealthy() (time.Time, bool) {
	return s.exec.LastHealthy()
}

// invoke runs the rate-limit check and the executor for an already
// validated argument set, recording metrics either way.
func (s *Service) invoke(ctx context.Context, op domain.OperationKey, args any) (json.RawMessage, error) {
	metrics.RequestsTotal.WithLabelValues(op.String()).Inc()

	if err := s.limiter.CheckAndRecord(op); err != nil {
		metrics.RateLimitRejections.WithLabelValues(op.String()).Inc()
		metrics.ErrorsTotal.WithLabelValues(op.String(), string(domain.KindRateLimited)).Inc()
		return nil, err
	}

	start := time.Now()
	out, err := s.exec.Execute(ctx, op, args)
	metrics.RequestDuration.WithLabelValues(op.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		if pe, ok := domain.AsProxy(err); ok {
			metrics.ErrorsTotal.WithLabelValues(op.String(), string(pe.Kind)).Inc()
		}
		return nil, err
	}
	return out, nil
}

func (s *Service) failValidation(op domain.OperationKey, err error) error {
	metrics.RequestsTotal.WithLabelValues(op.String()).Inc()
	metrics.ErrorsTotal.WithLabelValues(op.String(), string(domain.KindValidation)).Inc()
	return err
}

func decode[T any](op domain.OperationKey, raw json.RawMessage) (*T, error) {
	var out T
	if len(raw) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &domain.ProxyError{Kind: domain.KindUnexpected, Op: op, Detail: "undecodable backend response: " + err.Error()}
	}
	return &out, nil
}

// Remember stores one memory.
func (s *Service) Remember(ctx context.Context, raw map[string]any) (*domain.Memory, error) {
	args, err := validate.RememberArgs(raw)
	if err != nil {
		return nil, s.failValidation(domain.OpRemember, err)
	}
	body, err := s.invoke(ctx, domain.OpRemember, args)
	if err != nil {
		return nil, err
	}
	return decode[domain.Memory](domain.OpRemember, body)
}

// Recall runs a semantic query and returns matching memories.
func (s *Service) Recall(ctx context.Context, raw map[string]any) ([]domain.Memory, error) {
	args, err := validate.RecallArgs(raw)
	if err != nil {
		return nil, s.failValidation(domain.OpRecall, err)
	}
	body, err := s.invoke(ctx, domain.OpRecall, args)
	if err != nil {
		return nil, err
	}
	out, err := decode[[]domain.Memory](domain.OpRecall, body)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// Search runs a graph search over the memory hierarchy. The payload is
// backend-defined and passed through untouched.
func (s *Service) Search(ctx context.Context, raw map[string]any) (json.RawMessage, error) {
	args, err := validate.SearchArgs(raw)
	if err != nil {
		return nil, s.failValidation(domain.OpSearch, err)
	}
	return s.invoke(ctx, domain.OpSearch, args)
}

// Forget deletes one memory by identifier.
func (s *Service) Forget(ctx context.Context, raw map[string]any) error {
	args, err := validate.ForgetArgs(raw)
	if err != nil {
		return s.failValidation(domain.OpForget, err)
	}
	_, err = s.invoke(ctx, domain.OpForget, args)
	return err
}

// Context generates a context window. The backend may answer with a JSON
// object or plain text; both decode to the context string.
func (s *Service) Context(ctx context.Context, raw map[string]any) (*domain.ContextResult, error) {
	args, err := validate.ContextArgs(raw)
	if err != nil {
		return nil, s.failValidation(domain.OpContext, err)
	}
	body, err := s.invoke(ctx, domain.OpContext, args)
	if err != nil {
		return nil, err
	}

	var out domain.ContextResult
	if len(body) == 0 {
		return &out, nil
	}
	if json.Unmarshal(body, &out) == nil && out.Context != "" {
		return &out, nil
	}
	var plain string
	if json.Unmarshal(body, &plain) == nil {
		out.Context = plain
		return &out, nil
	}
	out.Context = string(body)
	return &out, nil
}

// Observe submits a passage for automatic memory extraction.
func (s *Service) Observe(ctx context.Context, raw map[string]any) (*domain.ObserveResult, error) {
	args, err := validate.ObserveArgs(raw)
	if err != nil {
		return nil, s.failValidation(domain.OpObserve, err)
	}
	body, err := s.invoke(ctx, domain.OpObserve, args)
	if err != nil {
		return nil, err
	}
	return decode[domain.ObserveResult](domain.OpObserve, body)
}

// Health fetches the backend's self-reported health.
func (s *Service) Health(ctx context.Context) (*domain.HealthInfo, error) {
	body, err := s.invoke(ctx, domain.OpHealth, nil)
	if err != nil {
		return nil, err
	}
	return decode[domain.HealthInfo](domain.OpHealth, body)
}

// Stats fetches memory statistics.
func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	body, err := s.invoke(ctx, domain.OpStats, nil)
	if err != nil {
		return nil, err
	}
	return decode[domain.Stats](domain.OpStats, body)
}
