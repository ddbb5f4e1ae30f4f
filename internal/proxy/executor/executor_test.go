package executor

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/memgate/internal/core/domain"
	"github.com/vietddude/memgate/internal/infra/backend"
)

// step is one scripted transport outcome.
type step struct {
	status int
	header http.Header
	body   string
	err    error
}

// fakeTransport plays back scripted outcomes and counts calls.
type fakeTransport struct {
	steps []step
	calls int
	last  backend.Request
}

func (f *fakeTransport) Do(ctx context.Context, r backend.Request) (*backend.Response, error) {
	f.last = r
	i := f.calls
	f.calls++
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	s := f.steps[i]
	if s.err != nil {
		return nil, s.err
	}
	h := s.header
	if h == nil {
		h = http.Header{}
	}
	return &backend.Response{Status: s.status, Header: h, Body: []byte(s.body)}, nil
}

func newExecutor(t *fakeTransport, maxRetries int) *Executor {
	e := New(t, 2*time.Second, maxRetries)
	e.retryInterval = time.Millisecond
	return e
}

var connRefused = errors.New("dial tcp 127.0.0.1:9999: connect: connection refused")

func TestExecute_RetriesServerFailuresThenSucceeds(t *testing.T) {
	ft := &fakeTransport{steps: []step{
		{status: 500, body: "boom"},
		{status: 503, body: "busy"},
		{status: 200, body: `{"healthy":true}`},
	}}
	e := newExecutor(ft, 2)

	body, err := e.Execute(context.Background(), domain.OpHealth, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ft.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", ft.calls)
	}
	if string(body) != `{"healthy":true}` {
		t.Errorf("unexpected body %q", body)
	}
	if _, ok := e.LastHealthy(); !ok {
		t.Error("success should set the health timestamp")
	}
}

func TestExecute_ServerFailuresExhaustBudget(t *testing.T) {
	ft := &fakeTransport{steps: []step{{status: 502, body: "bad gateway"}}}
	e := newExecutor(ft, 2)

	_, err := e.Execute(context.Background(), domain.OpRecall, domain.RecallArgs{Query: "q", Limit: 10})
	pe, ok := domain.AsProxy(err)
	if !ok || pe.Kind != domain.KindUnexpected {
		t.Fatalf("expected unexpected outcome, got %v", err)
	}
	if pe.Status != 502 {
		t.Errorf("outcome should carry the last status, got %d", pe.Status)
	}
	if ft.calls != 3 {
		t.Errorf("expected maxRetries+1 = 3 attempts, got %d", ft.calls)
	}
}

func TestExecute_TimeoutExhaustsToTimeout(t *testing.T) {
	ft := &fakeTransport{steps: []step{{err: context.DeadlineExceeded}}}
	e := newExecutor(ft, 1)

	_, err := e.Execute(context.Background(), domain.OpHealth, nil)
	pe, ok := domain.AsProxy(err)
	if !ok || pe.Kind != domain.KindTimeout {
		t.Fatalf("expected timeout outcome, got %v", err)
	}
	if ft.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", ft.calls)
	}
}

func TestExecute_ConnectionFailureIsOffline(t *testing.T) {
	ft := &fakeTransport{steps: []step{{err: connRefused}}}
	e := newExecutor(ft, 5)

	_, err := e.Execute(context.Background(), domain.OpHealth, nil)
	pe, ok := domain.AsProxy(err)
	if !ok || pe.Kind != domain.KindOffline {
		t.Fatalf("expected offline outcome, got %v", err)
	}
	if ft.calls != 1 {
		t.Errorf("offline must not be retried, got %d attempts", ft.calls)
	}
	if !strings.Contains(pe.Error(), "unset") {
		t.Errorf("message should say last healthy is unset, got %q", pe.Error())
	}
}

func TestExecute_OfflineCarriesLastHealthy(t *testing.T) {
	ft := &fakeTransport{steps: []step{
		{status: 200, body: `{}`},
		{err: connRefused},
	}}
	e := newExecutor(ft, 0)

	if _, err := e.Execute(context.Background(), domain.OpHealth, nil); err != nil {
		t.Fatalf("first call should succeed: %v", err)
	}
	healthy, ok := e.LastHealthy()
	if !ok {
		t.Fatal("health timestamp should be set")
	}

	_, err := e.Execute(context.Background(), domain.OpHealth, nil)
	pe, _ := domain.AsProxy(err)
	if pe == nil || pe.Kind != domain.KindOffline {
		t.Fatalf("expected offline outcome, got %v", err)
	}
	if !pe.LastHealthy.Equal(healthy) {
		t.Errorf("offline outcome should carry the exact prior success time")
	}
	if !strings.Contains(pe.Error(), healthy.Format(time.RFC3339)) {
		t.Errorf("message should cite the prior success timestamp, got %q", pe.Error())
	}
}

func TestExecute_TerminalStatusesAreNotRetried(t *testing.T) {
	cases := []struct {
		status int
		kind   domain.ErrorKind
	}{
		{401, domain.KindAuth},
		{403, domain.KindAuth},
		{404, domain.KindNotFound},
		{429, domain.KindRemoteRateLimited},
		{400, domain.KindUnexpected},
	}

	for _, tc := range cases {
		ft := &fakeTransport{steps: []step{{status: tc.status}}}
		e := newExecutor(ft, 5)

		_, err := e.Execute(context.Background(), domain.OpStats, nil)
		pe, ok := domain.AsProxy(err)
		if !ok || pe.Kind != tc.kind {
			t.Errorf("status %d: expected kind %s, got %v", tc.status, tc.kind, err)
			continue
		}
		if ft.calls != 1 {
			t.Errorf("status %d: terminal failure retried %d times", tc.status, ft.calls-1)
		}
	}
}

func TestExecute_RetryAfterPropagates(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "17")
	ft := &fakeTransport{steps: []step{{status: 429, header: h}}}
	e := newExecutor(ft, 2)

	_, err := e.Execute(context.Background(), domain.OpRemember, domain.RememberArgs{Raw: "x"})
	pe, _ := domain.AsProxy(err)
	if pe == nil || pe.Kind != domain.KindRemoteRateLimited {
		t.Fatalf("expected remote rate-limited outcome, got %v", err)
	}
	if pe.RetryAfter != 17*time.Second {
		t.Errorf("retry-after hint not propagated: %v", pe.RetryAfter)
	}
}

func TestExecute_EmptyBodyIsNoValue(t *testing.T) {
	ft := &fakeTransport{steps: []step{{status: 204}}}
	e := newExecutor(ft, 0)

	body, err := e.Execute(context.Background(), domain.OpForget, domain.ForgetArgs{ID: "mem_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != nil {
		t.Errorf("empty response should decode to no value, got %q", body)
	}
	if ft.last.Method != http.MethodDelete || ft.last.Path != "/v1/memories/mem_1" {
		t.Errorf("unexpected route %s %s", ft.last.Method, ft.last.Path)
	}
}

func TestExecute_CanceledContextStopsRetrying(t *testing.T) {
	ft := &fakeTransport{steps: []step{{status: 500}}}
	e := New(ft, 2*time.Second, 5)
	e.retryInterval = time.Hour // the wait must be interruptible

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := e.Execute(ctx, domain.OpHealth, nil)
		done <- err
	}()

	select {
	case err := <-done:
		pe, ok := domain.AsProxy(err)
		if !ok || (pe.Kind != domain.KindTimeout && pe.Kind != domain.KindUnexpected) {
			t.Fatalf("expected terminal outcome after cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation did not interrupt the retry wait")
	}
}
