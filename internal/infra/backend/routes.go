package backend

import (
	"fmt"
	"net/http"

	"github.com/vietddude/memgate/internal/core/domain"
)

// Request is one backend call before transport concerns are applied.
type Request struct {
	Method string
	Path   string
	Body   any // JSON-encoded when non-nil
}

// BuildRequest maps an operation and its validated arguments onto the
// backend's fixed route table.
func BuildRequest(op domain.OperationKey, args any) (Request, error) {
	switch op {
	case domain.OpRemember:
		return Request{Method: http.MethodPost, Path: "/v1/memories", Body: args}, nil
	case domain.OpRecall:
		return Request{Method: http.MethodPost, Path: "/v1/memories/query", Body: args}, nil
	case domain.OpSearch:
		return Request{Method: http.MethodPost, Path: "/v1/hierarchy/search", Body: args}, nil
	case domain.OpForget:
		fa, ok := args.(domain.ForgetArgs)
		if !ok {
			return Request{}, fmt.Errorf("forget requires ForgetArgs, got %T", args)
		}
		return Request{Method: http.MethodDelete, Path: "/v1/memories/" + fa.ID}, nil
	case domain.OpContext:
		return Request{Method: http.MethodPost, Path: "/v1/context", Body: args}, nil
	case domain.OpObserve:
		return Request{Method: http.MethodPost, Path: "/v1/auto/observe", Body: args}, nil
	case domain.OpHealth:
		return Request{Method: http.MethodGet, Path: "/v1/health"}, nil
	case domain.OpStats:
		return Request{Method: http.MethodGet, Path: "/v1/memories/stats"}, nil
	default:
		return Request{}, fmt.Errorf("unknown operation %q", op)
	}
}
