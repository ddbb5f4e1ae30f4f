package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vietddude/memgate/internal/core/domain"
)

// envelope is the wire shape for every tool response.
type envelope struct {
	OK     bool       `json:"ok"`
	Result any        `json:"result,omitempty"`
	Error  *toolError `json:"error,omitempty"`
}

type toolError struct {
	Kind              string `json:"kind"`
	Message           string `json:"message"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

// writeOutcome renders a failed operation. Domain outcomes travel in the
// envelope with HTTP 200; the calling protocol reads the error kind from
// the body, not the status line.
func writeOutcome(w http.ResponseWriter, err error) {
	pe, ok := domain.AsProxy(err)
	if !ok {
		writeJSON(w, http.StatusOK, envelope{OK: false, Error: &toolError{
			Kind:    string(domain.KindUnexpected),
			Message: err.Error(),
		}})
		return
	}

	te := &toolError{Kind: string(pe.Kind), Message: pe.Error()}
	if pe.RetryAfter > 0 {
		te.RetryAfterSeconds = int(pe.RetryAfter.Seconds())
	}
	if pe.Kind == domain.KindOffline {
		te.Message = degradedMessage(pe)
	}
	writeJSON(w, http.StatusOK, envelope{OK: false, Error: te})
}

// degradedMessage turns an offline outcome into a usable explanation
// instead of a raw transport error.
func degradedMessage(pe *domain.ProxyError) string {
	return fmt.Sprintf(
		"The memory backend is currently unreachable, so %s could not run. "+
			"Nothing was stored or lost; try again once the backend is back. "+
			"Last healthy: %s.",
		pe.Op, pe.LastHealthyString(),
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
