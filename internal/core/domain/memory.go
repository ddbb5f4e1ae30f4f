package domain

import (
	"encoding/json"
	"time"
)

// Memory is one stored item as the backend returns it.
type Memory struct {
	ID        string    `json:"id"`
	Raw       string    `json:"raw"`
	Processed string    `json:"processed,omitempty"`
	Layer     string    `json:"layer"`
	Score     *float64  `json:"score,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// SearchResult carries the backend-defined hierarchy search payload as-is.
type SearchResult struct {
	Data json.RawMessage `json:"data"`
}

// ContextResult is the generated context window.
type ContextResult struct {
	Context string `json:"context"`
}

// ObserveResult lists memories the backend auto-extracted from a passage.
type ObserveResult struct {
	Memories []Memory `json:"memories"`
}

// HealthInfo is the backend's self-reported health.
type HealthInfo struct {
	Healthy bool    `json:"healthy"`
	Uptime  float64 `json:"uptime,omitempty"`
	Version string  `json:"version,omitempty"`
}

// Stats summarizes the backend's stored memories.
type Stats struct {
	Total    int            `json:"total"`
	ByLayer  map[string]int `json:"byLayer"`
	BySource map[string]int `json:"bySource"`
}
