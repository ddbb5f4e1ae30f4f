package domain

// Validated argument sets. These are produced only by the validator and
// are the sole input accepted by the request executor. Field names match
// the backend's request schema.

// RememberArgs stores one memory.
type RememberArgs struct {
	Raw   string `json:"raw"`
	Layer string `json:"layer,omitempty"`
	// Importance is either a canonical enum string (LOW, MEDIUM, HIGH,
	// CRITICAL) or a float64 in [0,1].
	Importance any            `json:"importance,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Source     string         `json:"source,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// RecallArgs runs a semantic query over stored memories.
type RecallArgs struct {
	Query         string   `json:"query"`
	Layers        []string `json:"layers,omitempty"`
	Limit         int      `json:"limit"`
	Tags          []string `json:"tags,omitempty"`
	MinImportance any      `json:"minImportance,omitempty"`
}

// SearchArgs runs a graph search over the memory hierarchy.
type SearchArgs struct {
	Query      string `json:"query"`
	EntityType string `json:"entityType,omitempty"`
}

// ForgetArgs deletes one memory by identifier. The identifier travels in
// the request path, not the body.
type ForgetArgs struct {
	ID string `json:"-"`
}

// ContextArgs generates a context window.
type ContextArgs struct {
	MaxTokens int    `json:"maxTokens"`
	Focus     string `json:"focus,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
}

// ObserveArgs submits a passage for automatic memory extraction.
type ObserveArgs struct {
	Content  string         `json:"content"`
	Source   string         `json:"source,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
