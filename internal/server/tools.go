package server

import (
	"context"

	"github.com/vietddude/memgate/internal/core/domain"
)

// tool binds a name and description to one proxy operation.
type tool struct {
	name        string
	description string
	invoke      func(ctx context.Context, args map[string]any) (any, error)
}

// Descriptor is the public listing shape for one tool.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) registry() map[string]tool {
	list := []tool{
		{
			name:        "remember",
			description: "Store a memory. Args: content (required), layer, importance, tags, source, metadata.",
			invoke: func(ctx context.Context, args map[string]any) (any, error) {
				return s.svc.Remember(ctx, args)
			},
		},
		{
			name:        "recall",
			description: "Semantic search over stored memories. Args: query (required), layers, limit, tags, minImportance.",
			invoke: func(ctx context.Context, args map[string]any) (any, error) {
				return s.svc.Recall(ctx, args)
			},
		},
		{
			name:        "search",
			description: "Graph search over the memory hierarchy. Args: query (required), entityType.",
			invoke: func(ctx context.Context, args map[string]any) (any, error) {
				return s.svc.Search(ctx, args)
			},
		},
		{
			name:        "forget",
			description: "Delete a memory by id. Args: id (required).",
			invoke: func(ctx context.Context, args map[string]any) (any, error) {
				if err := s.svc.Forget(ctx, args); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": true}, nil
			},
		},
		{
			name:        "context",
			description: "Generate a context window from stored memories. Args: maxTokens, focus, projectId.",
			invoke: func(ctx context.Context, args map[string]any) (any, error) {
				return s.svc.Context(ctx, args)
			},
		},
		{
			name:        "observe",
			description: "Submit a passage for automatic memory extraction. Args: content (required), source, metadata.",
			invoke: func(ctx context.Context, args map[string]any) (any, error) {
				return s.svc.Observe(ctx, args)
			},
		},
		{
			name:        "health",
			description: "Check backend health.",
			invoke: func(ctx context.Context, args map[string]any) (any, error) {
				return s.svc.Health(ctx)
			},
		},
		{
			name:        "stats",
			description: "Fetch memory statistics.",
			invoke: func(ctx context.Context, args map[string]any) (any, error) {
				return s.svc.Stats(ctx)
			},
		},
	}

	out := make(map[string]tool, len(list))
	for _, t := range list {
		out[t.name] = t
	}
	return out
}

func (s *Server) descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(s.tools))
	// Stable order matching the operation table.
	for _, op := range domain.Operations {
		t := s.tools[op.String()]
		out = append(out, Descriptor{Name: t.name, Description: t.description})
	}
	return out
}
