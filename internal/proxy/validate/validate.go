// Package validate sanitizes and bound-checks raw operation arguments
// before anything touches the rate limiter or the network. String and
// enum violations fail hard; out-of-range numeric fields fall back to
// documented defaults.
package validate

import (
	"regexp"
	"strings"

	"github.com/vietddude/memgate/internal/core/domain"
)

const (
	MaxContentLen = 50000
	MaxQueryLen   = 2000
	MaxTagLen     = 100
	MaxTags       = 20

	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 50

	DefaultTokens = 4000
	MinTokens     = 100
	MaxTokens     = 32000

	maxSourceLen = 500
	maxFocusLen  = 500
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

	layers      = map[string]bool{"SESSION": true, "SEMANTIC": true, "CORE": true, "META": true}
	importances = map[string]bool{"LOW": true, "MEDIUM": true, "HIGH": true, "CRITICAL": true}
)

// Sanitize strips non-printable ASCII (keeping newline and tab) and trims
// surrounding whitespace. Idempotent: sanitizing clean input is a no-op.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		if r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Identifier validates a memory identifier. Path-separator and whitespace
// characters never match the pattern.
func Identifier(op domain.OperationKey, field, raw string) (string, error) {
	s := Sanitize(raw)
	if !identifierPattern.MatchString(s) {
		return "", domain.NewValidation(op, "%s must match ^[A-Za-z0-9_-]{1,128}$", field)
	}
	return s, nil
}

// requiredString sanitizes and enforces a per-field maximum length.
func requiredString(op domain.OperationKey, field, raw string, max int) (string, error) {
	s := Sanitize(raw)
	if s == "" {
		return "", domain.NewValidation(op, "%s must not be empty", field)
	}
	if len(s) > max {
		return "", domain.NewValidation(op, "%s exceeds the %d character limit", field, max)
	}
	return s, nil
}

// optionalString is like requiredString but passes empty input through.
func optionalString(op domain.OperationKey, field, raw string, max int) (string, error) {
	s := Sanitize(raw)
	if s == "" {
		return "", nil
	}
	if len(s) > max {
		return "", domain.NewValidation(op, "%s exceeds the %d character limit", field, max)
	}
	return s, nil
}

// layer canonicalizes a layer name. Absent input passes through unset.
func layer(op domain.OperationKey, field, raw string) (string, error) {
	s := strings.ToUpper(Sanitize(raw))
	if s == "" {
		return "", nil
	}
	if !layers[s] {
		return "", domain.NewValidation(op, "%s must be one of SESSION, SEMANTIC, CORE, META", field)
	}
	return s, nil
}

// importance accepts a float in [0,1] or a named level. Absent input
// passes through unset.
func importance(op domain.OperationKey, field string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		if v < 0 || v > 1 {
			return nil, domain.NewValidation(op, "%s must be in [0, 1]", field)
		}
		return v, nil
	case int:
		return importance(op, field, float64(v))
	case string:
		s := strings.ToUpper(Sanitize(v))
		if s == "" {
			return nil, nil
		}
		if !importances[s] {
			return nil, domain.NewValidation(op, "%s must be one of LOW, MEDIUM, HIGH, CRITICAL", field)
		}
		return s, nil
	default:
		return nil, domain.NewValidation(op, "%s must be a number or a named level", field)
	}
}

// tags validates a tag collection. One invalid element fails the whole
// collection.
func tags(op domain.OperationKey, raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if len(raw) > MaxTags {
		return nil, domain.NewValidation(op, "tags exceed the limit of %d", MaxTags)
	}
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		s, err := requiredString(op, "tag", t, MaxTagLen)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// clampInt converts raw to an int within [min, max], falling back to def
// on absent, non-numeric, or out-of-range input. Numeric leniency is
// deliberate; string and enum fields fail hard instead.
func clampInt(raw any, def, min, max int) int {
	var n int
	switch v := raw.(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	default:
		return def
	}
	if n < min || n > max {
		return def
	}
	return n
}

// RememberArgs validates arguments for a remember call.
func RememberArgs(raw map[string]any) (domain.RememberArgs, error) {
	const op = domain.OpRemember
	var out domain.RememberArgs

	content, err := stringField(op, raw, "content")
	if err != nil {
		return out, err
	}
	out.Raw, err = requiredString(op, "content", content, MaxContentLen)
	if err != nil {
		return out, err
	}

	lv, err := stringField(op, raw, "layer")
	if err != nil {
		return out, err
	}
	out.Layer, err = layer(op, "layer", lv)
	if err != nil {
		return out, err
	}

	out.Importance, err = importance(op, "importance", raw["importance"])
	if err != nil {
		return out, err
	}

	ts, err := stringSliceField(op, raw, "tags")
	if err != nil {
		return out, err
	}
	out.Tags, err = tags(op, ts)
	if err != nil {
		return out, err
	}

	src, err := stringField(op, raw, "source")
	if err != nil {
		return out, err
	}
	out.Source, err = optionalString(op, "source", src, maxSourceLen)
	if err != nil {
		return out, err
	}

	out.Metadata, err = objectField(op, raw, "metadata")
	return out, err
}

// RecallArgs validates arguments for a recall query.
func RecallArgs(raw map[string]any) (domain.RecallArgs, error) {
	const op = domain.OpRecall
	var out domain.RecallArgs

	q, err := stringField(op, raw, "query")
	if err != nil {
		return out, err
	}
	out.Query, err = requiredString(op, "query", q, MaxQueryLen)
	if err != nil {
		return out, err
	}

	ls, err := stringSliceField(op, raw, "layers")
	if err != nil {
		return out, err
	}
	for _, l := range ls {
		canon, err := layer(op, "layers", l)
		if err != nil {
			return out, err
		}
		if canon == "" {
			return out, domain.NewValidation(op, "layers must not contain empty entries")
		}
		out.Layers = append(out.Layers, canon)
	}

	out.Limit = clampInt(raw["limit"], DefaultLimit, MinLimit, MaxLimit)

	ts, err := stringSliceField(op, raw, "tags")
	if err != nil {
		return out, err
	}
	out.Tags, err = tags(op, ts)
	if err != nil {
		return out, err
	}

	out.MinImportance, err = importance(op, "minImportance", raw["minImportance"])
	return out, err
}

// SearchArgs validates arguments for a hierarchy search.
func SearchArgs(raw map[string]any) (domain.SearchArgs, error) {
	const op = domain.OpSearch
	var out domain.SearchArgs

	q, err := stringField(op, raw, "query")
	if err != nil {
		return out, err
	}
	out.Query, err = requiredString(op, "query", q, MaxQueryLen)
	if err != nil {
		return out, err
	}

	et, err := stringField(op, raw, "entityType")
	if err != nil {
		return out, err
	}
	if et != "" {
		out.EntityType, err = Identifier(op, "entityType", et)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// ForgetArgs validates arguments for a forget call.
func ForgetArgs(raw map[string]any) (domain.ForgetArgs, error) {
	const op = domain.OpForget
	var out domain.ForgetArgs

	id, err := stringField(op, raw, "id")
	if err != nil {
		return out, err
	}
	out.ID, err = Identifier(op, "id", id)
	return out, err
}

// ContextArgs validates arguments for context-window generation.
func ContextArgs(raw map[string]any) (domain.ContextArgs, error) {
	const op = domain.OpContext
	var out domain.ContextArgs

	out.MaxTokens = clampInt(raw["maxTokens"], DefaultTokens, MinTokens, MaxTokens)

	focus, err := stringField(op, raw, "focus")
	if err != nil {
		return out, err
	}
	out.Focus, err = optionalString(op, "focus", focus, maxFocusLen)
	if err != nil {
		return out, err
	}

	pid, err := stringField(op, raw, "projectId")
	if err != nil {
		return out, err
	}
	if pid != "" {
		out.ProjectID, err = Identifier(op, "projectId", pid)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// ObserveArgs validates arguments for automatic memory extraction.
func ObserveArgs(raw map[string]any) (domain.ObserveArgs, error) {
	const op = domain.OpObserve
	var out domain.ObserveArgs

	content, err := stringField(op, raw, "content")
	if err != nil {
		return out, err
	}
	out.Content, err = requiredString(op, "content", content, MaxContentLen)
	if err != nil {
		return out, err
	}

	src, err := stringField(op, raw, "source")
	if err != nil {
		return out, err
	}
	out.Source, err = optionalString(op, "source", src, maxSourceLen)
	if err != nil {
		return out, err
	}

	out.Metadata, err = objectField(op, raw, "metadata")
	return out, err
}
