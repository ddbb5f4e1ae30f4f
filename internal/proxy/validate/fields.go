package validate

import "github.com/vietddude/memgate/internal/core/domain"

// Raw JSON arguments arrive as map[string]any. These helpers pull typed
// fields out, failing hard on type mismatches.

func stringField(op domain.OperationKey, raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", domain.NewValidation(op, "%s must be a string", key)
	}
	return s, nil
}

func stringSliceField(op domain.OperationKey, raw map[string]any, key string) ([]string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch vv := v.(type) {
	case []string:
		return vv, nil
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			s, ok := e.(string)
			if !ok {
				return nil, domain.NewValidation(op, "%s must be a list of strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, domain.NewValidation(op, "%s must be a list of strings", key)
	}
}

func objectField(op domain.OperationKey, raw map[string]any, key string) (map[string]any, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, domain.NewValidation(op, "%s must be an object", key)
	}
	return m, nil
}
