package bcapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bctools/bctools/internal/messages"
)

// decodeEntities decodes an OData response body into a slice. It accepts a
// collection envelope ({"value":[...]}), a bare array, or a single entity,
// so callers never branch on the response shape. An empty body yields an
// empty slice.
func decodeEntities[T any](op string, body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf(messages.APIDecodeResponseFmt, op, err)
		}
		return items, nil
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, fmt.Errorf(messages.APIDecodeResponseFmt, op, err)
		}
		if raw, ok := probe["value"]; ok && isArray(raw) {
			var items []T
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf(messages.APIDecodeResponseFmt, op, err)
			}
			return items, nil
		}
		var item T
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return nil, fmt.Errorf(messages.APIDecodeResponseFmt, op, err)
		}
		return []T{item}, nil
	default:
		prefix := trimmed
		if len(prefix) > 32 {
			prefix = prefix[:32]
		}
		return nil, fmt.Errorf(messages.APIDecodeResponseFmt, op, fmt.Errorf(messages.APIUnexpectedBodyFmt, prefix))
	}
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
