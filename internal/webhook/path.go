package webhook

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/relaywire/connector/internal/connectorerr"
	"github.com/relaywire/connector/internal/event"
)

// Extract splits path on "." and descends through body, looking up object
// keys and decimal-integer array indices at each segment. Any missing
// segment reports connectorerr.ErrPrimaryKeyPathNotFound. It operates on
// the generic interface{} tree produced by encoding/json (map[string]any,
// []any, string, float64, bool, nil) and is shared by primary-key
// extraction and the mapper's single-expression resolution.
func Extract(body interface{}, path string) (interface{}, error) {
	current := body
	for _, segment := range strings.Split(path, ".") {
		next, ok := descend(current, segment)
		if !ok {
			return nil, connectorerr.ErrPrimaryKeyPathNotFound
		}
		current = next
	}
	return current, nil
}

func descend(current interface{}, segment string) (interface{}, bool) {
	switch v := current.(type) {
	case map[string]interface{}:
		val, ok := v[segment]
		return val, ok
	case []interface{}:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	default:
		return nil, false
	}
}

// PrimaryKeyExtractor is a closure capturing a dotted path, produced by
// PrimaryKeyByPath. Sources compose one per event type.
type PrimaryKeyExtractor func(body interface{}) ([]event.PrimaryKeyField, error)

// PrimaryKeyByPath returns a PrimaryKeyExtractor that resolves path against
// the body, stringifies the result per the canonical encoding rules, and
// wraps it in a single-entry PrimaryKeyField list keyed by path.
func PrimaryKeyByPath(path string) PrimaryKeyExtractor {
	return func(body interface{}) ([]event.PrimaryKeyField, error) {
		value, err := Extract(body, path)
		if err != nil {
			return nil, err
		}
		return []event.PrimaryKeyField{{Key: path, Value: Stringify(value)}}, nil
	}
}

// Stringify renders a JSON value as text for primary-key purposes: strings
// are kept as-is, numbers/booleans go through canonical JSON encoding, and
// anything else (objects, arrays, null) is serialized to compact JSON.
func Stringify(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	b, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(b)
}
