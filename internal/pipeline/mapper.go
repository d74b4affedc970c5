package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mbleigh/raymond"

	"github.com/relaywire/connector/internal/connectorerr"
	"github.com/relaywire/connector/internal/event"
	"github.com/relaywire/connector/internal/webhook"
)

// MapperProcessor rebuilds an event's body from a JSON template, rendered
// against the current body as context, on every event it handles.
type MapperProcessor struct {
	template interface{}
}

// NewMapperProcessor returns a MapperProcessor for the given outputEvent
// template, already decoded to the generic JSON tree (map[string]any,
// []any, string, float64, bool, nil).
func NewMapperProcessor(outputEvent interface{}) *MapperProcessor {
	return &MapperProcessor{template: outputEvent}
}

// Process replaces evt.Body with the template rendered against the
// current body.
func (m *MapperProcessor) Process(_ context.Context, evt *event.CanonicalEvent) (bool, error) {
	rendered, err := renderNode(m.template, evt.Body)
	if err != nil {
		return false, err
	}
	evt.Body = rendered
	return true, nil
}

// renderNode renders a single template node against ctx, recursing into
// objects and arrays.
func renderNode(node interface{}, ctx interface{}) (interface{}, error) {
	switch v := node.(type) {
	case string:
		return renderString(v, ctx)
	case map[string]interface{}:
		if expr, value, ok := castForm(v); ok {
			return renderCast(expr, value, ctx)
		}
		out := make(map[string]interface{}, len(v))
		for k, child := range v {
			rendered, err := renderNode(child, ctx)
			if err != nil {
				return nil, err
			}
			out[k] = rendered
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, child := range v {
			rendered, err := renderNode(child, ctx)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil
	default:
		// number, bool, nil copy literally.
		return v, nil
	}
}

// castForm reports whether node is exactly {"value": ..., "castTo": "..."}.
func castForm(node map[string]interface{}) (castTo string, value interface{}, ok bool) {
	if len(node) != 2 {
		return "", nil, false
	}
	value, hasValue := node["value"]
	rawCastTo, hasCastTo := node["castTo"]
	if !hasValue || !hasCastTo {
		return "", nil, false
	}
	s, ok := rawCastTo.(string)
	if !ok {
		return "", nil, false
	}
	return s, value, true
}

func renderCast(castTo string, valueNode interface{}, ctx interface{}) (interface{}, error) {
	rendered, err := renderNode(valueNode, ctx)
	if err != nil {
		return nil, err
	}
	switch castTo {
	case "string":
		return castToString(rendered)
	case "number":
		return castToNumber(rendered)
	default:
		return nil, fmt.Errorf("%w: unknown castTo %q", connectorerr.ErrProcessing, castTo)
	}
}

func castToString(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return formatNumber(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("%w: cannot cast %T to string", connectorerr.ErrProcessing, v)
	}
}

func castToNumber(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return t, nil
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, nil
		}
		return nil, fmt.Errorf("%w: cannot cast %q to number", connectorerr.ErrProcessing, t)
	case bool:
		if t {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return nil, fmt.Errorf("%w: cannot cast %T to number", connectorerr.ErrProcessing, v)
	}
}

func formatNumber(f float64) string {
	if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) &&
		f >= math.MinInt64 && f <= math.MaxInt64 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// renderString implements the per-string rendering rules: a bare single
// mustache expression with no pipe returns the raw path value (preserving
// its JSON type); everything else goes through Handlebars rendering, with
// a best-effort re-parse of object/array-shaped output.
func renderString(s string, ctx interface{}) (interface{}, error) {
	trimmed := strings.TrimSpace(s)

	if expr, ok := singleExpression(trimmed); ok {
		if expr == "@this" {
			return ctx, nil
		}
		if value, err := webhook.Extract(ctx, expr); err == nil {
			return value, nil
		}
		// Falls through to Handlebars rendering below.
	}

	rendered, err := raymond.Render(s, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: template render: %v", connectorerr.ErrProcessing, err)
	}

	candidate := strings.TrimSpace(rendered)
	looksLikeObject := strings.HasPrefix(candidate, "{") && strings.HasSuffix(candidate, "}")
	looksLikeArray := strings.HasPrefix(candidate, "[") && strings.HasSuffix(candidate, "]")
	if looksLikeObject || looksLikeArray {
		var parsed interface{}
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return parsed, nil
		}
	}

	return rendered, nil
}

// singleExpression reports whether s is exactly one mustache expression
// with no pipe filter, returning the trimmed inner expression.
func singleExpression(s string) (string, bool) {
	if !strings.HasPrefix(s, "{{") || !strings.HasSuffix(s, "}}") {
		return "", false
	}
	inner := strings.TrimSpace(s[2 : len(s)-2])
	if inner == "" {
		return "", false
	}
	if strings.Contains(inner, "{{") || strings.Contains(inner, "}}") {
		return "", false
	}
	if strings.Contains(inner, "|") {
		return "", false
	}
	return inner, true
}
