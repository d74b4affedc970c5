package pipeline

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/relaywire/connector/internal/connectorerr"
	"github.com/relaywire/connector/internal/event"
)

// FilterProcessor evaluates a CEL expression against each event's body and
// drops the event unless the expression evaluates to true. The expression
// is parsed (not checked) once at construction, since the set of
// top-level body fields available as variables differs per event and
// cannot be declared statically.
type FilterProcessor struct {
	program cel.Program
	source  string
}

// NewFilterProcessor compiles expr into a FilterProcessor. Compilation
// uses Parse rather than Compile/Check: CEL's static checker requires
// variable declarations up front, but the variables available here (the
// event body's top-level keys) are only known per event at evaluation
// time.
func NewFilterProcessor(expr string) (*FilterProcessor, error) {
	env, err := cel.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("%w: cel env: %v", connectorerr.ErrProcessing, err)
	}

	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("%w: cel parse %q: %v", connectorerr.ErrProcessing, expr, iss.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: cel program %q: %v", connectorerr.ErrProcessing, expr, err)
	}

	return &FilterProcessor{program: prg, source: expr}, nil
}

// Process evaluates the compiled expression against a context built from
// the event's type, its full body, and (when the body is an object) one
// variable per top-level field.
func (f *FilterProcessor) Process(_ context.Context, evt *event.CanonicalEvent) (bool, error) {
	vars := map[string]interface{}{
		"eventType": evt.EventType,
		"body":      evt.Body,
	}
	if obj, ok := evt.Body.(map[string]interface{}); ok {
		for k, v := range obj {
			vars[k] = v
		}
	}

	out, _, err := f.program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("%w: cel eval %q: %v", connectorerr.ErrProcessing, f.source, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: cel expression %q did not evaluate to a bool", connectorerr.ErrProcessing, f.source)
	}

	return result, nil
}
