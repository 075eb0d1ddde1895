package rules

import (
	"context"
	"encoding/json"
)

// Handler owns the evaluation of exactly one kind of rule parameters.
//
// This allows rule-specific logic (e.g. window, quota) to be encapsulated
// in modular handlers, decoupled from the dispatcher and transport layer.
// Handlers must be safe for concurrent use once the registry is sealed.
type Handler interface {
	// Kind returns the parameter kind this handler owns.
	Kind() Kind

	// Decode constructs the handler's typed parameter variant from a raw
	// payload that crossed a serialization boundary.
	Decode(payload json.RawMessage) (RuleParameters, error)

	// Evaluate runs the rule against already-typed parameters.
	// Business rejections are returned as Produced results, never as
	// Failed outcomes.
	Evaluate(ctx context.Context, params RuleParameters) Outcome
}
