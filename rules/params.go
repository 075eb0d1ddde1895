package rules

import "encoding/json"

// Kind discriminates between the concrete variants of rule parameters.
// Every variant declares exactly one Kind, and every Kind maps to exactly
// one registered handler.
type Kind string

func (k Kind) String() string {
	return string(k)
}

// RuleParameters is the value object passed to exactly one handler.
//
// Concrete variants are plain structs constructed explicitly by their
// callers; nothing in this package synthesizes parameter objects.
type RuleParameters interface {
	Kind() Kind
}

// Encoded carries rule parameters across a serialization boundary
// (HTTP request, queue) before the concrete variant is known.
//
// The dispatcher normalizes an Encoded value into the typed variant via
// the owning handler's Decode, so handlers never see raw payloads from
// their Evaluate method.
type Encoded struct {
	RuleKind Kind            `json:"kind"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

var _ RuleParameters = Encoded{}

func (e Encoded) Kind() Kind {
	return e.RuleKind
}
