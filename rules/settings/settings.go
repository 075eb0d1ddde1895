package settings

import (
	"context"

	"rule-orchestrator/rules"
)

// Setting carries the per-rule enablement data consulted by handlers.
type Setting struct {
	// Enabled switches the rule off entirely when false; a disabled rule
	// reports an Empty outcome.
	Enabled bool `json:"enabled"`

	// Condition is an optional CEL expression deciding whether the rule
	// is enforced for a specific parameter context. An empty condition
	// means "always enforced".
	Condition string `json:"condition,omitempty"`

	// Params holds rule-specific tuning values (limits, spans).
	Params map[string]any `json:"params,omitempty"`
}

// Source supplies per-rule settings. Implementations must be safe for
// concurrent reads; rules with no stored setting default to enabled.
type Source interface {
	Setting(ctx context.Context, kind rules.Kind) (Setting, error)
}

// defaultSetting is what a rule gets when nothing is stored for it.
func defaultSetting() Setting {
	return Setting{Enabled: true}
}

// Gate answers the one question handlers ask: "is this rule enforced for
// this context?". It combines a settings source with the condition
// evaluator so handlers don't deal with CEL directly.
type Gate struct {
	source     Source
	conditions *ConditionEvaluator
}

// NewGate constructs a gate over the given source and evaluator.
func NewGate(source Source, conditions *ConditionEvaluator) *Gate {
	return &Gate{
		source:     source,
		conditions: conditions,
	}
}

// Enforced reports whether the rule identified by kind applies to the
// context described by facts. A disabled rule or a false condition means
// not enforced; condition evaluation errors propagate so a broken
// expression is visible instead of silently skipping the rule.
func (g *Gate) Enforced(ctx context.Context, kind rules.Kind, facts map[string]any) (bool, Setting, error) {
	setting, err := g.source.Setting(ctx, kind)
	if err != nil {
		return false, Setting{}, err
	}

	if !setting.Enabled {
		return false, setting, nil
	}

	if setting.Condition == "" {
		return true, setting, nil
	}

	enforced, err := g.conditions.Evaluate(setting.Condition, map[string]any{
		"kind":   kind.String(),
		"params": facts,
	})
	if err != nil {
		return false, Setting{}, err
	}

	return enforced, setting, nil
}
