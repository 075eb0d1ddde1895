package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rule-orchestrator/errors"
	"rule-orchestrator/logger"
	"rule-orchestrator/rules"
	"rule-orchestrator/rules/settings"
)

// KindWindow identifies the date-window rule.
const KindWindow rules.Kind = "window"

// CodeWindowTooWide is reported when a requested window exceeds the
// configured span.
const CodeWindowTooWide = 1001

// Default maximum window span, overridable per deployment via the
// settings source ("max_span_days").
const defaultMaxSpanDays = 31

// WindowParams are the parameters of the date-window rule.
type WindowParams struct {
	Start time.Time
	End   time.Time
}

var _ rules.RuleParameters = WindowParams{}

func (WindowParams) Kind() rules.Kind {
	return KindWindow
}

// Facts exposes the window to enforcement conditions.
func (p WindowParams) Facts() map[string]any {
	return map[string]any{
		"start":     p.Start.Format(time.RFC3339),
		"end":       p.End.Format(time.RFC3339),
		"span_days": int(p.End.Sub(p.Start).Hours() / 24),
	}
}

var _ rules.Handler = (*WindowHandler)(nil)

// WindowHandler rejects date windows wider than the configured span.
type WindowHandler struct {
	gate   *settings.Gate
	logger *logger.Logger
}

// NewWindowHandler constructs a window handler consulting the given gate.
func NewWindowHandler(gate *settings.Gate, lg *logger.Logger) *WindowHandler {
	return &WindowHandler{gate: gate, logger: lg}
}

func (h *WindowHandler) Kind() rules.Kind {
	return KindWindow
}

type windowPayload struct {
	// Pointer types distinguish missing fields from zero values.
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// Decode is the total constructor for WindowParams: a value it returns is
// always a coherent window.
func (h *WindowHandler) Decode(payload json.RawMessage) (rules.RuleParameters, error) {
	var p windowPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, errors.NewValidationError("invalid window payload", map[string]any{
			"error": err.Error(),
		})
	}
	if p.Start == nil || p.End == nil {
		return nil, errors.NewValidationError("missing 'start' or 'end' field")
	}
	if p.End.Before(*p.Start) {
		return nil, errors.NewValidationError("window end precedes start", map[string]any{
			"start": p.Start.Format(time.RFC3339),
			"end":   p.End.Format(time.RFC3339),
		})
	}
	return WindowParams{Start: *p.Start, End: *p.End}, nil
}

func (h *WindowHandler) Evaluate(ctx context.Context, params rules.RuleParameters) rules.Outcome {
	p, ok := params.(WindowParams)
	if !ok {
		return rules.Failed(errors.NewInternalError(
			fmt.Sprintf("window handler received parameters of kind %q", params.Kind())))
	}

	enforced, setting, err := h.gate.Enforced(ctx, KindWindow, p.Facts())
	if err != nil {
		return rules.Failed(err)
	}
	if !enforced {
		return rules.Empty()
	}

	maxSpanDays := paramInt(setting, "max_span_days", defaultMaxSpanDays)
	spanDays := int(p.End.Sub(p.Start).Hours() / 24)

	if spanDays > maxSpanDays {
		return rules.Produced(rules.Reject(KindWindow,
			fmt.Sprintf("window spans %d days, maximum is %d", spanDays, maxSpanDays),
			CodeWindowTooWide))
	}

	return rules.Produced(rules.Pass(KindWindow,
		fmt.Sprintf("window of %d days accepted", spanDays)))
}

// paramInt reads a numeric tuning value from a setting, tolerating the
// float64 that JSON decoding produces.
func paramInt(setting settings.Setting, key string, defaultValue int) int {
	raw, ok := setting.Params[key]
	if !ok {
		return defaultValue
	}
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}
