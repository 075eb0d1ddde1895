package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"rule-orchestrator/errors"
	"rule-orchestrator/logger"
	"rule-orchestrator/rules"
	"rule-orchestrator/rules/settings"
)

// KindQuota identifies the usage-quota rule.
const KindQuota rules.Kind = "quota"

// CodeQuotaExhausted is reported when usage has reached the limit.
const CodeQuotaExhausted = 1002

// QuotaParams are the parameters of the usage-quota rule.
type QuotaParams struct {
	Used  int
	Limit int
}

var _ rules.RuleParameters = QuotaParams{}

func (QuotaParams) Kind() rules.Kind {
	return KindQuota
}

// Facts exposes usage to enforcement conditions.
func (p QuotaParams) Facts() map[string]any {
	return map[string]any{
		"used":  p.Used,
		"limit": p.Limit,
	}
}

var _ rules.Handler = (*QuotaHandler)(nil)

// QuotaHandler rejects requests whose usage has reached its limit.
type QuotaHandler struct {
	gate   *settings.Gate
	logger *logger.Logger
}

// NewQuotaHandler constructs a quota handler consulting the given gate.
func NewQuotaHandler(gate *settings.Gate, lg *logger.Logger) *QuotaHandler {
	return &QuotaHandler{gate: gate, logger: lg}
}

func (h *QuotaHandler) Kind() rules.Kind {
	return KindQuota
}

type quotaPayload struct {
	// Pointer types distinguish missing fields from zero values.
	Used  *int `json:"used"`
	Limit *int `json:"limit"`
}

// Decode is the total constructor for QuotaParams.
func (h *QuotaHandler) Decode(payload json.RawMessage) (rules.RuleParameters, error) {
	var p quotaPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, errors.NewValidationError("invalid quota payload", map[string]any{
			"error": err.Error(),
		})
	}
	if p.Used == nil || p.Limit == nil {
		return nil, errors.NewValidationError("missing 'used' or 'limit' field")
	}
	if *p.Used < 0 {
		return nil, errors.NewValidationError("usage must not be negative", map[string]any{
			"used": *p.Used,
		})
	}
	if *p.Limit <= 0 {
		return nil, errors.NewValidationError("limit must be positive", map[string]any{
			"limit": *p.Limit,
		})
	}
	return QuotaParams{Used: *p.Used, Limit: *p.Limit}, nil
}

func (h *QuotaHandler) Evaluate(ctx context.Context, params rules.RuleParameters) rules.Outcome {
	p, ok := params.(QuotaParams)
	if !ok {
		return rules.Failed(errors.NewInternalError(
			fmt.Sprintf("quota handler received parameters of kind %q", params.Kind())))
	}

	enforced, _, err := h.gate.Enforced(ctx, KindQuota, p.Facts())
	if err != nil {
		return rules.Failed(err)
	}
	if !enforced {
		return rules.Empty()
	}

	if p.Used >= p.Limit {
		return rules.Produced(rules.Reject(KindQuota,
			fmt.Sprintf("quota exhausted: %d of %d used", p.Used, p.Limit),
			CodeQuotaExhausted))
	}

	return rules.Produced(rules.Pass(KindQuota,
		fmt.Sprintf("quota ok: %d of %d used", p.Used, p.Limit)))
}
