package rules

// FailureReason classifies why a rule result carries Success == false.
// A business-rule rejection is a deliberate domain veto and is not an
// error; anything else is an unexpected condition inside the handler.
type FailureReason string

const (
	// ReasonBusinessRule marks a deliberate domain-level rejection.
	ReasonBusinessRule FailureReason = "business_rule"
	// ReasonInternal marks an unexpected failure inside a handler.
	ReasonInternal FailureReason = "internal"
)

// RuleResult is the outcome of running one rule. It is created by a
// handler and never mutated afterwards.
type RuleResult struct {
	Rule    Kind          `json:"rule"`
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Code    int           `json:"code"`
	Reason  FailureReason `json:"reason,omitempty"`
}

// IsBusinessRejection reports whether this result is a deliberate
// domain veto, the designated early-exit condition for batch runs.
func (r RuleResult) IsBusinessRejection() bool {
	return !r.Success && r.Reason == ReasonBusinessRule
}

// Pass builds a successful result for the given rule.
func Pass(rule Kind, message string) RuleResult {
	return RuleResult{
		Rule:    rule,
		Success: true,
		Message: message,
	}
}

// Reject builds a business-rule rejection for the given rule.
func Reject(rule Kind, message string, code int) RuleResult {
	return RuleResult{
		Rule:    rule,
		Success: false,
		Message: message,
		Code:    code,
		Reason:  ReasonBusinessRule,
	}
}

type outcomeKind int

const (
	outcomeEmpty outcomeKind = iota
	outcomeProduced
	outcomeFailed
)

// Outcome is the tri-state result of dispatching one rule:
//
//   - Produced(result): the rule ran and has something to report
//   - Empty: the rule ran and opted out (treated as a pass)
//   - Failed(err): the dispatch itself failed (registry or handler
//     infrastructure), distinct from a business rejection
//
// The zero value is Empty. Consumers inspect outcomes through the
// accessors instead of downcasting, so there is no cast-failure class.
type Outcome struct {
	kind   outcomeKind
	result RuleResult
	err    error
}

// Produced wraps a handler result into an outcome.
func Produced(result RuleResult) Outcome {
	return Outcome{kind: outcomeProduced, result: result}
}

// Empty reports that the rule ran and had nothing to say.
func Empty() Outcome {
	return Outcome{kind: outcomeEmpty}
}

// Failed reports an infrastructure failure: no handler, decode error,
// handler panic. Never used for business rejections.
func Failed(err error) Outcome {
	return Outcome{kind: outcomeFailed, err: err}
}

// Result returns the produced result, if any.
func (o Outcome) Result() (RuleResult, bool) {
	return o.result, o.kind == outcomeProduced
}

// Err returns the failure, or nil for Produced and Empty outcomes.
func (o Outcome) Err() error {
	if o.kind == outcomeFailed {
		return o.err
	}
	return nil
}

func (o Outcome) IsEmpty() bool {
	return o.kind == outcomeEmpty
}

func (o Outcome) IsFailed() bool {
	return o.kind == outcomeFailed
}
