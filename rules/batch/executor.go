package batch

import (
	"context"

	"rule-orchestrator/logger"
	"rule-orchestrator/rules"
	"rule-orchestrator/rules/dispatch"
)

// Executor runs an ordered sequence of rule parameters through the
// dispatcher with short-circuit semantics. It is a fold over the input
// with two distinct early-exit conditions that are reported differently:
//
//   - a Failed outcome (no handler, decode error, panic) aborts the run
//     and surfaces the error to the caller
//   - a business-rule rejection appends its result and stops, with no
//     error: a deliberate veto is data, not control flow
//
// Evaluation is strictly sequential in input order; once an early-exit
// condition is met, later parameters are never dispatched.
type Executor struct {
	dispatcher *dispatch.Dispatcher
	logger     *logger.Logger
}

// NewExecutor constructs a batch executor over the given dispatcher.
func NewExecutor(dispatcher *dispatch.Dispatcher, lg *logger.Logger) *Executor {
	return &Executor{
		dispatcher: dispatcher,
		logger:     lg,
	}
}

// RunAll dispatches each element of batch in order and collects produced
// results. The returned slice preserves input order up to and including
// the stop point. Empty outcomes are passes with nothing to report and
// contribute no result.
//
// Context cancellation between elements aborts the run with ctx.Err();
// an in-flight handler is bounded by the dispatcher's deadline.
func (e *Executor) RunAll(ctx context.Context, batch []rules.RuleParameters) ([]rules.RuleResult, error) {
	results := make([]rules.RuleResult, 0, len(batch))

	for i, params := range batch {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		outcome := e.dispatcher.Dispatch(ctx, params)

		if err := outcome.Err(); err != nil {
			e.logger.Error("batch aborted", map[string]any{
				"kind":      params.Kind().String(),
				"position":  i,
				"evaluated": len(results),
				"error":     err.Error(),
			})
			return results, err
		}

		result, produced := outcome.Result()
		if !produced {
			// Empty: the rule opted out for this context.
			continue
		}

		results = append(results, result)

		if result.IsBusinessRejection() {
			e.logger.Info("batch stopped on business rejection", map[string]any{
				"kind":     result.Rule.String(),
				"position": i,
				"message":  result.Message,
			})
			return results, nil
		}
	}

	return results, nil
}
