package dispatch

import (
	"context"
	"fmt"
	"time"

	"rule-orchestrator/errors"
	"rule-orchestrator/logger"
	"rule-orchestrator/rules"
	"rule-orchestrator/rules/registry"
)

// Dispatcher converts "I have a rule parameters value" into "here is its
// outcome": it determines the kind, resolves the owning handler from the
// sealed registry and invokes it, returning the handler's outcome
// verbatim.
//
// Resolution failures become Failed(HandlerNotFoundError). That is always
// a configuration error, never user-triggered, and callers must be able
// to tell it apart from a business rejection.
type Dispatcher struct {
	registry *registry.HandlerRegistry
	logger   *logger.Logger

	// handlerTimeout bounds a single handler invocation. Zero disables
	// the deadline.
	handlerTimeout time.Duration
}

// NewDispatcher constructs a dispatcher over a sealed registry.
func NewDispatcher(reg *registry.HandlerRegistry, lg *logger.Logger, handlerTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		registry:       reg,
		logger:         lg,
		handlerTimeout: handlerTimeout,
	}
}

// Dispatch resolves and invokes the one handler owning params' kind.
//
// Encoded parameters that crossed a serialization boundary are first
// normalized into the handler's typed variant via its Decode; a decode
// failure yields Failed(ValidationError). There are no retries: handler
// invocation is synchronous, and any retry policy belongs to the handler
// itself.
func (d *Dispatcher) Dispatch(ctx context.Context, params rules.RuleParameters) rules.Outcome {
	kind := params.Kind()

	handler, err := d.registry.Resolve(kind)
	if err != nil {
		d.logger.Error("handler resolution failed", map[string]any{
			"kind":  kind.String(),
			"error": err.Error(),
		})
		return rules.Failed(err)
	}

	if enc, ok := params.(rules.Encoded); ok {
		decoded, decodeErr := handler.Decode(enc.Payload)
		if decodeErr != nil {
			if dispatchErr, isDispatch := errors.IsDispatchError(decodeErr); isDispatch {
				return rules.Failed(dispatchErr)
			}
			return rules.Failed(errors.NewValidationError("invalid rule payload", map[string]any{
				"kind":  kind.String(),
				"error": decodeErr.Error(),
			}))
		}
		params = decoded
	}

	return d.invoke(ctx, handler, params)
}

// invoke runs the handler under the configured deadline and converts
// panics into Failed outcomes so one misbehaving rule cannot take down
// the whole batch caller.
func (d *Dispatcher) invoke(ctx context.Context, handler rules.Handler, params rules.RuleParameters) (outcome rules.Outcome) {
	if d.handlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.handlerTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked", map[string]any{
				"kind":  params.Kind().String(),
				"panic": fmt.Sprintf("%v", r),
			})
			outcome = rules.Failed(errors.NewInternalError(
				fmt.Sprintf("handler for kind %q panicked: %v", params.Kind(), r)))
		}
	}()

	return handler.Evaluate(ctx, params)
}
