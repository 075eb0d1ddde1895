package settings

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"rule-orchestrator/rules"
)

// ConditionEvaluator compiles and evaluates CEL enforcement conditions.
// Compiled programs are cached per expression, so steady-state evaluation
// is a map lookup plus a program run. Safe for concurrent use.
type ConditionEvaluator struct {
	env      *cel.Env
	mu       sync.RWMutex
	programs map[string]cel.Program // expression -> compiled program
}

// NewConditionEvaluator creates an evaluator with the standard condition
// environment: `kind` is the rule kind string and `params` is a dynamic
// map of facts derived from the rule parameters.
func NewConditionEvaluator() (*ConditionEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("kind", cel.StringType),
		cel.Variable("params", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &ConditionEvaluator{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Compile validates and caches a condition expression. The cost limit
// prevents runaway expressions from stalling a dispatch.
func (e *ConditionEvaluator) Compile(expression string) error {
	e.mu.RLock()
	_, cached := e.programs[expression]
	e.mu.RUnlock()
	if cached {
		return nil
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile error: %w", issues.Err())
	}

	prog, err := e.env.Program(ast, cel.CostLimit(1000000))
	if err != nil {
		return fmt.Errorf("program creation error: %w", err)
	}

	e.mu.Lock()
	e.programs[expression] = prog
	e.mu.Unlock()

	return nil
}

// Evaluate runs a condition against the given facts, compiling it first
// if needed. Non-boolean results are treated as false.
func (e *ConditionEvaluator) Evaluate(expression string, facts map[string]any) (bool, error) {
	if err := e.Compile(expression); err != nil {
		return false, err
	}

	e.mu.RLock()
	prog := e.programs[expression]
	e.mu.RUnlock()

	out, _, err := prog.Eval(facts)
	if err != nil {
		return false, fmt.Errorf("condition evaluation failed: %w", err)
	}

	boolVal, ok := out.Value().(bool)
	if !ok {
		return false, nil
	}
	return boolVal, nil
}

// FactProvider is implemented by parameter variants that expose their
// fields to enforcement conditions.
type FactProvider interface {
	Facts() map[string]any
}

// FactsOf extracts condition facts from a parameter value, or an empty
// map for variants that expose none.
func FactsOf(params rules.RuleParameters) map[string]any {
	if fp, ok := params.(FactProvider); ok {
		return fp.Facts()
	}
	return map[string]any{}
}
