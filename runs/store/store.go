package store

import (
	"context"

	"rule-orchestrator/rules"
	"rule-orchestrator/runs"
)

// RunStore defines the contract for validation run persistence
type RunStore interface {
	Save(ctx context.Context, run *runs.Run) error
	Get(ctx context.Context, id string) (*runs.Run, error)
	Update(ctx context.Context, id string, status runs.RunStatus, results []rules.RuleResult, errText string) error
}
