package store

import (
	"context"
	"fmt"
	"sync"

	"rule-orchestrator/rules"
	"rule-orchestrator/runs"
)

// Compile-time check to ensure MemoryRunStore implements RunStore interface
var _ RunStore = (*MemoryRunStore)(nil)

// MemoryRunStore provides an in-memory implementation of the run
// persistence layer. Run records are ephemeral; nothing here survives a
// restart.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]*runs.Run
}

// NewMemoryRunStore creates and initializes a new MemoryRunStore.
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{
		runs: make(map[string]*runs.Run),
	}
}

// Save adds a new run to the store.
// It ensures run ID uniqueness to prevent accidental overwrites or state corruption.
func (s *MemoryRunStore) Save(_ context.Context, run *runs.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run with ID %s already exists", run.ID)
	}

	s.runs[run.ID] = run
	return nil
}

// Get retrieves a run by its ID.
// It returns a copy of the run so external callers cannot unintentionally
// modify the state stored within the map.
func (s *MemoryRunStore) Get(_ context.Context, id string) (*runs.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run with ID %s not found", id)
	}

	copied := *run
	copied.Rules = append([]rules.Encoded(nil), run.Rules...)
	copied.Results = append([]rules.RuleResult(nil), run.Results...)
	return &copied, nil
}

// Update modifies the mutable fields of an existing run.
func (s *MemoryRunStore) Update(_ context.Context, id string, status runs.RunStatus, results []rules.RuleResult, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return fmt.Errorf("run with ID %s not found", id)
	}

	run.Status = status
	run.Results = results
	run.Error = errText

	return nil
}
