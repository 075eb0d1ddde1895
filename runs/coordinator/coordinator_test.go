package coordinator_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rule-orchestrator/errors"
	"rule-orchestrator/logger"
	"rule-orchestrator/rules"
	"rule-orchestrator/runs"
	"rule-orchestrator/runs/coordinator"
	"rule-orchestrator/runs/store"
)

// fakeRunner simulates different runner behaviors for testing
type fakeRunner struct {
	shouldFail bool
	errorMsg   string
	finalState runs.RunStatus
}

func (r *fakeRunner) Run(_ context.Context, run *runs.Run) error {
	if r.shouldFail {
		return errors.New(r.errorMsg)
	}
	run.Status = r.finalState
	return nil
}

// fakeStore simulates store failures for testing error conditions
type fakeStore struct {
	store.RunStore
	shouldFailSave bool
	shouldFailGet  bool
}

func (s *fakeStore) Save(ctx context.Context, run *runs.Run) error {
	if s.shouldFailSave {
		return errors.New("store save failed")
	}
	return s.RunStore.Save(ctx, run)
}

func (s *fakeStore) Get(ctx context.Context, id string) (*runs.Run, error) {
	if s.shouldFailGet {
		return nil, errors.New("store get failed")
	}
	return s.RunStore.Get(ctx, id)
}

func testSpecs() []rules.Encoded {
	return []rules.Encoded{
		{RuleKind: "window", Payload: json.RawMessage(`{"start":"2026-08-01T00:00:00Z","end":"2026-08-10T00:00:00Z"}`)},
	}
}

func TestCoordinator_SubmitRun(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		runnerSetup    func() *fakeRunner
		storeSetup     func() store.RunStore
		expectErr      bool
		errContains    string
		expectedStatus runs.RunStatus
	}{
		{
			name: "successful run submission",
			runnerSetup: func() *fakeRunner {
				return &fakeRunner{finalState: runs.StatusDone}
			},
			storeSetup: func() store.RunStore {
				return store.NewMemoryRunStore()
			},
			expectedStatus: runs.StatusDone,
		},
		{
			name: "rejected run is not an error",
			runnerSetup: func() *fakeRunner {
				return &fakeRunner{finalState: runs.StatusRejected}
			},
			storeSetup: func() store.RunStore {
				return store.NewMemoryRunStore()
			},
			expectedStatus: runs.StatusRejected,
		},
		{
			name: "runner execution failure",
			runnerSetup: func() *fakeRunner {
				return &fakeRunner{shouldFail: true, errorMsg: "runner execution failed"}
			},
			storeSetup: func() store.RunStore {
				return store.NewMemoryRunStore()
			},
			expectErr:   true,
			errContains: "runner execution failed",
		},
		{
			name: "store save failure",
			runnerSetup: func() *fakeRunner {
				return &fakeRunner{finalState: runs.StatusDone}
			},
			storeSetup: func() store.RunStore {
				return &fakeStore{
					RunStore:       store.NewMemoryRunStore(),
					shouldFailSave: true,
				}
			},
			expectErr:   true,
			errContains: "failed to save run",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			testLogger := logger.New("DEBUG", &buf)

			runner := tc.runnerSetup()
			runStore := tc.storeSetup()
			coord := coordinator.NewCoordinator(runStore, runner, testLogger)

			run, err := coord.SubmitRun(context.Background(), testSpecs())

			if tc.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, run)

			assert.NotEmpty(t, run.ID)
			assert.Equal(t, testSpecs(), run.Rules)
			assert.Equal(t, tc.expectedStatus, run.Status)
		})
	}
}

func TestCoordinator_GetRun(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		runID       string
		storeSetup  func() store.RunStore
		expectErr   bool
		errContains string
	}{
		{
			name:  "successful get existing run",
			runID: "existing-run",
			storeSetup: func() store.RunStore {
				runStore := store.NewMemoryRunStore()
				run := &runs.Run{
					ID:     "existing-run",
					Rules:  testSpecs(),
					Status: runs.StatusDone,
					Results: []rules.RuleResult{
						rules.Pass("window", "ok"),
					},
				}
				require.NoError(t, runStore.Save(context.Background(), run))
				return runStore
			},
		},
		{
			name:  "get non-existing run",
			runID: "non-existing",
			storeSetup: func() store.RunStore {
				return store.NewMemoryRunStore()
			},
			expectErr:   true,
			errContains: "not found",
		},
		{
			name:  "store get failure is surfaced as not found",
			runID: "store-fail-run",
			storeSetup: func() store.RunStore {
				return &fakeStore{
					RunStore:      store.NewMemoryRunStore(),
					shouldFailGet: true,
				}
			},
			expectErr:   true,
			errContains: "not found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			testLogger := logger.New("DEBUG", &buf)

			coord := coordinator.NewCoordinator(tc.storeSetup(), &fakeRunner{}, testLogger)

			run, err := coord.GetRun(context.Background(), tc.runID)

			if tc.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				dispatchErr, ok := apperrors.IsDispatchError(err)
				require.True(t, ok)
				assert.Equal(t, apperrors.NotFoundError, dispatchErr.Type)
				assert.Nil(t, run)
			} else {
				require.NoError(t, err)
				require.NotNil(t, run)
				assert.Equal(t, tc.runID, run.ID)
				assert.Equal(t, runs.StatusDone, run.Status)
				require.Len(t, run.Results, 1)
			}
		})
	}
}

func TestCoordinator_GetRunStatus(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	testLogger := logger.New("DEBUG", &buf)

	runStore := store.NewMemoryRunStore()
	require.NoError(t, runStore.Save(context.Background(), &runs.Run{
		ID:     "status-run",
		Status: runs.StatusRejected,
	}))
	coord := coordinator.NewCoordinator(runStore, &fakeRunner{}, testLogger)

	status, err := coord.GetRunStatus(context.Background(), "status-run")
	require.NoError(t, err)
	assert.Equal(t, runs.StatusRejected, status)

	status, err = coord.GetRunStatus(context.Background(), "missing-run")
	require.Error(t, err)
	assert.Empty(t, status)
}

func TestCoordinator_LoggingIntegration(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	testLogger := logger.New("DEBUG", &buf)

	coord := coordinator.NewCoordinator(store.NewMemoryRunStore(), &fakeRunner{finalState: runs.StatusDone}, testLogger)

	run, err := coord.SubmitRun(context.Background(), testSpecs())
	require.NoError(t, err)

	logOutput := buf.String()
	assert.Contains(t, logOutput, "run submitted")
	assert.Contains(t, logOutput, run.ID)
}
