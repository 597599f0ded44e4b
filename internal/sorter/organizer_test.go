package sorter

import (
	"context"
	"path/filepath"
	"testing"

	"dirsort/internal/config"
	"dirsort/internal/errors"
	"dirsort/internal/log"
	"dirsort/internal/organize"
	"dirsort/pkg/types"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingOrganizer returns a canned plan and records what the pipeline
// asks of it.
type recordingOrganizer struct {
	plan    *types.Plan
	planErr error

	target   string
	executed []types.Operation
	mode     config.SortMode
	reaped   []string
}

func (r *recordingOrganizer) Plan(cfg *config.Config) (*types.Plan, error) {
	r.target = cfg.TargetDir()
	return r.plan, r.planErr
}

func (r *recordingOrganizer) Execute(ctx context.Context, plan *types.Plan, mode config.SortMode) []types.OpResult {
	r.mode = mode
	results := make([]types.OpResult, 0, len(plan.Operations))
	for _, op := range plan.Operations {
		r.executed = append(r.executed, op)
		results = append(results, types.OpResult{Operation: op, Outcome: types.Succeeded, Bytes: 1})
	}
	return results
}

func (r *recordingOrganizer) Reap(root string) organize.ReapResult {
	r.reaped = append(r.reaped, root)
	return organize.ReapResult{Removed: []string{filepath.Join(root, "gone")}}
}

func useOrganizer(t *testing.T, org *recordingOrganizer) {
	t.Helper()
	organize.SetOrganizerFactory(func(afero.Fs, *log.Logger) organize.Organizer { return org })
	t.Cleanup(organize.ResetOrganizerFactory)
}

func cannedPlan(names ...string) *types.Plan {
	plan := types.NewPlan()
	for _, name := range names {
		plan.Add(types.Operation{Source: "/t/" + name, Destination: "/s/.txt_Files/" + name}, "/s/.txt_Files")
	}
	return plan
}

func TestRunExecutesPlanInOrder(t *testing.T) {
	f := newFixture(t, func(r *config.Record) { r.DeleteEmptyDirs = true })
	org := &recordingOrganizer{plan: cannedPlan("c.txt", "a.txt", "b.txt")}
	useOrganizer(t, org)

	res, err := Run(context.Background(), f.options())
	require.NoError(t, err)
	assert.Equal(t, Executed, res.Stage)
	assert.Equal(t, org.plan.Operations, org.executed)
	assert.Equal(t, config.Move, org.mode)
	assert.Equal(t, []string{org.target}, org.reaped)
	assert.Equal(t, 1, res.Summary.Reaped)
	assert.Equal(t, 3, res.Summary.Succeeded())
	f.assertUnlocked(t)
}

func TestRunSkipsReap(t *testing.T) {
	t.Run("copy mode", func(t *testing.T) {
		f := newFixture(t, func(r *config.Record) {
			r.SortMode = "Copy"
			r.DeleteEmptyDirs = true
		})
		org := &recordingOrganizer{plan: cannedPlan("a.txt")}
		useOrganizer(t, org)

		res, err := Run(context.Background(), f.options())
		require.NoError(t, err)
		assert.Equal(t, config.Copy, org.mode)
		assert.Len(t, org.executed, 1)
		assert.Empty(t, org.reaped)
		assert.Equal(t, 0, res.Summary.Reaped)
	})

	t.Run("delete empty dirs off", func(t *testing.T) {
		f := newFixture(t, nil)
		org := &recordingOrganizer{plan: cannedPlan("a.txt")}
		useOrganizer(t, org)

		_, err := Run(context.Background(), f.options())
		require.NoError(t, err)
		assert.Empty(t, org.reaped)
	})

	t.Run("cancelled", func(t *testing.T) {
		f := newFixture(t, func(r *config.Record) { r.DeleteEmptyDirs = true })
		org := &recordingOrganizer{plan: cannedPlan("a.txt")}
		useOrganizer(t, org)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Run(ctx, f.options())
		require.NoError(t, err)
		assert.Empty(t, org.reaped)
		f.assertUnlocked(t)
	})
}

func TestRunReleasesLockWhenPlanFails(t *testing.T) {
	f := newFixture(t, nil)
	planErr := errors.NewFileError("cannot scan target directory", f.target, errors.FileAccessDenied, nil)
	org := &recordingOrganizer{planErr: planErr}
	useOrganizer(t, org)

	res, err := Run(context.Background(), f.options())
	require.Error(t, err)
	assert.True(t, errors.IsFileAccessDenied(err))
	require.NotNil(t, res)
	assert.Nil(t, res.Summary)
	assert.Empty(t, org.executed)
	f.assertUnlocked(t)
}
