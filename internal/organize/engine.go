package organize

import (
	"context"

	"dirsort/internal/config"
	"dirsort/internal/log"
	"dirsort/pkg/types"

	"github.com/spf13/afero"
)

// Engine bundles the planner, executor and reaper that share one filesystem.
type Engine struct {
	planner  *Planner
	executor *Executor
	reaper   *Reaper
}

// New creates an engine on fs. A nil logger means the package default.
func New(fs afero.Fs, logger *log.Logger) *Engine {
	return &Engine{
		planner:  NewPlanner(fs, logger),
		executor: NewExecutor(fs, logger),
		reaper:   NewReaper(fs, logger),
	}
}

// Plan scans the target tree.
func (e *Engine) Plan(cfg *config.Config) (*types.Plan, error) {
	return e.planner.Plan(cfg)
}

// Execute runs the plan.
func (e *Engine) Execute(ctx context.Context, plan *types.Plan, mode config.SortMode) []types.OpResult {
	return e.executor.Execute(ctx, plan, mode)
}

func (e *Engine) Reap(root string) ReapResult {
	return e.reaper.Reap(root)
}
