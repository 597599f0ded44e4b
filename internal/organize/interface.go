package organize

import (
	"context"

	"dirsort/internal/config"
	"dirsort/pkg/types"
)

// Organizer defines the interface for file organization operations
// This allows for dependency injection in tests and other parts of the application
type Organizer interface {
	// Plan scans the target tree without changing anything
	Plan(cfg *config.Config) (*types.Plan, error)

	// Execute carries out a plan, tolerating per-file failures
	Execute(ctx context.Context, plan *types.Plan, mode config.SortMode) []types.OpResult

	// Reap removes empty directories below root
	Reap(root string) ReapResult
}

// Ensure Engine implements the Organizer interface
var _ Organizer = (*Engine)(nil)
