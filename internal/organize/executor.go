package organize

import (
	"context"
	"path/filepath"

	"dirsort/internal/config"
	"dirsort/internal/errors"
	"dirsort/internal/fsx"
	"dirsort/internal/log"
	"dirsort/pkg/types"

	"github.com/spf13/afero"
)

// Executor carries out a Plan one operation at a time. A failed operation
// never stops the run.
type Executor struct {
	Fs     afero.Fs
	Logger *log.Logger
}

// NewExecutor returns an executor writing to fs.
func NewExecutor(fs afero.Fs, logger *log.Logger) *Executor {
	return &Executor{Fs: fs, Logger: logger}
}

// Execute runs every operation of plan in order and returns one result per
// attempted operation. When ctx is cancelled no further operation is started
// and the results gathered so far are returned.
func (e *Executor) Execute(ctx context.Context, plan *types.Plan, mode config.SortMode) []types.OpResult {
	results := make([]types.OpResult, 0, len(plan.Operations))
	for _, op := range plan.Operations {
		if ctx.Err() != nil {
			e.logger().Warnf("Interrupted with %d of %d operations left", len(plan.Operations)-len(results), len(plan.Operations))
			break
		}
		results = append(results, e.run(op, mode))
	}
	return results
}

func (e *Executor) run(op types.Operation, mode config.SortMode) types.OpResult {
	res := types.OpResult{Operation: op}
	logger := e.logger().With(log.F("source", op.Source), log.F("destination", op.Destination))

	exists, r := fsx.Exists(e.Fs, op.Source)
	if !r.OK() {
		return e.fail(logger, res, r.Err)
	}
	if !exists {
		res.Outcome = types.SkippedVanished
		res.Err = errors.NewFileError("file no longer exists", op.Source, errors.FileNotFound, nil)
		logger.Infof("Skipping %s: file no longer exists", op.Source)
		return res
	}

	dir := filepath.Dir(op.Destination)
	if err := e.Fs.MkdirAll(dir, 0755); err != nil {
		return e.fail(logger, res, err)
	}

	var (
		n   int64
		err error
	)
	name := filepath.Base(op.Source)
	if mode == config.Copy {
		n, err = fsx.CopyFile(e.Fs, op.Source, op.Destination)
		if err == nil {
			logger.Infof("Copied %s to %s", name, op.Destination)
		}
	} else {
		n, err = fsx.MoveFile(e.Fs, op.Source, op.Destination)
		if err == nil {
			logger.Infof("Moved %s to %s", name, op.Destination)
		}
	}
	if err != nil {
		return e.fail(logger, res, err)
	}

	res.Outcome = types.Succeeded
	res.Bytes = n
	return res
}

// fail records err on res and removes the destination folder if this
// operation left it empty.
func (e *Executor) fail(logger *log.Logger, res types.OpResult, err error) types.OpResult {
	res.Err = err
	switch fsx.Classify(err) {
	case fsx.PermissionDenied:
		res.Outcome = types.SkippedPermission
		logger.WithError(err).Warnf("Skipping %s: permission problem (%v)", res.Operation.Source, err)
	case fsx.NotFound:
		res.Outcome = types.SkippedVanished
		logger.WithError(err).Warnf("Skipping %s: %v", res.Operation.Source, err)
	default:
		res.Outcome = types.SkippedOtherError
		logger.WithError(err).Warnf("Skipping %s: %v", res.Operation.Source, err)
	}

	if _, rmErr := fsx.RemoveIfEmpty(e.Fs, filepath.Dir(res.Operation.Destination)); rmErr != nil && fsx.Classify(rmErr) != fsx.NotFound {
		logger.Debugf("Could not clean up %s: %v", filepath.Dir(res.Operation.Destination), rmErr)
	}
	return res
}

func (e *Executor) logger() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}
