// Package sorter runs one complete sort: load and validate the configuration,
// take the run lock, plan, optionally confirm, execute, clean up empty
// directories and release the lock on every way out.
package sorter

import (
	"context"
	"fmt"
	"io"

	"dirsort/internal/config"
	"dirsort/internal/lock"
	"dirsort/internal/log"
	"dirsort/internal/organize"
	"dirsort/internal/report"
	"dirsort/internal/watch"
	"dirsort/pkg/types"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Stage tells how far a run got.
type Stage int

const (
	// Frozen means the run held the lock and did nothing else.
	Frozen Stage = iota
	// NothingToDo means the plan was empty.
	NothingToDo
	// Declined means a dry run was shown and not confirmed.
	Declined
	// Executed means the plan was carried out.
	Executed
)

func (s Stage) String() string {
	switch s {
	case Frozen:
		return "frozen"
	case NothingToDo:
		return "nothing to do"
	case Declined:
		return "declined"
	default:
		return "executed"
	}
}

// HoldFunc parks a frozen run until ctx ends or the sentinel goes away.
type HoldFunc func(ctx context.Context, sentinel string) (watch.HoldReason, error)

// Options configures Run.
type Options struct {
	Store    *config.Store
	Sentinel string
	Fs       afero.Fs
	Logger   *log.Logger
	Out      io.Writer

	DryRun bool
	Freeze bool
	Quiet  bool

	// Confirm is asked after a non-empty dry-run plan was shown. Nil declines.
	Confirm func(*types.Plan) bool
	// Hold replaces the fsnotify sentinel watcher, mainly in tests.
	Hold HoldFunc
}

// Result describes a finished run.
type Result struct {
	RunID   string
	Stage   Stage
	Plan    *types.Plan
	Summary *types.Summary
}

// Run performs one sort. Errors returned are fatal preconditions: a missing or
// invalid config, or a lock held by another run. Per-file problems never make
// Run fail; they are reported in the summary.
func Run(ctx context.Context, opts Options) (res *Result, err error) {
	runID := uuid.NewString()
	ctx = log.ContextWithRunID(ctx, runID)
	logger := opts.logger().WithContext(ctx)
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	rec, err := opts.Store.Load()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Validate(fs, rec)
	if err != nil {
		return nil, err
	}

	sentinel := opts.Sentinel
	if sentinel == "" {
		sentinel = config.SentinelPath(opts.Store.Path())
	}
	mgr := lock.NewManager(sentinel, opts.Store, fs, logger)
	handle, err := mgr.Acquire(rec.LockState())
	if err != nil {
		return nil, err
	}
	defer func() {
		if relErr := mgr.Release(handle); relErr != nil && err == nil {
			err = relErr
		}
	}()

	res = &Result{RunID: runID}
	logger.With(log.F("target", cfg.TargetDir()), log.F("sorted", cfg.SortedDir()), log.F("mode", cfg.SortMode().String())).
		Debug("Run started")

	if opts.Freeze {
		res.Stage = Frozen
		opts.say("Freeze mode: sleeping until you press CTRL+C.")
		reason, err := opts.hold(ctx, sentinel, logger)
		if err != nil {
			return res, err
		}
		if reason == watch.SentinelRemoved {
			opts.say("Freeze ended: the lock file was removed.")
		} else {
			opts.say("Freeze ended by user.")
		}
		return res, nil
	}

	engine := organize.CurrentOrganizerFactory(fs, logger)
	plan, err := engine.Plan(cfg)
	if err != nil {
		return res, err
	}
	res.Plan = plan

	if opts.DryRun {
		report.Plan(opts.out(), plan)
		if plan.Empty() || opts.Confirm == nil || !opts.Confirm(plan) {
			res.Stage = Declined
			opts.say("Dry run only. No files were touched.")
			return res, nil
		}
	} else if plan.Empty() {
		res.Stage = NothingToDo
		opts.say("All caught up. Nothing to move.")
		return res, nil
	}

	results := engine.Execute(ctx, plan, cfg.SortMode())
	summary := types.NewSummary(runID, cfg.SortMode().String(), plan, results)
	res.Stage = Executed
	res.Summary = summary

	if cfg.ReapAfterRun() && ctx.Err() == nil {
		reaped := engine.Reap(cfg.TargetDir())
		summary.Reaped = len(reaped.Removed)
		summary.ReapFailed = reaped.Failed
	}

	logger.With(
		log.F("succeeded", summary.Succeeded()),
		log.F("attempted", summary.Attempted()),
		log.F("planned", summary.Planned),
		log.F("reaped", summary.Reaped),
	).Info("Run finished")

	if !opts.Quiet {
		report.Summary(opts.out(), summary)
	}
	return res, nil
}

func (o Options) hold(ctx context.Context, sentinel string, logger *log.Logger) (watch.HoldReason, error) {
	if o.Hold != nil {
		return o.Hold(ctx, sentinel)
	}
	return watch.NewSentinelWatcher(sentinel, logger).Hold(ctx)
}

func (o Options) say(msg string) {
	if o.Quiet {
		return
	}
	fmt.Fprintln(o.out(), msg)
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}
