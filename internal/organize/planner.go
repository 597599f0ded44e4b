package organize

import (
	"os"
	"path/filepath"

	"dirsort/internal/classify"
	"dirsort/internal/config"
	"dirsort/internal/errors"
	"dirsort/internal/fsx"
	"dirsort/internal/log"
	"dirsort/pkg/types"

	"github.com/spf13/afero"
)

// Planner scans the target tree and produces a Plan. It never changes the
// filesystem.
type Planner struct {
	Fs     afero.Fs
	Times  classify.TimeFunc
	Logger *log.Logger
}

// NewPlanner returns a planner reading fs and dating files by creation time.
func NewPlanner(fs afero.Fs, logger *log.Logger) *Planner {
	return &Planner{Fs: fs, Times: fsx.CreationTime, Logger: logger}
}

// Plan walks cfg.TargetDir in lexical order. Entries that cannot be read are
// recorded in Plan.Skipped and the walk goes on; only an unreadable root is
// returned as an error. Symlinks and other non-regular files are left alone.
func (p *Planner) Plan(cfg *config.Config) (*types.Plan, error) {
	root := cfg.TargetDir()
	plan := types.NewPlan()
	times := p.Times
	if times == nil {
		times = fsx.CreationTime
	}

	err := afero.Walk(p.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			status := fsx.Classify(err)
			plan.Skip(path, status.String(), err)
			p.logger().With(log.F("path", path), log.F("status", status.String())).Warnf("Skipping %s: %v", path, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		name := info.Name()
		if classify.Skip(cfg, name) {
			p.logger().Debugf("Ignoring %s", path)
			return nil
		}

		folder := classify.Folder(cfg, times, path, info)
		plan.Add(types.Operation{Source: path, Destination: filepath.Join(folder, name)}, folder)
		return nil
	})
	if err != nil {
		return nil, errors.NewFileError("cannot scan target directory", root, kindFor(err), err)
	}

	p.logger().With(log.F("operations", len(plan.Operations)), log.F("skipped", len(plan.Skipped))).
		Debugf("Planned %d operations under %s", len(plan.Operations), root)
	return plan, nil
}

func (p *Planner) logger() *log.Logger {
	if p.Logger == nil {
		return log.Default()
	}
	return p.Logger
}

func kindFor(err error) errors.ErrorKind {
	switch fsx.Classify(err) {
	case fsx.NotFound:
		return errors.FileNotFound
	case fsx.PermissionDenied:
		return errors.FileAccessDenied
	default:
		return errors.FileOperationFailed
	}
}
