package organize

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dirsort/internal/fsx"
	"dirsort/internal/log"
	"dirsort/pkg/types"

	"github.com/spf13/afero"
)

// ReapResult reports what the reaper removed.
type ReapResult struct {
	Removed []string
	Failed  []types.SkipEvent
}

// Reaper removes empty directories below a root, deepest first, so a chain of
// directories that only contain each other disappears in one pass.
type Reaper struct {
	Fs     afero.Fs
	Logger *log.Logger
}

// NewReaper returns a reaper working on fs.
func NewReaper(fs afero.Fs, logger *log.Logger) *Reaper {
	return &Reaper{Fs: fs, Logger: logger}
}

// Reap removes every empty directory strictly below root. Directories that
// cannot be listed or removed are recorded in Failed and skipped.
func (r *Reaper) Reap(root string) ReapResult {
	var res ReapResult
	root = filepath.Clean(root)

	var dirs []string
	err := afero.Walk(r.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			r.skip(&res, path, err)
			if info != nil && info.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		r.skip(&res, root, err)
		return res
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		di, dj := depth(dirs[i]), depth(dirs[j])
		if di != dj {
			return di > dj
		}
		return dirs[i] < dirs[j]
	})

	for _, dir := range dirs {
		removed, err := fsx.RemoveIfEmpty(r.Fs, dir)
		if err != nil {
			r.skip(&res, dir, err)
			continue
		}
		if removed {
			res.Removed = append(res.Removed, dir)
			r.logger().Infof("Deleted empty directory: %s", dir)
		}
	}
	return res
}

func (r *Reaper) skip(res *ReapResult, path string, err error) {
	status := fsx.Classify(err)
	res.Failed = append(res.Failed, types.SkipEvent{Path: path, Reason: status.String(), Err: err})
	if status == fsx.PermissionDenied {
		r.logger().Warnf("Skipping %s: permission problem (%v)", path, err)
		return
	}
	r.logger().Warnf("Skipping %s: %v", path, err)
}

func (r *Reaper) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}
