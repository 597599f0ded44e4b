package watch

import (
	"context"
	"os"
	"path/filepath"

	"dirsort/internal/errors"
	"dirsort/internal/log"

	"github.com/fsnotify/fsnotify"
)

// HoldReason tells why Hold returned.
type HoldReason int

const (
	// Cancelled means the context ended, usually on CTRL+C.
	Cancelled HoldReason = iota
	// SentinelRemoved means the sentinel was deleted or renamed by someone else.
	SentinelRemoved
)

func (r HoldReason) String() string {
	if r == SentinelRemoved {
		return "sentinel removed"
	}
	return "cancelled"
}

// SentinelWatcher keeps a run parked while it owns the lock. It never touches
// the filesystem itself.
type SentinelWatcher struct {
	sentinel string
	logger   *log.Logger
}

// NewSentinelWatcher returns a watcher for the sentinel file at path.
func NewSentinelWatcher(path string, logger *log.Logger) *SentinelWatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &SentinelWatcher{sentinel: filepath.Clean(path), logger: logger}
}

// Hold blocks until ctx is done or the sentinel disappears.
func (w *SentinelWatcher) Hold(ctx context.Context) (HoldReason, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return Cancelled, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer fsWatcher.Close()

	dir := filepath.Dir(w.sentinel)
	if err := fsWatcher.Add(dir); err != nil {
		return Cancelled, errors.Wrapf(err, "failed to watch %s", dir)
	}

	// The sentinel may have gone before the watch was in place.
	if _, err := os.Stat(w.sentinel); os.IsNotExist(err) {
		return SentinelRemoved, nil
	}

	w.logger.With(log.F("sentinel", w.sentinel)).Debug("Holding lock")
	for {
		select {
		case <-ctx.Done():
			return Cancelled, nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return Cancelled, nil
			}
			if filepath.Clean(event.Name) != w.sentinel {
				continue
			}
			if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				w.logger.With(log.F("sentinel", w.sentinel), log.F("op", event.Op.String())).Warn("Lock file was removed externally")
				return SentinelRemoved, nil
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return Cancelled, nil
			}
			w.logger.WithError(err).Error("fsnotify watcher error")
		}
	}
}
