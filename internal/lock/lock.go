// Package lock keeps two sorter runs from working on the same configuration
// at once. A run owns the lock while a sentinel file holding its PID exists;
// the config store mirrors the sentinel path and PID so that a run that died
// without cleaning up can be recognised later.
package lock

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"dirsort/internal/config"
	"dirsort/internal/errors"
	"dirsort/internal/fsx"
	"dirsort/internal/log"

	"github.com/spf13/afero"
)

// UnknownPID is reported when a sentinel exists but holds no PID.
const UnknownPID = "Unknown"

// StateStore persists the lock fields of the config store.
type StateStore interface {
	SaveLock(state config.LockState) error
}

// Manager acquires and releases the run lock.
type Manager struct {
	Sentinel string
	Store    StateStore
	Fs       afero.Fs
	Logger   *log.Logger
	// PID is written into the sentinel. Zero means the current process.
	PID int
}

// NewManager returns a manager for the sentinel next to the store.
func NewManager(sentinel string, store StateStore, fs afero.Fs, logger *log.Logger) *Manager {
	return &Manager{Sentinel: sentinel, Store: store, Fs: fs, Logger: logger}
}

// Handle is an acquired lock. Release it exactly once; extra calls are no-ops.
type Handle struct {
	mu       sync.Mutex
	sentinel string
	pid      string
	released bool
}

// Sentinel returns the sentinel file path.
func (h *Handle) Sentinel() string { return h.sentinel }

// PID returns the PID written into the sentinel.
func (h *Handle) PID() string { return h.pid }

// Acquire checks the persisted state and takes the lock.
//
// An empty state means unlocked. A state naming an existing sentinel means
// another run holds the lock and a LockHeld error is returned. A state naming
// a sentinel that no longer exists is stale: it is cleared and the lock is
// taken. Liveness of the recorded PID is never probed.
func (m *Manager) Acquire(state config.LockState) (*Handle, error) {
	logger := m.logger()

	if state.Held() {
		held, pid, err := m.inspect(state.Entry)
		if err != nil {
			return nil, err
		}
		if held {
			return nil, errors.NewLockError("another sorter run holds the lock", state.Entry, pid, errors.LockHeld, nil)
		}
		if state.PID != "" {
			logger.With(log.F("pid", state.PID), log.F("sentinel", state.Entry)).
				Warnf("Config mentioned a lock, but the lock file is gone. Previously recorded PID: %s", state.PID)
		}
		logger.Info("Clearing stale lock entry from config.")
		if err := m.Store.SaveLock(config.LockState{}); err != nil {
			return nil, errors.NewLockError("failed to clear stale lock", state.Entry, state.PID, errors.LockIOFailed, err)
		}
	}

	pid := m.pid()
	if err := m.writeSentinel(pid); err != nil {
		return nil, err
	}

	h := &Handle{sentinel: m.Sentinel, pid: pid}
	if err := m.Store.SaveLock(config.LockState{Entry: m.Sentinel, PID: pid}); err != nil {
		_ = m.Fs.Remove(m.Sentinel)
		return nil, errors.NewLockError("failed to record lock", m.Sentinel, pid, errors.LockIOFailed, err)
	}
	logger.With(log.F("sentinel", m.Sentinel), log.F("pid", pid)).Debug("Lock acquired")
	return h, nil
}

// Release removes the sentinel and clears the persisted lock fields. It is
// safe to call on a nil or already released handle.
func (m *Manager) Release(h *Handle) error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}

	var firstErr error
	if err := m.Fs.Remove(h.sentinel); err != nil && fsx.Classify(err) != fsx.NotFound {
		firstErr = errors.NewLockError("failed to remove sentinel", h.sentinel, h.pid, errors.LockIOFailed, err)
	}
	if err := m.Store.SaveLock(config.LockState{}); err != nil && firstErr == nil {
		firstErr = errors.NewLockError("failed to clear lock entry", h.sentinel, h.pid, errors.LockIOFailed, err)
	}
	h.released = true
	if firstErr != nil {
		m.logger().WithError(firstErr).Error("Failed to release lock")
		return firstErr
	}
	m.logger().With(log.F("sentinel", h.sentinel)).Debug("Lock released")
	return nil
}

// inspect reports whether the sentinel at path exists and the PID it holds.
func (m *Manager) inspect(path string) (bool, string, error) {
	path = expand(path)
	data, err := afero.ReadFile(m.Fs, path)
	switch fsx.Classify(err) {
	case fsx.OK:
		return true, parsePid(string(data)), nil
	case fsx.NotFound:
		return false, "", nil
	default:
		// Present but unreadable still counts as held.
		if _, statErr := m.Fs.Stat(path); statErr == nil {
			return true, UnknownPID, nil
		}
		return false, "", errors.NewLockError("cannot inspect lock", path, "", errors.LockIOFailed, err)
	}
}

// writeSentinel creates the sentinel. An existing sentinel means another run
// got there first, even if the store does not say so yet.
func (m *Manager) writeSentinel(pid string) error {
	if err := m.Fs.MkdirAll(filepath.Dir(m.Sentinel), 0755); err != nil {
		return errors.NewLockError("failed to create lock directory", m.Sentinel, pid, errors.LockIOFailed, err)
	}
	f, err := m.Fs.OpenFile(m.Sentinel, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			_, owner, _ := m.inspect(m.Sentinel)
			return errors.NewLockError("lock file exists but the config records no lock", m.Sentinel, owner, errors.LockHeld, err)
		}
		return errors.NewLockError("failed to create sentinel", m.Sentinel, pid, errors.LockIOFailed, err)
	}
	_, err = f.WriteString(pid)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = m.Fs.Remove(m.Sentinel)
		return errors.NewLockError("failed to write sentinel", m.Sentinel, pid, errors.LockIOFailed, err)
	}
	return nil
}

func (m *Manager) pid() string {
	if m.PID != 0 {
		return strconv.Itoa(m.PID)
	}
	return strconv.Itoa(os.Getpid())
}

func (m *Manager) logger() *log.Logger {
	if m.Logger == nil {
		return log.Default()
	}
	return m.Logger
}

// parsePid returns the trimmed sentinel contents, or UnknownPID when empty.
func parsePid(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownPID
	}
	return s
}

func expand(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return filepath.Clean(path)
}

// Remediation explains how to clear a lock held by another run.
func Remediation(err error) string {
	var lockErr *errors.LockError
	if !errors.As(err, &lockErr) || lockErr.Kind() != errors.LockHeld {
		return ""
	}
	pid := lockErr.PID()
	if pid == "" || pid == UnknownPID {
		return "A lock file is in the way, but no PID was recorded for it.\n" +
			"Lock file: " + lockErr.Sentinel() + "\n" +
			"It is most likely left over from a run that was killed before it could clean up.\n" +
			"If no other sorter is running, delete the lock file and run again.\n"
	}
	kill := "kill " + pid
	if runtime.GOOS == "windows" {
		kill = "taskkill /PID " + pid + " /F"
	}
	return "Another sorter run left a lock behind.\n" +
		"Lock file: " + lockErr.Sentinel() + "\n" +
		"Recorded PID: " + pid + "\n" +
		"If that run is stuck, close it with: " + kill + "\n" +
		"Then delete the lock file and run again.\n"
}
