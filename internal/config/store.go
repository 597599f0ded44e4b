package config

import (
	"os"
	"path/filepath"

	"dirsort/internal/errors"

	"github.com/gofrs/flock"
)

// Store reads and writes the config Record at a fixed path. The encoding
// follows the file extension. Writes are serialized across processes by an
// advisory lock on "<path>.flock" and replace the file atomically.
type Store struct {
	path  string
	codec codec
	lock  *flock.Flock
}

// NewStore returns a store for path. Only .json, .yaml, .yml and .toml are
// accepted.
func NewStore(path string) (*Store, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		path:  path,
		codec: c,
		lock:  flock.New(path + ".flock"),
	}, nil
}

// DefaultPath is dir_sorter_config.json inside the per-user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dirsort", StoreName), nil
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the store file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the record. A missing file is reported as a ConfigNotFound error.
func (s *Store) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, errors.NewConfigError("config file not found", s.path, errors.ConfigNotFound, err)
		}
		return Record{}, errors.NewConfigError("failed to read config file", s.path, errors.InvalidConfig, err)
	}
	var rec Record
	if err := s.codec.Unmarshal(data, &rec); err != nil {
		return Record{}, errors.NewConfigError("failed to parse config file", s.path, errors.InvalidConfig, err)
	}
	return rec, nil
}

// Save writes rec, replacing the previous contents.
func (s *Store) Save(rec Record) error {
	return s.locked(func() error {
		return s.write(rec)
	})
}

// Update loads the record, applies fn and saves the result while holding the
// store lock, so concurrent updates never lose each other's writes.
func (s *Store) Update(fn func(*Record) error) error {
	return s.locked(func() error {
		rec, err := s.Load()
		if err != nil {
			return err
		}
		if err := fn(&rec); err != nil {
			return err
		}
		return s.write(rec)
	})
}

// SaveLock persists the lock fields and leaves every other field untouched.
func (s *Store) SaveLock(state LockState) error {
	return s.Update(func(rec *Record) error {
		*rec = rec.WithLock(state)
		return nil
	})
}

func (s *Store) locked(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.NewConfigError("failed to create config directory", s.path, errors.InvalidConfig, err)
	}
	if err := s.lock.Lock(); err != nil {
		return errors.NewConfigError("failed to lock config file", s.path, errors.InvalidConfig, err)
	}
	defer s.lock.Unlock()
	return fn()
}

func (s *Store) write(rec Record) error {
	data, err := s.codec.Marshal(rec)
	if err != nil {
		return errors.NewConfigError("failed to encode config", s.path, errors.InvalidConfig, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return errors.NewConfigError("failed to write config file", s.path, errors.InvalidConfig, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewConfigError("failed to write config file", s.path, errors.InvalidConfig, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewConfigError("failed to write config file", s.path, errors.InvalidConfig, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return errors.NewConfigError("failed to write config file", s.path, errors.InvalidConfig, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.NewConfigError("failed to write config file", s.path, errors.InvalidConfig, err)
	}
	return nil
}
