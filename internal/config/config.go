// Package config holds the sorter configuration: the Record persisted in the
// config store, the validated and immutable Config built from it, and the
// LockState that only the lock manager writes back.
package config

import (
	"path/filepath"
	"sort"
	"strings"

	"dirsort/internal/errors"

	"github.com/gobwas/glob"
)

// SortType selects how files are assigned a destination folder.
type SortType int

const (
	ExtensionBased SortType = iota
	DateBased
)

// Store values for Sort_Type.
const (
	SortTypeExtension = "File-Extension"
	SortTypeDate      = "Date-Created"
)

// ParseSortType parses a Sort_Type store value.
func ParseSortType(s string) (SortType, error) {
	switch s {
	case SortTypeExtension:
		return ExtensionBased, nil
	case SortTypeDate:
		return DateBased, nil
	}
	return 0, errors.Newf("unknown sort type %q", s)
}

func (t SortType) String() string {
	if t == DateBased {
		return SortTypeDate
	}
	return SortTypeExtension
}

// SortMode selects whether files are moved or copied.
type SortMode int

const (
	Move SortMode = iota
	Copy
)

// ParseSortMode parses a Sort_Mode store value.
func ParseSortMode(s string) (SortMode, error) {
	switch s {
	case "Move":
		return Move, nil
	case "Copy":
		return Copy, nil
	}
	return 0, errors.Newf("unknown sort mode %q", s)
}

func (m SortMode) String() string {
	if m == Copy {
		return "Copy"
	}
	return "Move"
}

// LockState mirrors the Lock and Lock_PID store fields.
type LockState struct {
	Entry string // sentinel file path, empty when unlocked
	PID   string
}

// Held reports whether the store records a lock.
func (s LockState) Held() bool {
	return s.Entry != ""
}

// Config is a validated configuration. It is never modified after Validate
// returns it.
type Config struct {
	targetDir       string
	sortedDir       string
	sortType        SortType
	sortMode        SortMode
	ignoreNames     map[string]struct{}
	ignoreTypes     map[string]struct{}
	ignorePatterns  []string
	globs           []glob.Glob
	deleteEmptyDirs bool
}

func (c *Config) TargetDir() string     { return c.targetDir }
func (c *Config) SortedDir() string     { return c.sortedDir }
func (c *Config) SortType() SortType    { return c.sortType }
func (c *Config) SortMode() SortMode    { return c.sortMode }
func (c *Config) DeleteEmptyDirs() bool { return c.deleteEmptyDirs }

// ReapAfterRun reports whether empty directories left in the target tree
// should be removed. Copy runs never empty a directory, so only Move counts.
func (c *Config) ReapAfterRun() bool {
	return c.sortMode == Move && c.deleteEmptyDirs
}

// IgnoresName reports whether a file stem is listed in Ignore_Names.
func (c *Config) IgnoresName(stem string) bool {
	_, ok := c.ignoreNames[stem]
	return ok
}

// IgnoresType reports whether a normalized extension is listed in Ignore_Types.
func (c *Config) IgnoresType(ext string) bool {
	_, ok := c.ignoreTypes[ext]
	return ok
}

// MatchesPattern reports whether a file name matches any Ignore_Patterns glob.
func (c *Config) MatchesPattern(name string) bool {
	for _, g := range c.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Record returns the normalized store form of c carrying the given lock state.
func (c *Config) Record(lock LockState) Record {
	return Record{
		TargetDir:       c.targetDir,
		SortedDir:       c.sortedDir,
		SortType:        c.sortType.String(),
		SortMode:        c.sortMode.String(),
		IgnoreNames:     sortedKeys(c.ignoreNames),
		IgnoreTypes:     sortedKeys(c.ignoreTypes),
		IgnorePatterns:  append([]string(nil), c.ignorePatterns...),
		DeleteEmptyDirs: c.deleteEmptyDirs,
		Lock:            lock.Entry,
		LockPID:         lock.PID,
	}
}

// NormalizeType lowercases an extension and strips leading dots and spaces.
func NormalizeType(ext string) string {
	return strings.TrimLeft(strings.ToLower(strings.TrimSpace(ext)), ".")
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SentinelPath is the lock sentinel kept next to the config store.
func SentinelPath(storePath string) string {
	return filepath.Join(filepath.Dir(storePath), SentinelName)
}

const (
	// StoreName is the default config store file name.
	StoreName = "dir_sorter_config.json"
	// SentinelName is the lock sentinel file name.
	SentinelName = "dir_sorter.lock"
)
