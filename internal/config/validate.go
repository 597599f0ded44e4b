package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dirsort/internal/errors"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// Validate checks rec against fs and builds a Config. Every problem found is
// reported in a single *errors.ValidationError; Validate never exits the
// process, so callers decide whether to abort or let the operator retry.
// A missing Sorted_Dir is created.
func Validate(fs afero.Fs, rec Record) (*Config, error) {
	var issues []errors.Issue
	add := func(field, format string, args ...interface{}) {
		issues = append(issues, errors.Issue{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	required := []struct{ field, value string }{
		{"Target_Dir", rec.TargetDir},
		{"Sorted_Dir", rec.SortedDir},
		{"Sort_Type", rec.SortType},
		{"Sort_Mode", rec.SortMode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			add(r.field, "field is missing")
		}
	}

	cfg := &Config{
		ignoreNames:     make(map[string]struct{}),
		ignoreTypes:     make(map[string]struct{}),
		deleteEmptyDirs: rec.DeleteEmptyDirs,
	}

	pathsOK := rec.TargetDir != "" && rec.SortedDir != ""
	if pathsOK {
		var err error
		if cfg.targetDir, err = resolvePath(fs, rec.TargetDir); err != nil {
			add("Target_Dir", "cannot resolve path: %v", err)
			pathsOK = false
		}
		if cfg.sortedDir, err = resolvePath(fs, rec.SortedDir); err != nil {
			add("Sorted_Dir", "cannot resolve path: %v", err)
			pathsOK = false
		}
	}

	if pathsOK {
		pathsOK = checkPaths(fs, cfg.targetDir, cfg.sortedDir, add)
	}

	if rec.SortType != "" {
		st, err := ParseSortType(strings.TrimSpace(rec.SortType))
		if err != nil {
			add("Sort_Type", "must be '%s' or '%s'", SortTypeExtension, SortTypeDate)
		}
		cfg.sortType = st
	}
	if rec.SortMode != "" {
		sm, err := ParseSortMode(strings.TrimSpace(rec.SortMode))
		if err != nil {
			add("Sort_Mode", "must be 'Move' or 'Copy'")
		}
		cfg.sortMode = sm
	}

	for _, name := range rec.IgnoreNames {
		if name = strings.TrimSpace(name); name != "" {
			cfg.ignoreNames[name] = struct{}{}
		}
	}
	for _, ext := range rec.IgnoreTypes {
		if ext = NormalizeType(ext); ext != "" {
			cfg.ignoreTypes[ext] = struct{}{}
		}
	}
	for _, pattern := range rec.IgnorePatterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			add("Ignore_Patterns", "invalid pattern %q: %v", pattern, err)
			continue
		}
		cfg.ignorePatterns = append(cfg.ignorePatterns, pattern)
		cfg.globs = append(cfg.globs, g)
	}

	if len(issues) > 0 {
		return nil, &errors.ValidationError{Issues: issues}
	}

	// Only create Sorted_Dir once everything else is known to be valid.
	if pathsOK {
		if err := fs.MkdirAll(cfg.sortedDir, 0755); err != nil {
			return nil, &errors.ValidationError{Issues: []errors.Issue{
				{Field: "Sorted_Dir", Message: fmt.Sprintf("cannot create folder: %v", err)},
			}}
		}
	}
	return cfg, nil
}

func checkPaths(fs afero.Fs, target, sorted string, add func(field, format string, args ...interface{})) bool {
	ok := true
	info, err := fs.Stat(target)
	if err != nil || !info.IsDir() {
		add("Target_Dir", "must be a real folder")
		ok = false
	}
	if info, err := fs.Stat(sorted); err == nil && !info.IsDir() {
		add("Sorted_Dir", "exists and is not a folder")
		ok = false
	}
	switch {
	case target == sorted:
		add("", "Target_Dir and Sorted_Dir cannot be the same place")
		ok = false
	case isWithin(target, sorted):
		add("Sorted_Dir", "cannot live inside Target_Dir")
		ok = false
	case isWithin(sorted, target):
		add("Target_Dir", "cannot live inside Sorted_Dir")
		ok = false
	}
	return ok
}

// isWithin reports whether child is strictly below parent.
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolvePath expands a leading ~, makes the path absolute and, on the real
// filesystem, resolves symlinks of the existing part of the path.
func resolvePath(fs afero.Fs, p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, p[1:])
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if _, ok := fs.(*afero.OsFs); ok {
		abs = evalExisting(abs)
	}
	return abs, nil
}

// evalExisting resolves symlinks in the longest existing prefix of p and
// re-attaches the missing tail, so a Sorted_Dir that does not exist yet still
// compares correctly against Target_Dir.
func evalExisting(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	parent := filepath.Dir(p)
	if parent == p {
		return p
	}
	return filepath.Join(evalExisting(parent), filepath.Base(p))
}
