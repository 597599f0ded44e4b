// Package classify decides whether a file is sorted and which folder under
// Sorted_Dir it belongs in. Everything here is a pure function of the
// configuration and the file's name and timestamp.
package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dirsort/internal/config"
)

// NoExtensionFolder receives files without an extension.
const NoExtensionFolder = "no_extension_Files"

// TimeFunc returns the timestamp used for date-based sorting.
type TimeFunc func(path string, info os.FileInfo) time.Time

// SplitName splits a file name into stem and extension. The extension is the
// text after the final dot, lowercased and without the dot. A leading dot
// does not start an extension, so ".bashrc" has no extension, and neither
// does a name ending in a dot.
func SplitName(name string) (stem, ext string) {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] != '.' {
			continue
		}
		if i == len(name)-1 {
			break
		}
		return name[:i], config.NormalizeType(name[i+1:])
	}
	return name, ""
}

// Skip reports whether a file name is excluded by the configuration.
func Skip(cfg *config.Config, name string) bool {
	stem, ext := SplitName(name)
	if cfg.IgnoresName(stem) {
		return true
	}
	if ext != "" && cfg.IgnoresType(ext) {
		return true
	}
	return cfg.MatchesPattern(name)
}

// ExtensionFolder returns the folder name for an extension.
func ExtensionFolder(ext string) string {
	if ext == "" {
		return NoExtensionFolder
	}
	return fmt.Sprintf(".%s_Files", ext)
}

// DateFolder returns "<YYYY>/<MM>_<YYYY>" for t in local time.
func DateFolder(t time.Time) string {
	t = t.Local()
	return filepath.Join(fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d_%04d", int(t.Month()), t.Year()))
}

// Folder returns the absolute destination folder for the file at path.
func Folder(cfg *config.Config, times TimeFunc, path string, info os.FileInfo) string {
	if cfg.SortType() == config.DateBased {
		return filepath.Join(cfg.SortedDir(), DateFolder(times(path, info)))
	}
	_, ext := SplitName(filepath.Base(path))
	return filepath.Join(cfg.SortedDir(), ExtensionFolder(ext))
}
