package testutils

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent creates test files with specific content. Names
// may contain slashes; missing parent directories are created.
func CreateTestFilesWithContent(t *testing.T, fs afero.Fs, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
}

// CreateTestFilesWithDefault creates test files with default content
func CreateTestFilesWithDefault(t *testing.T, fs afero.Fs, dir string) {
	files := map[string]string{
		"test1.txt": "test content 1",
		"test2.txt": "test content 2",
		"test3.jpg": "image content",
	}
	CreateTestFilesWithContent(t, fs, dir, files)
}

// CreateDirs creates empty directories below dir.
func CreateDirs(t *testing.T, fs afero.Fs, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, fs.MkdirAll(filepath.Join(dir, filepath.FromSlash(name)), 0755))
	}
}

// ListFiles returns every regular file below dir as slash-separated paths
// relative to dir, sorted.
func ListFiles(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()
	return list(t, fs, dir, func(info os.FileInfo) bool { return info.Mode().IsRegular() })
}

// ListDirs returns every directory strictly below dir, sorted.
func ListDirs(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()
	return list(t, fs, dir, func(info os.FileInfo) bool { return info.IsDir() })
}

func list(t *testing.T, fs afero.Fs, dir string, keep func(os.FileInfo) bool) []string {
	var out []string
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == dir || !keep(info) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
