package organize

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"dirsort/internal/config"
	"dirsort/internal/errors"
	"dirsort/pkg/testutils"
	"dirsort/pkg/types"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// denyFs refuses renames, writes and directory reads for paths containing
// one of the listed fragments.
type denyFs struct {
	afero.Fs
	deny []string
}

func (d *denyFs) denied(name string) bool {
	for _, frag := range d.deny {
		if strings.Contains(name, frag) {
			return true
		}
	}
	return false
}

func (d *denyFs) Rename(oldname, newname string) error {
	if d.denied(oldname) || d.denied(newname) {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: os.ErrPermission}
	}
	return d.Fs.Rename(oldname, newname)
}

func (d *denyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if d.denied(name) {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return d.Fs.OpenFile(name, flag, perm)
}

func (d *denyFs) Open(name string) (afero.File, error) {
	if d.denied(name) {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return d.Fs.Open(name)
}

// TestExecutorFaultTolerance checks that a failing operation is reported and
// every other operation still runs.
func TestExecutorFaultTolerance(t *testing.T) {
	mem := afero.NewMemMapFs()
	testutils.CreateTestFilesWithContent(t, mem, targetDir, map[string]string{
		"a.txt":      "a",
		"locked.bin": "b",
		"c.md":       "c",
	})
	fs := &denyFs{Fs: mem, deny: []string{"locked"}}
	cfg := newConfig(t, mem, nil)
	logger, buf := newTestLogger()
	engine := New(fs, logger)

	plan, err := engine.Plan(cfg)
	require.NoError(t, err)
	require.Len(t, plan.Operations, 3)

	results := engine.Execute(context.Background(), plan, config.Move)
	require.Len(t, results, 3)

	byName := map[string]types.OpResult{}
	for _, r := range results {
		byName[filepath.Base(r.Operation.Source)] = r
	}
	assert.Equal(t, types.Succeeded, byName["a.txt"].Outcome)
	assert.Equal(t, types.Succeeded, byName["c.md"].Outcome)
	assert.Equal(t, types.SkippedPermission, byName["locked.bin"].Outcome)
	assert.Error(t, byName["locked.bin"].Err)

	// The failed file is still in place and its folder was cleaned up
	exists, _ := afero.Exists(mem, filepath.Join(targetDir, "locked.bin"))
	assert.True(t, exists)
	exists, _ = afero.DirExists(mem, filepath.Join(sortedDir, ".bin_Files"))
	assert.False(t, exists, "empty destination folder is removed after a failure")

	assert.Contains(t, buf.String(), "permission problem")
}

func TestExecutorVanishedSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.CreateTestFilesWithContent(t, fs, targetDir, map[string]string{
		"gone.txt": "x",
		"here.txt": "y",
	})
	cfg := newConfig(t, fs, nil)
	engine := New(fs, nil)

	plan, err := engine.Plan(cfg)
	require.NoError(t, err)
	require.NoError(t, fs.Remove(filepath.Join(targetDir, "gone.txt")))

	results := engine.Execute(context.Background(), plan, config.Move)
	require.Len(t, results, 2)
	assert.Equal(t, types.SkippedVanished, results[0].Outcome)
	assert.True(t, errors.IsFileNotFound(results[0].Err))
	assert.Equal(t, types.Succeeded, results[1].Outcome)
}

func TestExecutorDestinationExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.CreateTestFilesWithContent(t, fs, targetDir, map[string]string{"dup.txt": "new"})
	testutils.CreateTestFilesWithContent(t, fs, sortedDir, map[string]string{".txt_Files/dup.txt": "old"})
	cfg := newConfig(t, fs, func(r *config.Record) { r.SortMode = "Copy" })
	engine := New(fs, nil)

	plan, err := engine.Plan(cfg)
	require.NoError(t, err)
	results := engine.Execute(context.Background(), plan, cfg.SortMode())

	require.Len(t, results, 1)
	assert.Equal(t, types.SkippedOtherError, results[0].Outcome)
	assert.ErrorIs(t, results[0].Err, errors.ErrDestinationExists)

	data, err := afero.ReadFile(fs, filepath.Join(sortedDir, ".txt_Files", "dup.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestExecutorStopsWhenCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.CreateTestFilesWithDefault(t, fs, targetDir)
	cfg := newConfig(t, fs, nil)
	engine := New(fs, nil)

	plan, err := engine.Plan(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := engine.Execute(ctx, plan, config.Move)
	assert.Empty(t, results)
	assert.Len(t, testutils.ListFiles(t, fs, targetDir), 3)
}

func TestPlannerRecordsUnreadableDirectories(t *testing.T) {
	mem := afero.NewMemMapFs()
	testutils.CreateTestFilesWithContent(t, mem, targetDir, map[string]string{
		"ok.txt":             "1",
		"private/secret.txt": "2",
	})
	cfg := newConfig(t, mem, nil)
	fs := &denyFs{Fs: mem, deny: []string{"private"}}

	plan, err := NewPlanner(fs, nil).Plan(cfg)
	require.NoError(t, err)

	require.Len(t, plan.Operations, 1)
	assert.Equal(t, filepath.Join(targetDir, "ok.txt"), plan.Operations[0].Source)
	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, filepath.Join(targetDir, "private"), plan.Skipped[0].Path)
	assert.Equal(t, "permission denied", plan.Skipped[0].Reason)
}

func TestReaperSkipsFailures(t *testing.T) {
	mem := afero.NewMemMapFs()
	testutils.CreateDirs(t, mem, targetDir, "open/empty", "private/empty")
	fs := &denyFs{Fs: mem, deny: []string{"private"}}

	res := NewReaper(fs, nil).Reap(targetDir)

	assert.Contains(t, res.Removed, filepath.Join(targetDir, "open", "empty"))
	assert.Contains(t, res.Removed, filepath.Join(targetDir, "open"))
	require.NotEmpty(t, res.Failed)
	assert.Equal(t, filepath.Join(targetDir, "private"), res.Failed[0].Path)
}

// TestExecutorOnDisk runs a move and a permission failure against the real
// filesystem.
func TestExecutorOnDisk(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits behave differently on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores permission bits")
	}

	root := t.TempDir()
	target := filepath.Join(root, "target")
	sorted := filepath.Join(root, "sorted")
	fs := afero.NewOsFs()
	testutils.CreateTestFilesWithContent(t, fs, target, map[string]string{
		"free/a.txt":   "a",
		"frozen/b.txt": "b",
	})
	frozen := filepath.Join(target, "frozen")
	require.NoError(t, os.Chmod(frozen, 0555))
	t.Cleanup(func() { _ = os.Chmod(frozen, 0755) })

	cfg, err := config.Validate(fs, config.Record{
		TargetDir: target,
		SortedDir: sorted,
		SortType:  config.SortTypeExtension,
		SortMode:  "Move",
	})
	require.NoError(t, err)
	engine := New(fs, nil)

	plan, err := engine.Plan(cfg)
	require.NoError(t, err)
	results := engine.Execute(context.Background(), plan, config.Move)
	require.Len(t, results, 2)

	assert.Equal(t, types.Succeeded, results[0].Outcome)
	assert.Equal(t, types.SkippedPermission, results[1].Outcome)
	assert.FileExists(t, filepath.Join(frozen, "b.txt"))
	assert.FileExists(t, filepath.Join(cfg.SortedDir(), ".txt_Files", "a.txt"))
}
