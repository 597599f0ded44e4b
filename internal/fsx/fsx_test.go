package fsx

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dirsort/internal/errors"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, OK, Classify(nil))
	assert.Equal(t, NotFound, Classify(&fs.PathError{Op: "stat", Path: "/x", Err: fs.ErrNotExist}))
	assert.Equal(t, PermissionDenied, Classify(&fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}))
	assert.Equal(t, PermissionDenied, Classify(fmt.Errorf("wrapped: %w", os.ErrPermission)))
	assert.Equal(t, OtherError, Classify(fmt.Errorf("disk on fire")))
	assert.Equal(t, PermissionDenied, Classify(errors.NewFileError("cannot scan", "/x", errors.FileAccessDenied, nil)))
	assert.Equal(t, NotFound, Classify(errors.Wrap(errors.ErrFileNotFound, "stat")))

	r := Attempt(func() error { return nil })
	assert.True(t, r.OK())
	r = Attempt(func() error { return os.ErrNotExist })
	assert.Equal(t, NotFound, r.Status)
	assert.Equal(t, "not found", r.Status.String())
}

func TestCopyFile(t *testing.T) {
	memFs := afero.NewMemMapFs()
	mtime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, afero.WriteFile(memFs, "/src/a.txt", []byte("hello"), 0600))
	require.NoError(t, memFs.Chtimes("/src/a.txt", mtime, mtime))
	require.NoError(t, memFs.MkdirAll("/dst", 0755))

	n, err := CopyFile(memFs, "/src/a.txt", "/dst/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	data, err := afero.ReadFile(memFs, "/dst/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := memFs.Stat("/dst/a.txt")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime), "modification time is preserved")

	// Source is untouched
	_, err = memFs.Stat("/src/a.txt")
	assert.NoError(t, err)

	t.Run("existing destination is not overwritten", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(memFs, "/dst/b.txt", []byte("keep"), 0644))
		require.NoError(t, afero.WriteFile(memFs, "/src/b.txt", []byte("new"), 0644))

		_, err := CopyFile(memFs, "/src/b.txt", "/dst/b.txt")
		assert.ErrorIs(t, err, errors.ErrDestinationExists)

		data, err := afero.ReadFile(memFs, "/dst/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "keep", string(data))
	})
}

func TestMoveFile(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "/src/a.txt", []byte("hello"), 0644))
	require.NoError(t, memFs.MkdirAll("/dst", 0755))

	n, err := MoveFile(memFs, "/src/a.txt", "/dst/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	exists, r := Exists(memFs, "/src/a.txt")
	assert.True(t, r.OK())
	assert.False(t, exists)
	exists, _ = Exists(memFs, "/dst/a.txt")
	assert.True(t, exists)

	t.Run("refuses to clobber", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(memFs, "/src/c.txt", []byte("new"), 0644))
		require.NoError(t, afero.WriteFile(memFs, "/dst/c.txt", []byte("old"), 0644))

		_, err := MoveFile(memFs, "/src/c.txt", "/dst/c.txt")
		assert.ErrorIs(t, err, errors.ErrDestinationExists)

		src, _ := afero.ReadFile(memFs, "/src/c.txt")
		dst, _ := afero.ReadFile(memFs, "/dst/c.txt")
		assert.Equal(t, "new", string(src))
		assert.Equal(t, "old", string(dst))
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := MoveFile(memFs, "/src/missing.txt", "/dst/missing.txt")
		assert.Equal(t, NotFound, Classify(err))
	})
}

func TestRemoveIfEmpty(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, memFs.MkdirAll("/root/empty", 0755))
	require.NoError(t, afero.WriteFile(memFs, "/root/full/f.txt", []byte("x"), 0644))

	removed, err := RemoveIfEmpty(memFs, "/root/empty")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = RemoveIfEmpty(memFs, "/root/full")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = RemoveIfEmpty(memFs, "/root/gone")
	assert.Equal(t, NotFound, Classify(err))
}

func TestCreationTimeFallsBackToModTime(t *testing.T) {
	memFs := afero.NewMemMapFs()
	mtime := time.Date(2019, 12, 31, 23, 0, 0, 0, time.Local)
	require.NoError(t, afero.WriteFile(memFs, "/a.txt", []byte("x"), 0644))
	require.NoError(t, memFs.Chtimes("/a.txt", mtime, mtime))

	info, err := memFs.Stat("/a.txt")
	require.NoError(t, err)
	assert.True(t, CreationTime("/a.txt", info).Equal(mtime))
}

func TestCreationTimeOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	// Birth time, when recorded, is never after the first write.
	got := CreationTime(path, info)
	assert.False(t, got.IsZero())
	assert.False(t, got.After(info.ModTime().Add(time.Second)))
}

// crossDeviceFs fails every rename as if src and dst were on different
// filesystems, and refuses to remove paths listed in keep.
type crossDeviceFs struct {
	afero.Fs
	keep map[string]bool
}

func (c *crossDeviceFs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: errCrossDevice}
}

func (c *crossDeviceFs) Remove(name string) error {
	if c.keep[name] {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrPermission}
	}
	return c.Fs.Remove(name)
}

func TestMoveFileAcrossDevices(t *testing.T) {
	assert.True(t, IsCrossDevice(&os.LinkError{Op: "rename", Err: errCrossDevice}))
	assert.False(t, IsCrossDevice(&os.LinkError{Op: "rename", Err: os.ErrPermission}))

	t.Run("falls back to copy and delete", func(t *testing.T) {
		mem := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(mem, "/src/a.txt", []byte("hello"), 0644))
		require.NoError(t, mem.MkdirAll("/dst", 0755))
		xfs := &crossDeviceFs{Fs: mem}

		n, err := MoveFile(xfs, "/src/a.txt", "/dst/a.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)

		data, err := afero.ReadFile(mem, "/dst/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		exists, _ := Exists(mem, "/src/a.txt")
		assert.False(t, exists)
	})

	t.Run("source that cannot be removed rolls the copy back", func(t *testing.T) {
		mem := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(mem, "/src/a.txt", []byte("hello"), 0644))
		require.NoError(t, mem.MkdirAll("/dst", 0755))
		xfs := &crossDeviceFs{Fs: mem, keep: map[string]bool{"/src/a.txt": true}}

		_, err := MoveFile(xfs, "/src/a.txt", "/dst/a.txt")
		require.Error(t, err)
		assert.Equal(t, PermissionDenied, Classify(err))

		exists, _ := Exists(mem, "/dst/a.txt")
		assert.False(t, exists, "the copy is removed")
		data, err := afero.ReadFile(mem, "/src/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})
}
