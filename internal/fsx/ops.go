package fsx

import (
	"io"
	"os"

	"dirsort/internal/errors"

	"github.com/spf13/afero"
)

// Exists reports whether path can be stat'ed. A NotFound status is not an
// error; anything else is returned in the Result.
func Exists(fs afero.Fs, path string) (bool, Result) {
	_, err := fs.Stat(path)
	r := Result{Status: Classify(err), Err: err}
	switch r.Status {
	case OK:
		return true, r
	case NotFound:
		return false, Result{Status: OK}
	default:
		return false, r
	}
}

// CopyFile copies src to dst, keeping the permission bits and modification
// time. dst must not exist. A partially written dst is removed on failure.
func CopyFile(fs afero.Fs, src, dst string) (int64, error) {
	in, err := fs.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, errors.NewFileError("cannot copy directory as file", src, errors.InvalidPath, nil)
	}

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if os.IsExist(err) {
			return 0, errors.NewFileError("destination already exists", dst, errors.DestinationExists, err)
		}
		return 0, err
	}

	n, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = fs.Remove(dst)
		return 0, errors.Wrapf(err, "copy %s", src)
	}

	if err := fs.Chmod(dst, info.Mode().Perm()); err != nil {
		_ = fs.Remove(dst)
		return 0, err
	}
	if err := fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		_ = fs.Remove(dst)
		return 0, err
	}
	return n, nil
}

// MoveFile moves src to dst. An existing dst is never replaced. A rename
// across filesystems falls back to copy-then-delete; if the source cannot be
// removed afterwards the copy is rolled back so the file exists in exactly
// one place.
func MoveFile(fs afero.Fs, src, dst string) (int64, error) {
	info, err := fs.Stat(src)
	if err != nil {
		return 0, err
	}

	exists, r := Exists(fs, dst)
	if !r.OK() {
		return 0, r.Err
	}
	if exists {
		return 0, errors.NewFileError("destination already exists", dst, errors.DestinationExists, nil)
	}

	err = fs.Rename(src, dst)
	if err == nil {
		return info.Size(), nil
	}
	if !IsCrossDevice(err) {
		return 0, err
	}

	n, err := CopyFile(fs, src, dst)
	if err != nil {
		return 0, err
	}
	if err := fs.Remove(src); err != nil {
		_ = fs.Remove(dst)
		return 0, errors.Wrap(err, "remove source after copy")
	}
	return n, nil
}

// IsEmptyDir reports whether dir has no entries at all.
func IsEmptyDir(fs afero.Fs, dir string) (bool, error) {
	f, err := fs.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	names, err := f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(names) == 0, nil
}

// RemoveIfEmpty removes dir when it has no entries. It reports whether the
// directory was removed.
func RemoveIfEmpty(fs afero.Fs, dir string) (bool, error) {
	empty, err := IsEmptyDir(fs, dir)
	if err != nil || !empty {
		return false, err
	}
	if err := fs.Remove(dir); err != nil {
		return false, err
	}
	return true, nil
}
