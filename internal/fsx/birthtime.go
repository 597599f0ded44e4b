package fsx

import (
	"os"
	"time"
)

// CreationTime returns the file's birth time when the platform and the
// filesystem record one, and its modification time otherwise. The fallback
// makes date-based sorting platform dependent: on filesystems without birth
// times a file that was edited after it was created sorts by the edit date.
func CreationTime(path string, info os.FileInfo) time.Time {
	if t, ok := birthTime(path, info); ok {
		return t
	}
	return info.ModTime()
}
