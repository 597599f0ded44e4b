//go:build !windows

package fsx

import "golang.org/x/sys/unix"

var errCrossDevice error = unix.EXDEV
