//go:build !windows

package wallet

import (
	"golang.org/x/sys/unix"
)

// lockMemory keeps secret bytes out of swap. Returns false if the
// region could not be locked, which is not fatal.
func lockMemory(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return unix.Mlock(data) == nil
}

func unlockMemory(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Munlock(data)
}
