//go:build windows

package wallet

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// lockMemory keeps secret bytes out of the page file. Returns false if
// the region could not be locked, which is not fatal.
func lockMemory(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return windows.VirtualLock(uintptr(unsafe.Pointer(&data[0])), uintptr(len(data))) == nil
}

func unlockMemory(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = windows.VirtualUnlock(uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)))
}
