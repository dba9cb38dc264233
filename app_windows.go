//go:build windows

package main

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"stealth-overlay/internal/overlay"
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW = user32.NewProc("FindWindowW")
)

// resolveOverlayWindow finds the overlay window by its title
func resolveOverlayWindow(title string) overlay.WindowHandle {
	if title == "" {
		return 0
	}
	ptr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(ptr)))
	return overlay.WindowHandle(hwnd)
}
