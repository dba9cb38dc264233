//go:build !windows

package main

import "stealth-overlay/internal/overlay"

// resolveOverlayWindow is a no-op on non-Windows platforms
func resolveOverlayWindow(title string) overlay.WindowHandle {
	return 0
}
