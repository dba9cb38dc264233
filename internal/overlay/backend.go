package overlay

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupported is returned by NewPlatformBackend where no backend exists.
var ErrUnsupported = fmt.Errorf("stealth overlay is not supported on %s/%s", runtime.GOOS, runtime.GOARCH)

// ErrInvalidWindow is returned by backends for handles that no longer name a window.
var ErrInvalidWindow = errors.New("invalid window handle")

// Backend is the narrow set of OS primitives the overlay needs. Each method
// performs exactly one OS request, checks that request's own success signal
// and returns an error on failure. Implementations never retry.
type Backend interface {
	ExStyle(w WindowHandle) (ExStyle, error)
	SetExStyle(w WindowHandle, style ExStyle) error
	// SetTopmost re-asserts topmost z-order without moving, resizing or activating.
	SetTopmost(w WindowHandle) error
	SetAlpha(w WindowHandle, alpha Alpha) error
	ExcludeFromCapture(w WindowHandle) error
	SetDWMAttribute(w WindowHandle, attr DWMAttribute, on bool) error
	// Show displays the window without activating it.
	Show(w WindowHandle) error
	// Focus brings the window to the foreground and gives it keyboard focus.
	Focus(w WindowHandle) error
	RegisterHotKey(w WindowHandle, id int32, mods Modifier, key VKey) error
	UnregisterHotKey(w WindowHandle, id int32) error
	// Watch delivers hotkey and destruction notifications for w. Calling it
	// again for the same window replaces the callbacks.
	Watch(w WindowHandle, events WindowEvents) error
}

// WindowEvents are the notifications a Backend forwards from the window.
// Callbacks run on their own goroutine, never on the UI thread.
type WindowEvents struct {
	OnHotkey  func(id int32)
	OnDestroy func()
}
