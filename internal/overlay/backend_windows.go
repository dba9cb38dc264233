//go:build windows

package overlay

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	dwmapi   = windows.NewLazySystemDLL("dwmapi.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetWindowLongPtrW          = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW          = user32.NewProc("SetWindowLongPtrW")
	procSetWindowPos               = user32.NewProc("SetWindowPos")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procSetWindowDisplayAffinity   = user32.NewProc("SetWindowDisplayAffinity")
	procShowWindow                 = user32.NewProc("ShowWindow")
	procSetForegroundWindow        = user32.NewProc("SetForegroundWindow")
	procSetFocus                   = user32.NewProc("SetFocus")
	procRegisterHotKey             = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey           = user32.NewProc("UnregisterHotKey")
	procSendMessageW               = user32.NewProc("SendMessageW")
	procCallWindowProcW            = user32.NewProc("CallWindowProcW")
	procDefWindowProcW             = user32.NewProc("DefWindowProcW")
	procDwmSetWindowAttribute      = dwmapi.NewProc("DwmSetWindowAttribute")
	procSetLastError               = kernel32.NewProc("SetLastError")
)

const (
	gwlExStyle  int32 = -20
	gwlpWndProc int32 = -4

	swpNoSize       = 0x0001
	swpNoMove       = 0x0002
	swpNoActivate   = 0x0010
	swpFrameChanged = 0x0020

	swShowNoActivate = 4

	lwaAlpha              = 0x00000002
	wdaExcludeFromCapture = 0x00000011

	wmDestroy = 0x0002
	wmHotkey  = 0x0312
	wmApp     = 0x8000
	// wmInvoke runs a queued call on the window's thread.
	wmInvoke = wmApp + 0x0C1A
)

// hwndTopmost is (HWND)-1.
var hwndTopmost = ^uintptr(0)

// windowHook is the subclass state for one window.
type windowHook struct {
	prevProc uintptr
	events   WindowEvents
	hotkeys  map[int32]struct{}
}

// win32Backend runs every primitive on the window's owning thread: the
// window procedure is subclassed and calls are delivered with SendMessageW.
// The UI thread never waits on anything but b.mu, which is never held
// across a SendMessageW.
type win32Backend struct {
	mu       sync.RWMutex
	hooks    map[WindowHandle]*windowHook
	pending  map[uintptr]func()
	nextCall uintptr
}

// One backend per process: windows.NewCallback slots are never released.
var (
	platform = &win32Backend{
		hooks:   make(map[WindowHandle]*windowHook),
		pending: make(map[uintptr]func()),
	}
	wndProcCallback = windows.NewCallback(platform.wndProc)
)

// NewPlatformBackend returns the Win32 backend.
func NewPlatformBackend() (Backend, error) {
	// Pre-check availability so failures are errors instead of panics from LazyProc.Call.
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("user32.dll is unavailable: %w", err)
	}
	if err := procSetWindowDisplayAffinity.Find(); err != nil {
		return nil, fmt.Errorf("SetWindowDisplayAffinity is unavailable: %w", err)
	}
	return platform, nil
}

func (b *win32Backend) ExStyle(w WindowHandle) (ExStyle, error) {
	var style ExStyle
	err := b.onWindowThread(w, func() error {
		value, err := getWindowLongPtr(w, gwlExStyle)
		style = ExStyle(value)
		return err
	})
	return style, err
}

func (b *win32Backend) SetExStyle(w WindowHandle, style ExStyle) error {
	return b.onWindowThread(w, func() error {
		_, err := setWindowLongPtr(w, gwlExStyle, uintptr(style))
		return err
	})
}

func (b *win32Backend) SetTopmost(w WindowHandle) error {
	return b.onWindowThread(w, func() error {
		ret, _, err := procSetWindowPos.Call(
			uintptr(w),
			hwndTopmost,
			0, 0, 0, 0,
			swpNoMove|swpNoSize|swpNoActivate|swpFrameChanged,
		)
		if ret == 0 {
			return callErr("SetWindowPos", err)
		}
		return nil
	})
}

func (b *win32Backend) SetAlpha(w WindowHandle, alpha Alpha) error {
	return b.onWindowThread(w, func() error {
		ret, _, err := procSetLayeredWindowAttributes.Call(uintptr(w), 0, uintptr(alpha), lwaAlpha)
		if ret == 0 {
			return callErr("SetLayeredWindowAttributes", err)
		}
		return nil
	})
}

func (b *win32Backend) ExcludeFromCapture(w WindowHandle) error {
	return b.onWindowThread(w, func() error {
		ret, _, err := procSetWindowDisplayAffinity.Call(uintptr(w), wdaExcludeFromCapture)
		if ret == 0 {
			return callErr("SetWindowDisplayAffinity", err)
		}
		return nil
	})
}

func (b *win32Backend) SetDWMAttribute(w WindowHandle, attr DWMAttribute, on bool) error {
	if err := procDwmSetWindowAttribute.Find(); err != nil {
		return err
	}
	return b.onWindowThread(w, func() error {
		var value uint32
		if on {
			value = 1
		}
		hr, _, _ := procDwmSetWindowAttribute.Call(
			uintptr(w),
			uintptr(attr),
			uintptr(unsafe.Pointer(&value)),
			unsafe.Sizeof(value),
		)
		if hr != 0 {
			return fmt.Errorf("DwmSetWindowAttribute(%s) returned HRESULT 0x%08X", attr, uint32(hr))
		}
		return nil
	})
}

// Show has no failure signal of its own: ShowWindow returns the previous
// visibility. Handle validity is checked by onWindowThread.
func (b *win32Backend) Show(w WindowHandle) error {
	return b.onWindowThread(w, func() error {
		procShowWindow.Call(uintptr(w), swShowNoActivate)
		return nil
	})
}

func (b *win32Backend) Focus(w WindowHandle) error {
	return b.onWindowThread(w, func() error {
		if ret, _, _ := procSetForegroundWindow.Call(uintptr(w)); ret == 0 {
			return errors.New("SetForegroundWindow refused the request")
		}
		if ret, _, err := procSetFocus.Call(uintptr(w)); ret == 0 && err != syscall.Errno(0) {
			return err
		}
		return nil
	})
}

func (b *win32Backend) RegisterHotKey(w WindowHandle, id int32, mods Modifier, key VKey) error {
	return b.onWindowThread(w, func() error {
		ret, _, err := procRegisterHotKey.Call(uintptr(w), uintptr(id), uintptr(mods), uintptr(key))
		if ret == 0 {
			return callErr("RegisterHotKey", err)
		}
		b.mu.Lock()
		if h := b.hooks[w]; h != nil {
			h.hotkeys[id] = struct{}{}
		}
		b.mu.Unlock()
		return nil
	})
}

// UnregisterHotKey treats a hotkey that was already released together with
// its window as success.
func (b *win32Backend) UnregisterHotKey(w WindowHandle, id int32) error {
	b.mu.RLock()
	h := b.hooks[w]
	owned := false
	if h != nil {
		_, owned = h.hotkeys[id]
	}
	b.mu.RUnlock()
	if !owned {
		return nil
	}

	return b.onWindowThread(w, func() error {
		ret, _, err := procUnregisterHotKey.Call(uintptr(w), uintptr(id))
		if ret == 0 {
			return callErr("UnregisterHotKey", err)
		}
		b.mu.Lock()
		if h := b.hooks[w]; h != nil {
			delete(h.hotkeys, id)
		}
		b.mu.Unlock()
		return nil
	})
}

func (b *win32Backend) Watch(w WindowHandle, events WindowEvents) error {
	if !windows.IsWindow(windows.HWND(w)) {
		return ErrInvalidWindow
	}
	if err := b.hook(w); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.hooks[w]
	if h == nil {
		return ErrInvalidWindow
	}
	h.events = events
	return nil
}

// onWindowThread runs fn inside w's window procedure and returns its error.
func (b *win32Backend) onWindowThread(w WindowHandle, fn func() error) error {
	if !windows.IsWindow(windows.HWND(w)) {
		return ErrInvalidWindow
	}
	if err := b.hook(w); err != nil {
		return err
	}

	done := make(chan error, 1)
	b.mu.Lock()
	b.nextCall++
	token := b.nextCall
	b.pending[token] = func() { done <- fn() }
	b.mu.Unlock()

	procSendMessageW.Call(uintptr(w), wmInvoke, token, 0)

	select {
	case err := <-done:
		return err
	default:
		b.mu.Lock()
		delete(b.pending, token)
		b.mu.Unlock()
		return errors.New("window did not process the request")
	}
}

// hook subclasses w once. SetWindowLongPtrW may replace the window
// procedure from any thread of the owning process.
func (b *win32Backend) hook(w WindowHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.hooks[w]; ok {
		return nil
	}
	prev, err := getWindowLongPtr(w, gwlpWndProc)
	if err != nil {
		return err
	}
	if prev == 0 {
		return errors.New("window procedure lookup failed")
	}

	// Register before swapping so the first subclassed message finds its hook.
	b.hooks[w] = &windowHook{prevProc: prev, hotkeys: make(map[int32]struct{})}
	if _, err := setWindowLongPtr(w, gwlpWndProc, wndProcCallback); err != nil {
		delete(b.hooks, w)
		return err
	}
	return nil
}

func (b *win32Backend) wndProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	w := WindowHandle(hwnd)

	b.mu.RLock()
	h := b.hooks[w]
	var events WindowEvents
	ownsHotkey := false
	if h != nil {
		events = h.events
		_, ownsHotkey = h.hotkeys[int32(wParam)]
	}
	b.mu.RUnlock()

	if h == nil {
		ret, _, _ := procDefWindowProcW.Call(hwnd, msg, wParam, lParam)
		return ret
	}

	switch msg {
	case wmInvoke:
		b.mu.Lock()
		fn := b.pending[wParam]
		delete(b.pending, wParam)
		b.mu.Unlock()
		if fn != nil {
			fn()
		}
		return 0

	case wmHotkey:
		if ownsHotkey {
			// Never run the toggle on the UI thread: it sends messages back here.
			if events.OnHotkey != nil {
				go events.OnHotkey(int32(wParam))
			}
			return 0
		}

	case wmDestroy:
		b.unhook(w, h)
		if events.OnDestroy != nil {
			go events.OnDestroy()
		}
	}

	ret, _, _ := procCallWindowProcW.Call(h.prevProc, hwnd, msg, wParam, lParam)
	return ret
}

// unhook runs on the UI thread during WM_DESTROY: it releases hotkeys still
// bound to the window and restores the original window procedure.
func (b *win32Backend) unhook(w WindowHandle, h *windowHook) {
	b.mu.Lock()
	ids := make([]int32, 0, len(h.hotkeys))
	for id := range h.hotkeys {
		ids = append(ids, id)
	}
	h.hotkeys = make(map[int32]struct{})
	delete(b.hooks, w)
	b.mu.Unlock()

	for _, id := range ids {
		procUnregisterHotKey.Call(uintptr(w), uintptr(id))
	}
	setWindowLongPtr(w, gwlpWndProc, h.prevProc)
}

// getWindowLongPtr distinguishes a stored zero from a failure through the
// thread's last-error value, so both calls must run on one OS thread.
func getWindowLongPtr(w WindowHandle, index int32) (uintptr, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	procSetLastError.Call(0)
	ret, _, err := procGetWindowLongPtrW.Call(uintptr(w), uintptr(index))
	if ret == 0 && err != syscall.Errno(0) {
		return 0, err
	}
	return ret, nil
}

func setWindowLongPtr(w WindowHandle, index int32, value uintptr) (uintptr, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	procSetLastError.Call(0)
	prev, _, err := procSetWindowLongPtrW.Call(uintptr(w), uintptr(index), value)
	if prev == 0 && err != syscall.Errno(0) {
		return 0, err
	}
	return prev, nil
}

// callErr keeps the OS error when there is one.
func callErr(name string, err error) error {
	if err == nil || err == syscall.Errno(0) {
		return errors.New(name + " failed")
	}
	return err
}
