package overlay

import (
	"sync"

	"go.uber.org/zap"
)

// ToggleHotkeyID identifies the toggle hotkey. Application hotkey IDs must
// stay within 0x0000-0xBFFF.
const ToggleHotkeyID int32 = 0x0C1A

// Registrar owns the single global toggle hotkey.
type Registrar struct {
	backend Backend
	log     *zap.Logger
	binding Binding

	mu         sync.Mutex
	registered bool
}

// NewRegistrar creates a Registrar for binding. Repeat suppression is added
// at registration time.
func NewRegistrar(backend Backend, binding Binding, log *zap.Logger) *Registrar {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registrar{backend: backend, binding: binding, log: log}
}

// Binding returns the registered key combination.
func (r *Registrar) Binding() Binding { return r.binding }

// Registered reports whether the OS binding currently exists.
func (r *Registrar) Registered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registered
}

// RegisterToggleHotkey binds the hotkey to w. It is a no-op when already
// registered.
func (r *Registrar) RegisterToggleHotkey(w WindowHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.registered {
		return nil
	}
	mods := r.binding.Modifiers() | ModNoRepeat
	if err := r.backend.RegisterHotKey(w, ToggleHotkeyID, mods, r.binding.Key()); err != nil {
		return osCall("RegisterHotKey failed", err)
	}
	r.registered = true
	r.log.Info("toggle hotkey registered",
		zap.Stringer("binding", r.binding),
		zap.Uintptr("hwnd", uintptr(w)))
	return nil
}

// UnregisterToggleHotkey releases the hotkey if registered. OS failures are
// logged and dropped: this runs during teardown where nobody can act on them.
func (r *Registrar) UnregisterToggleHotkey(w WindowHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.registered {
		return
	}
	if err := r.backend.UnregisterHotKey(w, ToggleHotkeyID); err != nil {
		r.log.Warn("toggle hotkey unregister failed",
			zap.Stringer("binding", r.binding),
			zap.Uintptr("hwnd", uintptr(w)),
			zap.Error(osCall("UnregisterHotKey failed", err)))
	}
	r.registered = false
}
