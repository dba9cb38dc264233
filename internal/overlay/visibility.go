package overlay

import (
	"sync"

	"go.uber.org/zap"
)

// Visibility is the dim-not-hide controller. Once shown, the window is
// never OS-hidden again: hiding lowers its alpha to the dimmed level. The
// tracked state, not the OS visibility flag, decides what Toggle does, so a
// host that shows or hides the window itself does not confuse it.
type Visibility struct {
	backend Backend
	log     *zap.Logger

	mu     sync.Mutex
	state  State
	levels Levels
}

// NewVisibility creates a controller in the Hidden state.
func NewVisibility(backend Backend, levels Levels, log *zap.Logger) *Visibility {
	if log == nil {
		log = zap.NewNop()
	}
	return &Visibility{backend: backend, levels: levels, log: log, state: Hidden}
}

// State returns the tracked state.
func (v *Visibility) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Levels returns the alpha levels in use.
func (v *Visibility) Levels() Levels {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.levels
}

// SetLevels replaces the alpha levels. When the overlay is shown or dimmed
// the new level is applied to w immediately; w may be 0 to skip that.
func (v *Visibility) SetLevels(w WindowHandle, levels Levels) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.levels = levels
	if w == 0 {
		return nil
	}
	switch v.state {
	case Shown:
		return osCall("SetLayeredWindowAttributes failed", v.backend.SetAlpha(w, levels.Shown))
	case Dimmed:
		return osCall("SetLayeredWindowAttributes failed", v.backend.SetAlpha(w, levels.Dimmed))
	}
	return nil
}

// Reset marks the overlay hidden after the window's alpha was set to the
// hidden level elsewhere.
func (v *Visibility) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.transition(Hidden)
}

// Show raises the alpha to the shown level and displays w without
// activating it.
func (v *Visibility) Show(w WindowHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.showLocked(w)
}

// Hide lowers the alpha to the dimmed level. The window stays on screen.
func (v *Visibility) Hide(w WindowHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hideLocked(w)
}

// Toggle shows a hidden or dimmed overlay and dims a shown one. After
// showing it also asks for foreground and focus; that request is
// best-effort because Windows may refuse foreground changes.
func (v *Visibility) Toggle(w WindowHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == Shown {
		return v.hideLocked(w)
	}
	if err := v.showLocked(w); err != nil {
		return err
	}
	if err := v.backend.Focus(w); err != nil {
		v.log.Warn("overlay focus request refused",
			zap.Uintptr("hwnd", uintptr(w)),
			zap.Error(err))
	}
	return nil
}

// The alpha decides what the user sees, so state follows the alpha call.
// A failing ShowWindow afterwards is still reported to the caller.
func (v *Visibility) showLocked(w WindowHandle) error {
	if err := v.backend.SetAlpha(w, v.levels.Shown); err != nil {
		return osCall("SetLayeredWindowAttributes failed", err)
	}
	v.transition(Shown)
	if err := v.backend.Show(w); err != nil {
		return osCall("ShowWindow failed", err)
	}
	return nil
}

func (v *Visibility) hideLocked(w WindowHandle) error {
	if err := v.backend.SetAlpha(w, v.levels.Dimmed); err != nil {
		return osCall("SetLayeredWindowAttributes failed", err)
	}
	v.transition(Dimmed)
	return nil
}

func (v *Visibility) transition(next State) {
	if v.state != next {
		v.log.Debug("overlay state changed",
			zap.Stringer("from", v.state),
			zap.Stringer("to", next))
	}
	v.state = next
}
