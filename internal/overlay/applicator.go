package overlay

import (
	"sync"

	"go.uber.org/zap"
)

// Hints configures what the Applicator asks of the OS.
type Hints struct {
	// InitialAlpha is set on every application so the window starts invisible.
	InitialAlpha Alpha
	// ExcludeFromPeek keeps the window out of taskbar thumbnails and Aero Peek.
	ExcludeFromPeek bool
	// LegacyCloak cloaks the window through DWM. Cloaking also hides the
	// window from the local user on current Windows builds, so it is off by default.
	LegacyCloak bool
}

// Applicator configures a window's presentation flags. Applying twice
// yields the same end state as applying once.
type Applicator struct {
	backend Backend
	log     *zap.Logger

	mu    sync.RWMutex
	hints Hints
}

// NewApplicator creates an Applicator.
func NewApplicator(backend Backend, hints Hints, log *zap.Logger) *Applicator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Applicator{backend: backend, hints: hints, log: log}
}

// SetHints replaces the hints used by later calls to ApplyOverlayHints.
// Compositor hints that changed are pushed to w right away unless w is 0.
func (a *Applicator) SetHints(w WindowHandle, h Hints) {
	a.mu.Lock()
	prev := a.hints
	a.hints = h
	a.mu.Unlock()

	if w == 0 {
		return
	}
	if prev.LegacyCloak != h.LegacyCloak {
		a.bestEffortDWM(w, DWMCloak, h.LegacyCloak)
	}
	if prev.ExcludeFromPeek != h.ExcludeFromPeek {
		a.bestEffortDWM(w, DWMExcludedFromPeek, h.ExcludeFromPeek)
	}
}

// Hints returns the current hints.
func (a *Applicator) Hints() Hints {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hints
}

// ApplyOverlayHints makes w layered, input-transparent, a tool window and
// topmost, then excludes it from capture. The first failing OS call aborts
// the sequence; earlier steps are not rolled back. Peek and cloak hints are
// best-effort and only logged on failure.
func (a *Applicator) ApplyOverlayHints(w WindowHandle) error {
	hints := a.Hints()

	current, err := a.backend.ExStyle(w)
	if err != nil {
		return osCall("GetWindowLongPtrW failed", err)
	}
	desired := (current | stealthStyle) &^ ExAppWindow
	if desired != current {
		if err := a.backend.SetExStyle(w, desired); err != nil {
			return osCall("SetWindowLongPtrW failed", err)
		}
	}

	if err := a.backend.SetTopmost(w); err != nil {
		return osCall("SetWindowPos failed", err)
	}

	if err := a.backend.SetAlpha(w, hints.InitialAlpha); err != nil {
		return osCall("SetLayeredWindowAttributes failed", err)
	}

	if err := a.backend.ExcludeFromCapture(w); err != nil {
		return osCall("SetWindowDisplayAffinity rejected the request", err)
	}

	if hints.LegacyCloak {
		a.bestEffortDWM(w, DWMCloak, true)
	}
	if hints.ExcludeFromPeek {
		a.bestEffortDWM(w, DWMExcludedFromPeek, true)
	}

	a.log.Debug("overlay hints applied",
		zap.Uintptr("hwnd", uintptr(w)),
		zap.Uint32("exstyle", uint32(desired)),
		zap.Uint8("alpha", uint8(hints.InitialAlpha)))
	return nil
}

func (a *Applicator) bestEffortDWM(w WindowHandle, attr DWMAttribute, on bool) {
	if err := a.backend.SetDWMAttribute(w, attr, on); err != nil {
		a.log.Warn("optional compositor hint rejected",
			zap.Stringer("attribute", attr),
			zap.Bool("on", on),
			zap.Uintptr("hwnd", uintptr(w)),
			zap.Error(err))
	}
}
