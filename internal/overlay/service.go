package overlay

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Options configures a Service.
type Options struct {
	Levels          Levels
	ExcludeFromPeek bool
	LegacyCloak     bool
	// Binding defaults to DefaultBinding when zero.
	Binding       Binding
	HotkeyEnabled bool
	// PreShow shows the overlay as soon as the window is ready.
	PreShow bool
}

// Service manages the overlay window. It owns the only mutable state of the
// package: the tracked window, the visibility state and the hotkey flag.
type Service struct {
	log        *zap.Logger
	backend    Backend
	applicator *Applicator
	visibility *Visibility
	hotkey     *Registrar

	hotkeyEnabled bool
	preShow       bool

	mu        sync.RWMutex
	window    WindowHandle
	listeners []func(State)
}

var _ Controller = (*Service)(nil)

// New creates a new overlay service
func New(backend Backend, opts Options, log *zap.Logger) (*Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("overlay backend is required")
	}
	if err := opts.Levels.Validate(); err != nil {
		return nil, fmt.Errorf("invalid alpha levels: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	binding := opts.Binding
	if binding.Key() == 0 {
		binding = MustParseBinding(DefaultBinding)
	}
	if err := binding.Validate(); err != nil {
		return nil, fmt.Errorf("invalid toggle hotkey: %w", err)
	}

	hints := Hints{
		InitialAlpha:    opts.Levels.Hidden,
		ExcludeFromPeek: opts.ExcludeFromPeek,
		LegacyCloak:     opts.LegacyCloak,
	}
	return &Service{
		log:           log,
		backend:       backend,
		applicator:    NewApplicator(backend, hints, log),
		visibility:    NewVisibility(backend, opts.Levels, log),
		hotkey:        NewRegistrar(backend, binding, log),
		hotkeyEnabled: opts.HotkeyEnabled,
		preShow:       opts.PreShow,
	}, nil
}

// Window returns the tracked window, or 0 when none is attached.
func (s *Service) Window() WindowHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window
}

// State returns the current overlay state.
func (s *Service) State() State {
	return s.visibility.State()
}

// HotkeyRegistered reports whether the toggle hotkey is bound.
func (s *Service) HotkeyRegistered() bool {
	return s.hotkey.Registered()
}

// Binding returns the toggle hotkey combination.
func (s *Service) Binding() Binding {
	return s.hotkey.Binding()
}

// OnStateChange registers fn to run after each command.
func (s *Service) OnStateChange(fn func(State)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Setup attaches the service to w: it applies the overlay hints, starts
// listening for hotkey and destruction messages, registers the hotkey when
// enabled and pre-shows the overlay when configured to. The window is only
// tracked once all of that succeeded; on failure commands keep returning
// ErrNoWindow.
func (s *Service) Setup(w WindowHandle) error {
	if w == 0 {
		return osCall("overlay window lookup failed", ErrInvalidWindow)
	}

	s.mu.Lock()
	prev := s.window
	s.window = 0
	s.mu.Unlock()
	if prev != 0 && prev != w {
		s.hotkey.UnregisterToggleHotkey(prev)
	}

	if err := s.attach(w); err != nil {
		s.hotkey.UnregisterToggleHotkey(w)
		s.log.Warn("overlay window left detached",
			zap.Uintptr("hwnd", uintptr(w)),
			zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.window = w
	s.mu.Unlock()

	if s.preShow {
		if err := s.DisableOverlay(); err != nil {
			s.log.Warn("overlay pre-show failed", zap.Error(err))
		}
	}
	return nil
}

func (s *Service) attach(w WindowHandle) error {
	if err := s.applicator.ApplyOverlayHints(w); err != nil {
		return err
	}
	// The hints leave the window at the hidden alpha.
	s.visibility.Reset()

	events := WindowEvents{
		OnHotkey:  s.handleHotkey,
		OnDestroy: s.WindowDestroyed,
	}
	if err := s.backend.Watch(w, events); err != nil {
		return osCall("window message hook failed", err)
	}

	if s.hotkeyEnabled {
		if err := s.hotkey.RegisterToggleHotkey(w); err != nil {
			return err
		}
	}
	return nil
}

// ToggleOverlay flips the overlay between shown and dimmed.
func (s *Service) ToggleOverlay() error {
	return s.command(s.visibility.Toggle)
}

// EnableOverlay turns stealth on: the overlay ends up dimmed.
func (s *Service) EnableOverlay() error {
	return s.command(s.visibility.Hide)
}

// DisableOverlay turns stealth off: the overlay ends up shown.
func (s *Service) DisableOverlay() error {
	return s.command(s.visibility.Show)
}

// RegisterToggleHotkey binds the toggle hotkey to the tracked window.
func (s *Service) RegisterToggleHotkey() error {
	w := s.Window()
	if w == 0 {
		return ErrNoWindow
	}
	return s.hotkey.RegisterToggleHotkey(w)
}

// WindowDestroyed releases the hotkey and detaches the window. Repeated
// deliveries are no-ops.
func (s *Service) WindowDestroyed() {
	s.mu.Lock()
	w := s.window
	s.window = 0
	s.mu.Unlock()

	s.hotkey.UnregisterToggleHotkey(w)
	if w != 0 {
		s.log.Info("overlay window detached", zap.Uintptr("hwnd", uintptr(w)))
	}
}

// Tune swaps alpha levels and compositor hints on the live overlay.
func (s *Service) Tune(t Tuning) error {
	if err := t.Levels.Validate(); err != nil {
		return fmt.Errorf("invalid alpha levels: %w", err)
	}
	w := s.Window()
	s.applicator.SetHints(w, Hints{
		InitialAlpha:    t.Levels.Hidden,
		ExcludeFromPeek: t.ExcludeFromPeek,
		LegacyCloak:     t.LegacyCloak,
	})
	return s.visibility.SetLevels(w, t.Levels)
}

func (s *Service) command(op func(WindowHandle) error) error {
	w := s.Window()
	if w == 0 {
		return ErrNoWindow
	}
	before := s.visibility.State()
	err := op(w)
	if after := s.visibility.State(); err == nil || after != before {
		s.notify(after)
	}
	return err
}

func (s *Service) notify(state State) {
	s.mu.RLock()
	listeners := make([]func(State), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(state)
	}
}

func (s *Service) handleHotkey(id int32) {
	if id != ToggleHotkeyID {
		return
	}
	if err := s.ToggleOverlay(); err != nil {
		s.log.Warn("hotkey toggle failed", zap.Error(err))
	}
}
