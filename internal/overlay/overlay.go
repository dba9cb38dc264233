// Package overlay keeps a single desktop window visible to the local user
// while excluding it from screen capture, window switchers and peek previews.
//
// The package is split into three parts that share one Backend:
//   - Applicator sets the window's presentation flags.
//   - Visibility tracks Hidden/Dimmed/Shown and drives the window alpha.
//   - Registrar owns the global toggle hotkey.
//
// Service bundles them behind the Controller capability interface. On
// platforms without a backend NewController returns Noop.
package overlay

import "fmt"

// WindowHandle is an opaque, externally-owned OS window reference.
type WindowHandle uintptr

// State is the overlay's logical visibility.
type State int

const (
	Hidden State = iota
	Dimmed
	Shown
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Dimmed:
		return "dimmed"
	case Shown:
		return "shown"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Alpha is a layered-window opacity: 0 is fully transparent, 255 fully opaque.
type Alpha uint8

// Levels are the alpha values used for each state.
type Levels struct {
	Hidden Alpha // applied with the overlay hints, before anything is shown
	Dimmed Alpha
	Shown  Alpha
}

// DefaultLevels keeps the window technically present but invisible when
// dimmed, and slightly translucent when shown.
var DefaultLevels = Levels{Hidden: 1, Dimmed: 1, Shown: 230}

// Validate enforces 1 <= Hidden <= Dimmed < Shown.
func (l Levels) Validate() error {
	if l.Hidden == 0 {
		return fmt.Errorf("hidden alpha must be at least 1")
	}
	if l.Hidden > l.Dimmed {
		return fmt.Errorf("hidden alpha %d exceeds dimmed alpha %d", l.Hidden, l.Dimmed)
	}
	if l.Dimmed >= l.Shown {
		return fmt.Errorf("dimmed alpha %d must be below shown alpha %d", l.Dimmed, l.Shown)
	}
	return nil
}

// ExStyle is a Win32 extended window style bitmask.
type ExStyle uint32

const (
	ExTopmost     ExStyle = 0x00000008
	ExTransparent ExStyle = 0x00000020
	ExToolWindow  ExStyle = 0x00000080
	ExAppWindow   ExStyle = 0x00040000
	ExLayered     ExStyle = 0x00080000
)

// stealthStyle is added to the window; ExAppWindow is removed.
const stealthStyle = ExLayered | ExTransparent | ExToolWindow | ExTopmost

// DWMAttribute identifies a compositor window attribute.
type DWMAttribute uint32

const (
	DWMExcludedFromPeek DWMAttribute = 12
	DWMCloak            DWMAttribute = 13
)

func (a DWMAttribute) String() string {
	switch a {
	case DWMExcludedFromPeek:
		return "DWMWA_EXCLUDED_FROM_PEEK"
	case DWMCloak:
		return "DWMWA_CLOAK"
	default:
		return fmt.Sprintf("DWMWA(%d)", uint32(a))
	}
}

// Controller is the stealth overlay capability consumed by the host shell.
// Commands operate on the window passed to Setup.
type Controller interface {
	// Setup is the window-ready hook.
	Setup(window WindowHandle) error
	ToggleOverlay() error
	// EnableOverlay turns stealth on, leaving the overlay dimmed.
	EnableOverlay() error
	// DisableOverlay turns stealth off, leaving the overlay shown.
	DisableOverlay() error
	// WindowDestroyed is the window-destroyed hook. Safe to call repeatedly.
	WindowDestroyed()
	State() State
	// Tune replaces alpha levels and optional hints at runtime.
	Tune(t Tuning) error
	// OnStateChange registers fn to run after every successful command.
	OnStateChange(fn func(State))
}

// Tuning holds the values that can change while the overlay is live.
type Tuning struct {
	Levels          Levels
	ExcludeFromPeek bool
	LegacyCloak     bool
}
