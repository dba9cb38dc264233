package overlay

import (
	"errors"

	"go.uber.org/zap"
)

// NewPlatformBackendFunc is a test seam over NewPlatformBackend.
var NewPlatformBackendFunc = NewPlatformBackend

// NewController returns a Service over the platform backend, or Noop where
// the platform has none.
func NewController(opts Options, log *zap.Logger) (Controller, error) {
	if log == nil {
		log = zap.NewNop()
	}
	backend, err := NewPlatformBackendFunc()
	if errors.Is(err, ErrUnsupported) {
		log.Info("stealth overlay unavailable, commands are no-ops", zap.Error(err))
		return Noop{}, nil
	}
	if err != nil {
		return nil, err
	}
	return New(backend, opts, log)
}

// Noop is the Controller for platforms without stealth support.
type Noop struct{}

var _ Controller = Noop{}

func (Noop) Setup(WindowHandle) error { return nil }

func (Noop) ToggleOverlay() error { return nil }

func (Noop) EnableOverlay() error { return nil }

func (Noop) DisableOverlay() error { return nil }

func (Noop) WindowDestroyed() {}

func (Noop) State() State { return Hidden }

func (Noop) Tune(Tuning) error { return nil }

func (Noop) OnStateChange(func(State)) {}
