package overlay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stealth-overlay/internal/logger"
)

func stubPlatformBackend(t *testing.T, fn func() (Backend, error)) {
	t.Helper()
	orig := NewPlatformBackendFunc
	NewPlatformBackendFunc = fn
	t.Cleanup(func() { NewPlatformBackendFunc = orig })
}

func TestNewController_Unsupported(t *testing.T) {
	stubPlatformBackend(t, func() (Backend, error) { return nil, ErrUnsupported })
	log, logs := logger.TestLogger()

	ctrl, err := NewController(Options{Levels: DefaultLevels}, log)

	require.NoError(t, err)
	assert.IsType(t, Noop{}, ctrl)
	assert.Equal(t, 1, logs.FilterMessage("stealth overlay unavailable, commands are no-ops").Len())

	assert.NoError(t, ctrl.Setup(0))
	assert.NoError(t, ctrl.ToggleOverlay())
	assert.NoError(t, ctrl.EnableOverlay())
	assert.NoError(t, ctrl.DisableOverlay())
	assert.NoError(t, ctrl.Tune(Tuning{}))
	ctrl.WindowDestroyed()
	ctrl.OnStateChange(func(State) {})
	assert.Equal(t, Hidden, ctrl.State())
}

func TestNewController_BackendError(t *testing.T) {
	boom := errors.New("user32 missing")
	stubPlatformBackend(t, func() (Backend, error) { return nil, boom })

	_, err := NewController(Options{Levels: DefaultLevels}, nil)

	assert.ErrorIs(t, err, boom)
}

func TestNewController_Service(t *testing.T) {
	backend := newFakeBackend()
	stubPlatformBackend(t, func() (Backend, error) { return backend, nil })

	ctrl, err := NewController(Options{Levels: DefaultLevels, HotkeyEnabled: true}, nil)
	require.NoError(t, err)
	svc, ok := ctrl.(*Service)
	require.True(t, ok)

	require.NoError(t, svc.Setup(testWindow))
	assert.True(t, svc.HotkeyRegistered())
}

func TestOsCallError(t *testing.T) {
	assert.NoError(t, osCall("ctx", nil))

	err := osCall("SetWindowPos failed", errFake)
	assert.EqualError(t, err, "SetWindowPos failed: fake os failure")
	assert.ErrorIs(t, err, ErrOsCallFailure)
	assert.ErrorIs(t, err, errFake)
	assert.Same(t, err, osCall("SetWindowPos failed", err), "same context is not wrapped twice")

	outer := osCall("outer", err)
	var osErr *OsCallError
	require.True(t, errors.As(outer, &osErr))
	assert.Equal(t, "outer", osErr.Context)

	assert.Equal(t, "bare", (&OsCallError{Context: "bare"}).Error())
}

func TestStateAndAttributeNames(t *testing.T) {
	assert.Equal(t, "hidden", Hidden.String())
	assert.Equal(t, "dimmed", Dimmed.String())
	assert.Equal(t, "shown", Shown.String())
	assert.Equal(t, "state(7)", State(7).String())
	assert.Equal(t, "DWMWA_CLOAK", DWMCloak.String())
	assert.Equal(t, "DWMWA(99)", DWMAttribute(99).String())
}
