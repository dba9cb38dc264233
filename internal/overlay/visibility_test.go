package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stealth-overlay/internal/logger"
)

var testLevels = Levels{Hidden: 1, Dimmed: 5, Shown: 230}

func TestVisibility_StartsHidden(t *testing.T) {
	v := NewVisibility(newFakeBackend(), testLevels, nil)
	assert.Equal(t, Hidden, v.State())
	assert.Equal(t, testLevels, v.Levels())
}

func TestVisibility_ShowAndHide(t *testing.T) {
	backend := newFakeBackend()
	v := NewVisibility(backend, testLevels, nil)

	require.NoError(t, v.Show(testWindow))
	assert.Equal(t, Shown, v.State())
	assert.Equal(t, testLevels.Shown, backend.currentAlpha())
	assert.Equal(t, 1, backend.count("Show"))
	assert.Zero(t, backend.count("Focus"), "Show never asks for focus")

	require.NoError(t, v.Hide(testWindow))
	assert.Equal(t, Dimmed, v.State())
	assert.Equal(t, testLevels.Dimmed, backend.currentAlpha())
	assert.Equal(t, 1, backend.count("Show"), "Hide keeps the window on screen")
	assert.Zero(t, backend.count("Focus"), "Hide never changes focus")
}

func TestVisibility_Reset(t *testing.T) {
	backend := newFakeBackend()
	v := NewVisibility(backend, testLevels, nil)
	require.NoError(t, v.Show(testWindow))

	v.Reset()

	assert.Equal(t, Hidden, v.State())
	require.NoError(t, v.Toggle(testWindow))
	assert.Equal(t, Shown, v.State())
}

func TestVisibility_ToggleFromHiddenShowsAndFocuses(t *testing.T) {
	backend := newFakeBackend()
	v := NewVisibility(backend, testLevels, nil)

	require.NoError(t, v.Toggle(testWindow))

	assert.Equal(t, Shown, v.State())
	assert.Equal(t, testLevels.Shown, backend.currentAlpha())
	assert.Equal(t, 1, backend.count("Show"))
	assert.Equal(t, 1, backend.count("Focus"))
}

func TestVisibility_ToggleFromShownDimsWithoutFocus(t *testing.T) {
	backend := newFakeBackend()
	v := NewVisibility(backend, testLevels, nil)
	require.NoError(t, v.Show(testWindow))

	require.NoError(t, v.Toggle(testWindow))

	assert.Equal(t, Dimmed, v.State())
	assert.Equal(t, testLevels.Dimmed, backend.currentAlpha())
	assert.Zero(t, backend.count("Focus"))
}

func TestVisibility_ToggleTwiceRestoresState(t *testing.T) {
	for _, start := range []State{Dimmed, Shown} {
		t.Run(start.String(), func(t *testing.T) {
			backend := newFakeBackend()
			v := NewVisibility(backend, testLevels, nil)
			if start == Shown {
				require.NoError(t, v.Show(testWindow))
			} else {
				require.NoError(t, v.Hide(testWindow))
			}
			alpha := backend.currentAlpha()

			require.NoError(t, v.Toggle(testWindow))
			require.NoError(t, v.Toggle(testWindow))

			assert.Equal(t, start, v.State())
			assert.Equal(t, alpha, backend.currentAlpha())
		})
	}
}

func TestVisibility_FocusRefusalIsNotAnError(t *testing.T) {
	log, logs := logger.TestLogger()
	backend := newFakeBackend()
	backend.failOn("Focus", errFake)
	v := NewVisibility(backend, testLevels, log)

	require.NoError(t, v.Toggle(testWindow))
	assert.Equal(t, Shown, v.State())
	assert.Equal(t, 1, logs.FilterMessage("overlay focus request refused").Len())
}

func TestVisibility_AlphaFailureKeepsState(t *testing.T) {
	backend := newFakeBackend()
	v := NewVisibility(backend, testLevels, nil)
	require.NoError(t, v.Show(testWindow))

	backend.failOn("SetAlpha", errFake)
	err := v.Toggle(testWindow)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOsCallFailure)
	assert.Contains(t, err.Error(), "SetLayeredWindowAttributes failed")
	assert.Equal(t, Shown, v.State())
}

func TestVisibility_ShowWindowFailureIsReported(t *testing.T) {
	backend := newFakeBackend()
	backend.failOn("Show", errFake)
	v := NewVisibility(backend, testLevels, nil)

	err := v.Show(testWindow)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOsCallFailure)
	assert.Contains(t, err.Error(), "ShowWindow failed")
	assert.Equal(t, Shown, v.State(), "the alpha already took effect")
}

func TestVisibility_ShownAlwaysBrighterThanDimmed(t *testing.T) {
	backend := newFakeBackend()
	v := NewVisibility(backend, DefaultLevels, nil)

	require.NoError(t, v.Show(testWindow))
	shown := backend.currentAlpha()
	require.NoError(t, v.Hide(testWindow))
	dimmed := backend.currentAlpha()

	assert.Greater(t, shown, dimmed)
	assert.GreaterOrEqual(t, dimmed, DefaultLevels.Hidden)
}

func TestVisibility_SetLevelsReappliesCurrentAlpha(t *testing.T) {
	backend := newFakeBackend()
	v := NewVisibility(backend, testLevels, nil)

	next := Levels{Hidden: 1, Dimmed: 10, Shown: 200}
	require.NoError(t, v.SetLevels(testWindow, next))
	assert.Zero(t, backend.count("SetAlpha"), "hidden overlay keeps its alpha")

	require.NoError(t, v.Show(testWindow))
	next.Shown = 180
	require.NoError(t, v.SetLevels(testWindow, next))
	assert.Equal(t, Alpha(180), backend.currentAlpha())

	require.NoError(t, v.Hide(testWindow))
	next.Dimmed = 20
	require.NoError(t, v.SetLevels(testWindow, next))
	assert.Equal(t, Alpha(20), backend.currentAlpha())
	assert.Equal(t, next, v.Levels())
}

func TestLevels_Validate(t *testing.T) {
	tests := []struct {
		name    string
		levels  Levels
		wantErr bool
	}{
		{name: "defaults", levels: DefaultLevels},
		{name: "distinct", levels: Levels{Hidden: 1, Dimmed: 30, Shown: 255}},
		{name: "zero hidden", levels: Levels{Hidden: 0, Dimmed: 1, Shown: 230}, wantErr: true},
		{name: "hidden above dimmed", levels: Levels{Hidden: 10, Dimmed: 5, Shown: 230}, wantErr: true},
		{name: "dimmed equals shown", levels: Levels{Hidden: 1, Dimmed: 230, Shown: 230}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.levels.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
