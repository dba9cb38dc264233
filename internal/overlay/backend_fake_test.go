package overlay

import (
	"errors"
	"sync"
)

var errFake = errors.New("fake os failure")

type hotkeyReg struct {
	w    WindowHandle
	mods Modifier
	key  VKey
}

// fakeBackend records every primitive it receives. Failures are injected
// per primitive name.
type fakeBackend struct {
	mu sync.Mutex

	calls  map[string]int
	order  []string
	fail   map[string]error
	style  ExStyle
	alpha  Alpha
	alphas []Alpha
	dwm    map[DWMAttribute]bool
	shown  bool

	hotkeys map[int32]hotkeyReg
	events  map[WindowHandle]WindowEvents
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:   map[string]int{},
		fail:    map[string]error{},
		dwm:     map[DWMAttribute]bool{},
		hotkeys: map[int32]hotkeyReg{},
		events:  map[WindowHandle]WindowEvents{},
		style:   ExAppWindow,
	}
}

var _ Backend = (*fakeBackend)(nil)

func (f *fakeBackend) failOn(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, name)
		return
	}
	f.fail[name] = err
}

func (f *fakeBackend) record(name string) error {
	f.calls[name]++
	f.order = append(f.order, name)
	return f.fail[name]
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) currentAlpha() Alpha {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alpha
}

func (f *fakeBackend) currentStyle() ExStyle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.style
}

func (f *fakeBackend) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

func (f *fakeBackend) registeredHotkeys() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hotkeys)
}

func (f *fakeBackend) watcher(w WindowHandle) (WindowEvents, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[w]
	return ev, ok
}

func (f *fakeBackend) ExStyle(w WindowHandle) (ExStyle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ExStyle"); err != nil {
		return 0, err
	}
	return f.style, nil
}

func (f *fakeBackend) SetExStyle(w WindowHandle, style ExStyle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetExStyle"); err != nil {
		return err
	}
	f.style = style
	return nil
}

func (f *fakeBackend) SetTopmost(w WindowHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("SetTopmost")
}

func (f *fakeBackend) SetAlpha(w WindowHandle, alpha Alpha) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetAlpha"); err != nil {
		return err
	}
	f.alpha = alpha
	f.alphas = append(f.alphas, alpha)
	return nil
}

func (f *fakeBackend) ExcludeFromCapture(w WindowHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("ExcludeFromCapture")
}

func (f *fakeBackend) SetDWMAttribute(w WindowHandle, attr DWMAttribute, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetDWMAttribute:" + attr.String()); err != nil {
		return err
	}
	f.dwm[attr] = on
	return nil
}

func (f *fakeBackend) Show(w WindowHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Show"); err != nil {
		return err
	}
	f.shown = true
	return nil
}

func (f *fakeBackend) Focus(w WindowHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("Focus")
}

func (f *fakeBackend) RegisterHotKey(w WindowHandle, id int32, mods Modifier, key VKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RegisterHotKey"); err != nil {
		return err
	}
	if _, taken := f.hotkeys[id]; taken {
		return errors.New("hotkey already registered")
	}
	f.hotkeys[id] = hotkeyReg{w: w, mods: mods, key: key}
	return nil
}

func (f *fakeBackend) UnregisterHotKey(w WindowHandle, id int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UnregisterHotKey"); err != nil {
		return err
	}
	delete(f.hotkeys, id)
	return nil
}

func (f *fakeBackend) Watch(w WindowHandle, events WindowEvents) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Watch"); err != nil {
		return err
	}
	f.events[w] = events
	return nil
}
