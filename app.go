package main

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"stealth-overlay/internal/config"
	"stealth-overlay/internal/logger"
	"stealth-overlay/internal/overlay"
)

// stateEvent carries the overlay state name to the frontend.
const stateEvent = "overlay:state"

var (
	runtimeEventsEmitFn    = runtime.EventsEmit
	resolveOverlayWindowFn = resolveOverlayWindow
	newConfigWatcherFn     = config.NewWatcher
)

// App struct
type App struct {
	log     *zap.Logger
	config  *config.Service
	overlay overlay.Controller

	mu      sync.RWMutex
	ctx     context.Context
	watcher *config.Watcher
}

// NewApp creates a new App application struct
func NewApp(configSvc *config.Service, controller overlay.Controller, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		log:     log,
		config:  configSvc,
		overlay: controller,
	}
}

// OnStartup is called when the app starts up
func (a *App) OnStartup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = logger.ContextWithLogger(ctx, a.log)
	a.mu.Unlock()

	a.overlay.OnStateChange(a.emitState)

	if a.config == nil {
		return
	}
	watcher, err := newConfigWatcherFn(a.config, a.log.Named("config"), a.applyConfig)
	if err != nil {
		a.log.Warn("config hot reload disabled", zap.Error(err))
		return
	}
	a.mu.Lock()
	a.watcher = watcher
	a.mu.Unlock()
}

// OnDomReady is the window-ready hook: the native window exists and can be
// made stealthy. A window that fails setup stays detached, so commands
// report ErrNoWindow instead of showing an unprotected window.
func (a *App) OnDomReady(ctx context.Context) {
	log := a.logger()
	title := ""
	if a.config != nil {
		title = a.config.Get().WindowTitle
	}
	w := resolveOverlayWindowFn(title)
	if err := a.overlay.Setup(w); err != nil {
		log.Error("overlay setup failed",
			zap.String("title", title),
			zap.Uintptr("hwnd", uintptr(w)),
			zap.Error(err))
		return
	}
	log.Info("overlay ready",
		zap.Uintptr("hwnd", uintptr(w)),
		zap.Stringer("state", a.overlay.State()))
}

// OnShutdown is the window-destroyed hook.
func (a *App) OnShutdown(ctx context.Context) {
	log := a.logger()
	a.overlay.WindowDestroyed()

	a.mu.Lock()
	watcher := a.watcher
	a.watcher = nil
	a.mu.Unlock()
	if watcher != nil {
		if err := watcher.Close(); err != nil {
			log.Warn("config watcher close failed", zap.Error(err))
		}
	}
}

// ToggleOverlay flips the overlay between shown and dimmed
func (a *App) ToggleOverlay() error {
	return a.logCommand("toggle", a.overlay.ToggleOverlay())
}

// EnableOverlay turns stealth on and dims the overlay
func (a *App) EnableOverlay() error {
	return a.logCommand("enable", a.overlay.EnableOverlay())
}

// DisableOverlay turns stealth off and shows the overlay
func (a *App) DisableOverlay() error {
	return a.logCommand("disable", a.overlay.DisableOverlay())
}

// OverlayState returns "hidden", "dimmed" or "shown"
func (a *App) OverlayState() string {
	return a.overlay.State().String()
}

func (a *App) logCommand(name string, err error) error {
	if err != nil {
		a.logger().Warn("overlay command failed", zap.String("command", name), zap.Error(err))
	}
	return err
}

// logger returns the logger carried by the runtime context, or the one the
// App was built with before startup.
func (a *App) logger() *zap.Logger {
	if ctx := a.runtimeContext(); ctx != nil {
		return logger.FromContext(ctx)
	}
	return a.log
}

func (a *App) runtimeContext() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ctx
}

func (a *App) emitState(state overlay.State) {
	ctx := a.runtimeContext()
	if ctx == nil {
		a.logger().Debug("state event dropped before startup", zap.Stringer("state", state))
		return
	}
	runtimeEventsEmitFn(ctx, stateEvent, state.String())
}

// applyConfig pushes live-tunable settings into the overlay. The hotkey
// binding and window title are read once at startup.
func (a *App) applyConfig(prev, next config.Config) {
	log := a.logger()
	if err := a.overlay.Tune(next.Tuning()); err != nil {
		log.Warn("overlay tuning rejected", zap.Error(err))
	}
	if prev.Hotkey != next.Hotkey {
		log.Info("hotkey change takes effect after restart",
			zap.String("binding", next.Hotkey.Binding),
			zap.Bool("enabled", next.Hotkey.Enabled))
	}
	if prev.WindowTitle != next.WindowTitle {
		log.Info("window title change takes effect after restart",
			zap.String("title", next.WindowTitle))
	}
}
