package logger

import (
	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
	"go.uber.org/zap"
)

// Wails routes the shell's own log lines into zap.
type Wails struct {
	log *zap.SugaredLogger
}

var _ wailslogger.Logger = (*Wails)(nil)

// NewWails wraps l for options.App.Logger.
func NewWails(l *zap.Logger) *Wails {
	return &Wails{log: l.Named("wails").WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (w *Wails) Print(message string)   { w.log.Info(message) }
func (w *Wails) Trace(message string)   { w.log.Debug(message) }
func (w *Wails) Debug(message string)   { w.log.Debug(message) }
func (w *Wails) Info(message string)    { w.log.Info(message) }
func (w *Wails) Warning(message string) { w.log.Warn(message) }
func (w *Wails) Error(message string)   { w.log.Error(message) }

// Fatal logs without exiting; Wails exits on its own after a fatal error.
func (w *Wails) Fatal(message string) { w.log.Error(message) }

// Level maps a zap level onto the Wails log level.
func Level(l *zap.Logger) wailslogger.LogLevel {
	switch {
	case l.Core().Enabled(zap.DebugLevel):
		return wailslogger.DEBUG
	case l.Core().Enabled(zap.InfoLevel):
		return wailslogger.INFO
	case l.Core().Enabled(zap.WarnLevel):
		return wailslogger.WARNING
	default:
		return wailslogger.ERROR
	}
}
