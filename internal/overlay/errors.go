package overlay

import "errors"

// ErrOsCallFailure is the single error kind reported by this package.
// Match it with errors.Is; use errors.As with *OsCallError for the context.
var ErrOsCallFailure = errors.New("os call failed")

// ErrNoWindow is returned by commands issued before Setup or after the
// window was destroyed.
var ErrNoWindow = errors.New("overlay window is not attached")

// OsCallError reports which OS primitive failed.
type OsCallError struct {
	Context string // static, call-site specific
	Err     error
}

func (e *OsCallError) Error() string {
	if e.Err == nil {
		return e.Context
	}
	return e.Context + ": " + e.Err.Error()
}

func (e *OsCallError) Unwrap() error { return e.Err }

func (e *OsCallError) Is(target error) bool { return target == ErrOsCallFailure }

// osCall wraps a backend failure with its context. nil stays nil.
func osCall(context string, err error) error {
	if err == nil {
		return nil
	}
	var already *OsCallError
	if errors.As(err, &already) && already.Context == context {
		return err
	}
	return &OsCallError{Context: context, Err: err}
}
