//go:build !windows

package overlay

// NewPlatformBackend reports ErrUnsupported outside Windows.
func NewPlatformBackend() (Backend, error) {
	return nil, ErrUnsupported
}
