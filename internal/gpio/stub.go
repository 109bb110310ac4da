//go:build !linux

package gpio

import (
	"errors"
	"time"
)

// RealButtons is not available on non-Linux platforms.
type RealButtons struct{}

// NewRealButtons returns an error on non-Linux platforms.
func NewRealButtons(chip string, pinMode, pinPower int, debounce time.Duration) (*RealButtons, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Edges is not implemented on non-Linux platforms.
func (r *RealButtons) Edges() <-chan Button {
	return nil
}

// Dropped is not implemented on non-Linux platforms.
func (r *RealButtons) Dropped() uint32 {
	return 0
}

// Close is not implemented on non-Linux platforms.
func (r *RealButtons) Close() error {
	return nil
}
