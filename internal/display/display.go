// Package display drives the LED digit display. The real implementation is
// a MAX7219 on an SPI bus; the fake records what would have been shown.
package display

import "github.com/sweeney/ledclock/internal/calendar"

// Display renders the clock.
type Display interface {
	// ShowTime renders hh-mm-ss.
	ShowTime(t calendar.Time) error
	// ShowDate renders dd.mm.yyyy.
	ShowDate(d calendar.Date) error
	// SetIntensity sets brightness 0-15. Higher values are masked.
	SetIntensity(level uint8) error
	// On leaves shutdown mode.
	On() error
	// Off enters shutdown mode, blanking every digit.
	Off() error
}

// MaxIntensity is the brightest level the display accepts.
const MaxIntensity = 15
