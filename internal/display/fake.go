package display

import (
	"fmt"

	"github.com/sweeney/ledclock/internal/calendar"
)

// FakeDisplay records rendered frames for test assertions.
type FakeDisplay struct {
	// Frames holds one entry per call: "TIME hh-mm-ss", "DATE dd.mm.yyyy",
	// "ON" or "OFF".
	Frames []string

	// Intensities holds every level passed to SetIntensity.
	Intensities []uint8

	// Lit is false after Off and true after On. Starts true.
	Lit bool

	// Err, if set, is returned by every method.
	Err error
}

// NewFakeDisplay creates a lit FakeDisplay.
func NewFakeDisplay() *FakeDisplay {
	return &FakeDisplay{Lit: true}
}

func (f *FakeDisplay) ShowTime(t calendar.Time) error {
	if f.Err != nil {
		return f.Err
	}
	f.Frames = append(f.Frames, "TIME "+t.String())
	return nil
}

func (f *FakeDisplay) ShowDate(d calendar.Date) error {
	if f.Err != nil {
		return f.Err
	}
	f.Frames = append(f.Frames, "DATE "+d.String())
	return nil
}

func (f *FakeDisplay) SetIntensity(level uint8) error {
	if f.Err != nil {
		return f.Err
	}
	if level > MaxIntensity {
		return fmt.Errorf("display: intensity %d out of range", level)
	}
	f.Intensities = append(f.Intensities, level)
	return nil
}

func (f *FakeDisplay) On() error {
	if f.Err != nil {
		return f.Err
	}
	f.Lit = true
	f.Frames = append(f.Frames, "ON")
	return nil
}

func (f *FakeDisplay) Off() error {
	if f.Err != nil {
		return f.Err
	}
	f.Lit = false
	f.Frames = append(f.Frames, "OFF")
	return nil
}

// Last returns the most recent frame, or "" if none.
func (f *FakeDisplay) Last() string {
	if len(f.Frames) == 0 {
		return ""
	}
	return f.Frames[len(f.Frames)-1]
}

// Reset clears recorded frames and intensities.
func (f *FakeDisplay) Reset() {
	f.Frames = nil
	f.Intensities = nil
}
