//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealButtons watches the button pins through the Linux GPIO character
// device. Buttons pull the line low when pressed.
type RealButtons struct {
	lines    *gpiocdev.Lines
	pinMode  int
	pinPower int
	edges    chan Button
	drops    uint32
}

// NewRealButtons requests both pins as inputs with pull-ups and falling-edge
// detection. debounce is applied by the kernel.
func NewRealButtons(chip string, pinMode, pinPower int, debounce time.Duration) (*RealButtons, error) {
	r := &RealButtons{
		pinMode:  pinMode,
		pinPower: pinPower,
		edges:    make(chan Button, 8),
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(r.handleEvent),
	}
	if debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(debounce))
	}

	lines, err := gpiocdev.RequestLines(chip, []int{pinMode, pinPower}, opts...)
	if err != nil {
		return nil, fmt.Errorf("request button pins %d,%d: %w", pinMode, pinPower, err)
	}
	r.lines = lines
	return r, nil
}

// handleEvent runs on the gpiocdev event goroutine and must not block.
// The mode pin is checked first.
func (r *RealButtons) handleEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	var b Button
	switch evt.Offset {
	case r.pinMode:
		b = ButtonMode
	case r.pinPower:
		b = ButtonPower
	default:
		return
	}
	select {
	case r.edges <- b:
	default:
		atomic.AddUint32(&r.drops, 1)
	}
}

// Edges delivers button presses.
func (r *RealButtons) Edges() <-chan Button {
	return r.edges
}

// Dropped returns the number of edges lost because the consumer was behind.
func (r *RealButtons) Dropped() uint32 {
	return atomic.LoadUint32(&r.drops)
}

// Close releases the lines. Reconfiguring to plain input first leaves the
// pins in their boot state.
func (r *RealButtons) Close() error {
	var errs []error
	if r.lines != nil {
		if err := r.lines.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button pins: %w", err))
		}
		if err := r.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pins: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
