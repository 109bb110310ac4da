// Package gpio delivers button presses with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Button identifies one of the two front-panel buttons.
type Button int

const (
	// ButtonMode toggles between the date and time views.
	ButtonMode Button = iota + 1
	// ButtonPower toggles the display on and off.
	ButtonPower
)

func (b Button) String() string {
	switch b {
	case ButtonMode:
		return "MODE"
	case ButtonPower:
		return "POWER"
	default:
		return "UNKNOWN"
	}
}

// Buttons reports falling edges on the button pins.
type Buttons interface {
	// Edges delivers one value per debounced falling edge.
	Edges() <-chan Button

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinMode  = 17
	DefaultPinPower = 27
)
