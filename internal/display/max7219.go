package display

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/max7219"

	"github.com/sweeney/ledclock/internal/calendar"
)

// MAX7219 register addresses, pre-shifted into the high byte of a 16-bit
// command word. Digit registers are 1-8.
const (
	regDecodeMode  uint16 = 0x0900
	regIntensity   uint16 = 0x0a00
	regScanLimit   uint16 = 0x0b00
	regShutdown    uint16 = 0x0c00
	regDisplayTest uint16 = 0x0f00
)

var initWords = []uint16{
	regShutdown | 0x01,    // normal operation
	regDisplayTest | 0x00, // test off
	regScanLimit | 0x07,   // all 8 digits
	regDecodeMode | 0xff,  // Code B on all digits
}

func digit(n int) uint16 {
	return uint16(n) << 8
}

// EncodeTime returns the command words for hh-mm-ss. Digit 8 is the
// leftmost; digits 3 and 6 carry the separators.
func EncodeTime(t calendar.Time) []uint16 {
	sep := uint16(max7219.MinusSign)
	return []uint16{
		digit(1) | uint16(t.Second%10),
		digit(2) | uint16(t.Second/10),
		digit(3) | sep,
		digit(6) | sep,
		digit(4) | uint16(t.Minute%10),
		digit(5) | uint16(t.Minute/10),
		digit(7) | uint16(t.Hour%10),
		digit(8) | uint16(t.Hour/10),
	}
}

// EncodeDate returns the command words for dd.mm.yyyy. The decimal points
// sit on the day-units and month-units digits.
func EncodeDate(d calendar.Date) []uint16 {
	dp := uint16(max7219.DecimalPoint)
	return []uint16{
		digit(7) | uint16(d.Day%10) | dp,
		digit(8) | uint16(d.Day/10),
		digit(5) | uint16(d.Month%10) | dp,
		digit(6) | uint16(d.Month/10),
		digit(1) | (d.Year % 10),
		digit(2) | ((d.Year / 10) % 10),
		digit(3) | ((d.Year / 100) % 10),
		digit(4) | ((d.Year / 1000) % 10),
	}
}

// EncodeIntensity returns the intensity command word for level 0-15.
func EncodeIntensity(level uint8) uint16 {
	return regIntensity | uint16(level&0x0f)
}

// MAX7219 is a single 8-digit MAX7219 in Code B decode mode.
type MAX7219 struct {
	conn spi.Conn
}

// OpenMAX7219 connects to the SPI port and initializes the device.
func OpenMAX7219(p spi.Port) (*MAX7219, error) {
	// 16-bit frames are sent as two bytes; mode 0 matches CPOL=0, CPHA=0.
	c, err := p.Connect(1*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("max7219: connect: %w", err)
	}
	return NewMAX7219(c)
}

// NewMAX7219 initializes a device on an already connected SPI conn.
func NewMAX7219(c spi.Conn) (*MAX7219, error) {
	d := &MAX7219{conn: c}
	if err := d.write(initWords...); err != nil {
		return nil, fmt.Errorf("max7219: init: %w", err)
	}
	return d, nil
}

// write sends each word as its own transaction so chip select latches it.
func (d *MAX7219) write(words ...uint16) error {
	buf := make([]byte, 2)
	for _, w := range words {
		buf[0] = byte(w >> 8)
		buf[1] = byte(w)
		if err := d.conn.Tx(buf, nil); err != nil {
			return err
		}
	}
	return nil
}

// ShowTime renders hh-mm-ss.
func (d *MAX7219) ShowTime(t calendar.Time) error {
	return d.write(EncodeTime(t)...)
}

// ShowDate renders dd.mm.yyyy.
func (d *MAX7219) ShowDate(dt calendar.Date) error {
	return d.write(EncodeDate(dt)...)
}

// SetIntensity sets the brightness.
func (d *MAX7219) SetIntensity(level uint8) error {
	return d.write(EncodeIntensity(level))
}

// On leaves shutdown mode.
func (d *MAX7219) On() error {
	return d.write(regShutdown | 0x01)
}

// Off enters shutdown mode.
func (d *MAX7219) Off() error {
	return d.write(regShutdown | 0x00)
}
