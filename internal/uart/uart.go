// Package uart receives the setting protocol byte by byte and detects the
// end of a line by bus silence (idle-line framing) rather than a terminator.
package uart

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Reference line configuration: 19200 baud, 8N1, a frame completes after
// 8 idle character times.
const (
	DefaultBaud      = 19200
	DefaultIdleChars = 8
)

// Port is the subset of a serial port the daemon uses.
type Port interface {
	io.ReadWriteCloser
	// SetReadTimeout makes Read return (0, nil) after d without data.
	SetReadTimeout(d time.Duration) error
}

// RxEvent is one receive-side occurrence. Idle marks a completed frame.
type RxEvent struct {
	Byte    byte
	HasByte bool
	Idle    bool
}

// Transmitter sends protocol replies.
type Transmitter interface {
	Transmit(s string) error
}

// IdleTimeout returns the duration of chars character times at baud, with
// 10 bits per 8N1 character.
func IdleTimeout(baud, chars int) time.Duration {
	if baud <= 0 || chars <= 0 {
		return 0
	}
	return time.Duration(chars*10) * time.Second / time.Duration(baud)
}

// Reader turns a Port into a stream of RxEvents.
type Reader struct {
	port Port
	idle time.Duration
}

// NewReader creates a Reader that reports an idle line after idle.
func NewReader(p Port, idle time.Duration) *Reader {
	return &Reader{port: p, idle: idle}
}

// Run reads until ctx is done or the port fails. Each byte is delivered as
// its own event; one Idle event follows the last byte of a frame.
func (r *Reader) Run(ctx context.Context, out chan<- RxEvent) error {
	if err := r.port.SetReadTimeout(r.idle); err != nil {
		return fmt.Errorf("uart: set read timeout: %w", err)
	}

	buf := make([]byte, 1)
	inFrame := false
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := r.port.Read(buf)
		if err != nil {
			return fmt.Errorf("uart: read: %w", err)
		}

		var ev RxEvent
		switch {
		case n > 0:
			ev = RxEvent{Byte: buf[0], HasByte: true}
			inFrame = true
		case inFrame:
			ev = RxEvent{Idle: true}
			inFrame = false
		default:
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

// WriterTransmitter sends replies to an io.Writer, typically the Port.
type WriterTransmitter struct {
	W io.Writer
}

// Transmit writes s.
func (t WriterTransmitter) Transmit(s string) error {
	if _, err := io.WriteString(t.W, s); err != nil {
		return fmt.Errorf("uart: transmit: %w", err)
	}
	return nil
}
