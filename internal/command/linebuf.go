package command

// LineCapacity is the number of bytes a command line can hold.
const LineCapacity = 20

// LineBuffer accumulates UART bytes until an idle-line frame completes.
// The zero value is an empty buffer. Not safe for concurrent use; the
// coordinator serializes access.
type LineBuffer struct {
	buf        [LineCapacity]byte
	n          int
	overflowed bool
}

// Append stores one byte. When the buffer is already full the write index
// wraps to 0, the line is marked as overflowed and ErrLineOverflow is
// returned. The byte is stored either way.
func (l *LineBuffer) Append(b byte) error {
	var err error
	if l.n >= LineCapacity {
		l.n = 0
		l.overflowed = true
		err = ErrLineOverflow
	}
	l.buf[l.n] = b
	l.n++
	return err
}

// Len returns the number of bytes since the last reset or wrap.
func (l *LineBuffer) Len() int {
	return l.n
}

// Bytes returns the buffered line. The slice aliases the buffer and is only
// valid until the next Append or Reset.
func (l *LineBuffer) Bytes() []byte {
	return l.buf[:l.n]
}

// String returns a copy of the buffered line.
func (l *LineBuffer) String() string {
	return string(l.buf[:l.n])
}

// Overflowed reports whether the line wrapped since the last reset.
func (l *LineBuffer) Overflowed() bool {
	return l.overflowed
}

// Reset zeroes the contents and length and clears the overflow mark.
func (l *LineBuffer) Reset() {
	l.buf = [LineCapacity]byte{}
	l.n = 0
	l.overflowed = false
}
