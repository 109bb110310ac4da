package uart

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// FakePort is a scripted Port for tests.
type FakePort struct {
	mu sync.Mutex

	// Reads is consumed one entry per Read call. An empty entry simulates a
	// read timeout. When exhausted, Read returns io.EOF.
	Reads [][]byte

	// Written collects everything written to the port.
	Written bytes.Buffer

	// Timeout records the last SetReadTimeout value.
	Timeout time.Duration

	// Closed tracks if Close was called.
	Closed bool
}

// Frame returns the Reads entries for sending line and then going idle.
func Frame(line string) [][]byte {
	reads := make([][]byte, 0, len(line)+1)
	for i := 0; i < len(line); i++ {
		reads = append(reads, []byte{line[i]})
	}
	return append(reads, nil)
}

func (f *FakePort) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Reads) == 0 {
		return 0, io.EOF
	}
	next := f.Reads[0]
	n := copy(p, next)
	if n < len(next) {
		f.Reads[0] = next[n:]
	} else {
		f.Reads = f.Reads[1:]
	}
	return n, nil
}

func (f *FakePort) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Written.Write(p)
}

func (f *FakePort) SetReadTimeout(d time.Duration) error {
	f.mu.Lock()
	f.Timeout = d
	f.mu.Unlock()
	return nil
}

func (f *FakePort) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Output returns what has been written so far.
func (f *FakePort) Output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Written.String()
}

// FakeTransmitter records transmitted replies.
type FakeTransmitter struct {
	Sent []string
	Err  error
}

// Transmit records s.
func (f *FakeTransmitter) Transmit(s string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Sent = append(f.Sent, s)
	return nil
}

// Last returns the most recent reply, or "" if none.
func (f *FakeTransmitter) Last() string {
	if len(f.Sent) == 0 {
		return ""
	}
	return f.Sent[len(f.Sent)-1]
}
