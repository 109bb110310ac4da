package gpio

// FakeButtons is a test double whose edges are injected with Press.
type FakeButtons struct {
	ch chan Button

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeButtons creates FakeButtons with room for buf pending presses.
func NewFakeButtons(buf int) *FakeButtons {
	return &FakeButtons{ch: make(chan Button, buf)}
}

// Press queues a falling edge for b.
func (f *FakeButtons) Press(b Button) {
	f.ch <- b
}

// Edges returns the injected presses.
func (f *FakeButtons) Edges() <-chan Button {
	return f.ch
}

// Close marks the buttons as closed.
func (f *FakeButtons) Close() error {
	f.Closed = true
	return nil
}
