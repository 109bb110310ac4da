package adc

import "errors"

// FakeSampler returns scripted readings.
type FakeSampler struct {
	// Values are returned in order; the last one repeats.
	Values []uint16
	index  int

	// Err, if set, is returned by Sample.
	Err error
}

// Sample returns the next scripted value.
func (f *FakeSampler) Sample() (uint16, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	if len(f.Values) == 0 {
		return 0, errors.New("no values configured")
	}
	v := f.Values[f.index]
	if f.index < len(f.Values)-1 {
		f.index++
	}
	return v, nil
}

// FakeTrigger counts conversion requests.
type FakeTrigger struct {
	Count int
}

// Trigger records a request.
func (f *FakeTrigger) Trigger() {
	f.Count++
}
