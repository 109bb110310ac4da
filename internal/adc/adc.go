// Package adc samples the brightness potentiometer. A conversion is started
// by Trigger and its result arrives later on the Results channel, the way a
// conversion-complete interrupt would deliver it.
package adc

import (
	"context"
	"log"
	"sync/atomic"
)

// MaxRaw is the largest raw reading (12-bit converter).
const MaxRaw = 4095

// Sampler performs one blocking conversion and returns a raw 0-MaxRaw value.
type Sampler interface {
	Sample() (uint16, error)
}

// Trigger starts a conversion without blocking.
type Trigger interface {
	Trigger()
}

// Converter runs conversions requested by Trigger on its own goroutine.
type Converter struct {
	sampler Sampler
	req     chan struct{}
	out     chan uint16

	// Requests made while one was already pending, and results dropped
	// because the consumer was behind.
	coalesced uint32
	drops     uint32
}

// NewConverter creates a Converter. outBuf <= 0 selects a default.
func NewConverter(s Sampler, outBuf int) *Converter {
	if outBuf <= 0 {
		outBuf = 4
	}
	return &Converter{
		sampler: s,
		req:     make(chan struct{}, 1),
		out:     make(chan uint16, outBuf),
	}
}

// Trigger requests a conversion. A request made while another is pending is
// merged into it.
func (c *Converter) Trigger() {
	select {
	case c.req <- struct{}{}:
	default:
		atomic.AddUint32(&c.coalesced, 1)
	}
}

// Results delivers completed conversions.
func (c *Converter) Results() <-chan uint16 {
	return c.out
}

// Stats returns the coalesced-request and dropped-result counters.
func (c *Converter) Stats() (coalesced, drops uint32) {
	return atomic.LoadUint32(&c.coalesced), atomic.LoadUint32(&c.drops)
}

// Run serves conversion requests until ctx is done.
func (c *Converter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.req:
			v, err := c.sampler.Sample()
			if err != nil {
				log.Printf("adc: sample error: %v", err)
				continue
			}
			select {
			case c.out <- v:
			default:
				atomic.AddUint32(&c.drops, 1)
			}
		}
	}
}
