package logic

import (
	"errors"
	"sync"
	"time"

	"github.com/sweeney/ledclock/internal/adc"
	"github.com/sweeney/ledclock/internal/calendar"
	"github.com/sweeney/ledclock/internal/command"
	"github.com/sweeney/ledclock/internal/display"
	"github.com/sweeney/ledclock/internal/gpio"
	"github.com/sweeney/ledclock/internal/session"
	"github.com/sweeney/ledclock/internal/uart"
)

// Coordinator owns the shared clock state. Every handler runs as one
// critical section, so a UART commit and a tick never interleave and a
// render never sees a half-written time or date.
type Coordinator struct {
	mu sync.Mutex

	display display.Display
	tx      uart.Transmitter
	adc     adc.Trigger
	now     func() time.Time

	time     calendar.Time
	date     calendar.Date
	view     View
	power    Power
	lit      bool
	subTicks uint8

	line          command.LineBuffer
	frameComplete bool
	session       session.Session

	brightness uint8
	counts     EventCounts
}

// NewCoordinator creates a Coordinator in the power-on state: 00-00-00,
// 01.01.1971, time view, display power on. The display is switched on by
// the first tick.
func NewCoordinator(d display.Display, tx uart.Transmitter, trig adc.Trigger, now func() time.Time) *Coordinator {
	return &Coordinator{
		display: d,
		tx:      tx,
		adc:     trig,
		now:     now,
		time:    calendar.BootTime,
		date:    calendar.BootDate,
		view:    ViewTime,
		power:   PowerOn,
	}
}

// HandleTick runs once per TickInterval. It starts an ADC conversion,
// advances the clock by one second every TicksPerSecond calls and refreshes
// the display.
func (c *Coordinator) HandleTick() ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts.Ticks++
	c.adc.Trigger()

	c.subTicks++
	if c.subTicks >= TicksPerSecond {
		c.subTicks = 0
		c.time.Second++
	}

	before := c.date
	calendar.AdvanceTime(&c.time, &c.date)
	calendar.AdvanceDay(&c.date)

	var events []Event
	if c.date != before {
		c.counts.Rollovers++
		events = append(events, c.event(EventDayRollover))
	}

	return events, c.render()
}

func (c *Coordinator) render() error {
	if c.power == PowerOff {
		if !c.lit {
			return nil
		}
		c.lit = false
		return c.display.Off()
	}
	if !c.lit {
		if err := c.display.On(); err != nil {
			return err
		}
		c.lit = true
	}
	if c.view == ViewDate {
		return c.display.ShowDate(c.date)
	}
	return c.display.ShowTime(c.time)
}

// HandleRx processes one UART event. Idle marks the frame complete; a byte
// is appended to the line. Once the frame is complete the line is handed to
// the setting session exactly once, the reply is transmitted and the line
// is cleared.
func (c *Coordinator) HandleRx(ev uart.RxEvent) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Idle {
		c.frameComplete = true
	}
	if ev.HasByte {
		if err := c.line.Append(ev.Byte); errors.Is(err, command.ErrLineOverflow) {
			c.counts.Overflows++
		}
	}
	if !c.frameComplete {
		return nil, nil
	}

	res := c.session.Handle(c.line.String(), c.line.Overflowed(), committer{c})
	c.frameComplete = false
	c.line.Reset()

	var events []Event
	switch res.Outcome {
	case session.OutcomeDateSet:
		c.counts.DateSets++
		events = append(events, c.event(EventDateSet))
	case session.OutcomeTimeSet:
		c.counts.TimeSets++
		events = append(events, c.event(EventTimeSet))
	case session.OutcomeError:
		c.counts.CommandErrors++
		ev := c.event(EventCommandError)
		if res.Err != nil {
			ev.Detail = res.Err.Error()
		}
		events = append(events, ev)
	}

	return events, c.tx.Transmit(res.Reply)
}

// committer applies session commits. It is only used while c.mu is held.
type committer struct {
	c *Coordinator
}

func (w committer) SetDate(d calendar.Date) {
	w.c.date = d
}

func (w committer) SetTime(t calendar.Time) {
	w.c.time = t
}

// HandleButton advances the toggle belonging to b.
func (c *Coordinator) HandleButton(b gpio.Button) []Event {
	return c.HandleButtons([]gpio.Button{b})
}

// HandleButtons handles one edge out of a set of pending ones. The mode
// button wins when both are pending; the other edge is left for the next
// call.
func (c *Coordinator) HandleButtons(pending []gpio.Button) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	var mode, power bool
	for _, b := range pending {
		switch b {
		case gpio.ButtonMode:
			mode = true
		case gpio.ButtonPower:
			power = true
		}
	}

	switch {
	case mode:
		c.counts.ButtonPresses++
		c.view = c.view.Next()
		if c.view == ViewDate {
			return []Event{c.event(EventViewDate)}
		}
		return []Event{c.event(EventViewTime)}
	case power:
		c.counts.ButtonPresses++
		c.power = c.power.Next()
		if c.power == PowerOn {
			return []Event{c.event(EventDisplayOn)}
		}
		return []Event{c.event(EventDisplayOff)}
	}
	return nil
}

// HandleADC applies a completed conversion to the display brightness.
func (c *Coordinator) HandleADC(raw uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.brightness = Intensity(raw)
	return c.display.SetIntensity(c.brightness)
}

// Intensity scales a raw 0-4095 reading linearly onto 0-15. Full scale
// reaches 15.
func Intensity(raw uint16) uint8 {
	if raw > adc.MaxRaw {
		raw = adc.MaxRaw
	}
	return uint8(uint32(raw) * display.MaxIntensity / adc.MaxRaw)
}

// Snapshot returns a consistent copy of the shared state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Time:       c.time,
		Date:       c.date,
		View:       c.view,
		Power:      c.power,
		Lit:        c.lit,
		Brightness: c.brightness,
		Session:    c.session.State(),
		Counts:     c.counts,
	}
}

func (c *Coordinator) event(t EventType) Event {
	return Event{
		Timestamp: c.now(),
		Type:      t,
		Time:      c.time,
		Date:      c.date,
		View:      c.view,
		Power:     c.power,
	}
}
