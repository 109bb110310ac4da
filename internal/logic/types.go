// Package logic contains the clock's event coordinator: the handlers that
// run for each timer tick, UART event, button edge and ADC result, and the
// shared state they coordinate through.
// Hardware is reached only through the display, uart and adc interfaces;
// time is injectable via a now function.
package logic

import (
	"time"

	"github.com/sweeney/ledclock/internal/calendar"
	"github.com/sweeney/ledclock/internal/session"
)

// Tick timing: four ticks make one clock second.
const (
	TicksPerSecond = 4
	TickInterval   = time.Second / TicksPerSecond
)

// View selects what the display shows. Toggled by the mode button.
type View string

const (
	ViewDate View = "DATE"
	ViewTime View = "TIME"
)

// Next returns the other view.
func (v View) Next() View {
	if v == ViewTime {
		return ViewDate
	}
	return ViewTime
}

// Power selects whether the display is lit. Toggled by the power button.
type Power string

const (
	PowerOn  Power = "ON"
	PowerOff Power = "OFF"
)

// Next returns the other power state.
func (p Power) Next() Power {
	if p == PowerOn {
		return PowerOff
	}
	return PowerOn
}

// EventType names a state change worth reporting.
type EventType string

const (
	EventDateSet      EventType = "DATE_SET"
	EventTimeSet      EventType = "TIME_SET"
	EventCommandError EventType = "COMMAND_ERROR"
	EventViewDate     EventType = "VIEW_DATE"
	EventViewTime     EventType = "VIEW_TIME"
	EventDisplayOn    EventType = "DISPLAY_ON"
	EventDisplayOff   EventType = "DISPLAY_OFF"
	EventDayRollover  EventType = "DAY_ROLLOVER"
)

// Event is a state change to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Time      calendar.Time
	Date      calendar.Date
	View      View
	Power     Power
	Detail    string // error text for EventCommandError
}

// EventCounts tracks the number of each kind of occurrence since startup.
type EventCounts struct {
	Ticks         int
	DateSets      int
	TimeSets      int
	CommandErrors int
	Overflows     int
	ButtonPresses int
	Rollovers     int
}

// Snapshot is a consistent copy of the coordinator state.
type Snapshot struct {
	Time       calendar.Time
	Date       calendar.Date
	View       View
	Power      Power
	Lit        bool
	Brightness uint8
	Session    session.State
	Counts     EventCounts
}
