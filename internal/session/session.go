// Package session implements the date/time setting protocol: a setting
// command line is followed by exactly one value line, after which the
// session always returns to Idle.
package session

import (
	"github.com/sweeney/ledclock/internal/calendar"
	"github.com/sweeney/ledclock/internal/command"
)

// State is the protocol state.
type State int

const (
	Idle State = iota
	AwaitingDate
	AwaitingTime
)

func (s State) String() string {
	switch s {
	case AwaitingDate:
		return "AWAITING_DATE"
	case AwaitingTime:
		return "AWAITING_TIME"
	default:
		return "IDLE"
	}
}

// Replies sent back over the UART.
const (
	ReplyError       = "Error_Format\n"
	ReplyDateUpdated = "\nDate Updated\n"
	ReplyTimeUpdated = "\nTime Updated\n"
	ReplyDatePrompt  = "\nPlease type right format: dd.mm.yyyy\n"
	ReplyTimePrompt  = "\nPlease type right format: XX-XX-XX\n"
)

// Outcome summarizes what a handled line did.
type Outcome string

const (
	OutcomePrompt  Outcome = "PROMPT"
	OutcomeDateSet Outcome = "DATE_SET"
	OutcomeTimeSet Outcome = "TIME_SET"
	OutcomeError   Outcome = "ERROR"
)

// Committer receives successfully parsed values.
type Committer interface {
	SetDate(calendar.Date)
	SetTime(calendar.Time)
}

// Result is returned for every completed line.
type Result struct {
	Reply   string
	Outcome Outcome
	State   State
	Err     error // parse error behind OutcomeError, nil otherwise
}

// Session tracks the protocol state. The zero value is Idle.
type Session struct {
	state State
}

// State returns the current protocol state.
func (s *Session) State() State {
	return s.state
}

// Handle processes one completed line. overflowed marks a line that wrapped
// the receive buffer; it is rejected whatever its content.
func (s *Session) Handle(line string, overflowed bool, c Committer) Result {
	if overflowed {
		s.state = Idle
		return s.fail(command.ErrLineOverflow)
	}

	switch s.state {
	case AwaitingDate:
		s.state = Idle
		d, err := command.ParseDate(line)
		if err != nil {
			return s.fail(err)
		}
		c.SetDate(d)
		return Result{Reply: ReplyDateUpdated, Outcome: OutcomeDateSet, State: s.state}

	case AwaitingTime:
		s.state = Idle
		t, err := command.ParseTime(line)
		if err != nil {
			return s.fail(err)
		}
		c.SetTime(t)
		return Result{Reply: ReplyTimeUpdated, Outcome: OutcomeTimeSet, State: s.state}
	}

	switch command.Classify(line) {
	case command.KindDate:
		s.state = AwaitingDate
		return Result{Reply: ReplyDatePrompt, Outcome: OutcomePrompt, State: s.state}
	case command.KindTime:
		s.state = AwaitingTime
		return Result{Reply: ReplyTimePrompt, Outcome: OutcomePrompt, State: s.state}
	default:
		return s.fail(command.ErrFormat)
	}
}

func (s *Session) fail(err error) Result {
	return Result{Reply: ReplyError, Outcome: OutcomeError, State: s.state, Err: err}
}
