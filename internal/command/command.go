// Package command parses and validates the line-oriented UART protocol used
// to set the clock: the two setting commands and the fixed-format date and
// time strings that follow them.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sweeney/ledclock/internal/calendar"
)

// Setting command literals. Matching is exact and case-sensitive.
const (
	SetDateCommand = "Setting Date:"
	SetTimeCommand = "Setting Time:"
)

var (
	// ErrLineOverflow is returned by LineBuffer.Append when a line exceeds
	// LineCapacity.
	ErrLineOverflow = errors.New("command: line exceeds buffer capacity")
	// ErrNotNumeric is returned for empty input or input with a non-digit.
	ErrNotNumeric = errors.New("command: not an unsigned number")
	// ErrOverflow is returned when a number does not fit in 16 bits.
	ErrOverflow = errors.New("command: number out of range")
	// ErrFormat is returned when a date or time string has the wrong shape
	// or a field out of range.
	ErrFormat = errors.New("command: bad format")
	// ErrDayOutOfRange is returned for a well-formed date whose day does not
	// exist in its month, such as 31.02.2024.
	ErrDayOutOfRange = errors.New("command: day out of range for month")
)

// Kind is the classification of a line received while no setting is in
// progress.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindDate
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	default:
		return "UNRECOGNIZED"
	}
}

// Classify matches line against the two setting commands. No trimming or
// partial matching is done.
func Classify(line string) Kind {
	switch line {
	case SetDateCommand:
		return KindDate
	case SetTimeCommand:
		return KindTime
	default:
		return KindUnrecognized
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// twoDigits converts s[i:i+2], which the caller has checked are digits.
func twoDigits(s string, i int) int {
	return int(s[i]-'0')*10 + int(s[i+1]-'0')
}

// ValidateDateFormat reports whether text has the form dd.mm.yyyy with day
// 1-31, month 1-12 and year 1000-9999. It does not check the day against
// the length of the month; ParseDate does.
func ValidateDateFormat(text string) bool {
	if len(text) != 10 {
		return false
	}
	for i := 0; i < len(text); i++ {
		switch i {
		case 2, 5:
			if text[i] != '.' {
				return false
			}
		default:
			if !isDigit(text[i]) {
				return false
			}
		}
	}
	day := twoDigits(text, 0)
	month := twoDigits(text, 3)
	year := twoDigits(text, 6)*100 + twoDigits(text, 8)
	return day >= 1 && day <= 31 &&
		month >= 1 && month <= 12 &&
		year >= 1000 && year <= 9999
}

// ValidateTimeFormat reports whether text has the form hh-mm-ss with hour
// 0-23 and minute and second 0-59.
func ValidateTimeFormat(text string) bool {
	if len(text) != 8 {
		return false
	}
	for i := 0; i < len(text); i++ {
		switch i {
		case 2, 5:
			if text[i] != '-' {
				return false
			}
		default:
			if !isDigit(text[i]) {
				return false
			}
		}
	}
	return twoDigits(text, 0) <= 23 &&
		twoDigits(text, 3) <= 59 &&
		twoDigits(text, 6) <= 59
}

// ParseUnsigned converts a string of decimal digits. Unlike a zero-on-error
// converter it distinguishes a parsed 0 from a failure.
func ParseUnsigned(text string) (uint16, error) {
	if text == "" {
		return 0, ErrNotNumeric
	}
	var v uint32
	for i := 0; i < len(text); i++ {
		if !isDigit(text[i]) {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, text)
		}
		v = v*10 + uint32(text[i]-'0')
		if v > 0xffff {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, text)
		}
	}
	return uint16(v), nil
}

// Split breaks text into tokens separated by any byte in delims. A run of
// delimiters is one boundary and leading or trailing runs produce no empty
// tokens.
func Split(text, delims string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(delims, r)
	})
}

func parseFields(text, delims string, n int) ([]uint16, error) {
	tokens := Split(text, delims)
	if len(tokens) != n {
		return nil, fmt.Errorf("%w: want %d fields, got %d", ErrFormat, n, len(tokens))
	}
	vals := make([]uint16, n)
	for i, tok := range tokens {
		v, err := ParseUnsigned(tok)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// ParseDate validates and converts a dd.mm.yyyy string. Besides the format
// rules of ValidateDateFormat the day must exist in the given month and year.
func ParseDate(text string) (calendar.Date, error) {
	if !ValidateDateFormat(text) {
		return calendar.Date{}, fmt.Errorf("%w: date %q", ErrFormat, text)
	}
	vals, err := parseFields(text, ".", 3)
	if err != nil {
		return calendar.Date{}, err
	}
	d := calendar.Date{Day: uint8(vals[0]), Month: uint8(vals[1]), Year: vals[2]}
	if !d.Valid() {
		return calendar.Date{}, fmt.Errorf("%w: %s", ErrDayOutOfRange, text)
	}
	return d, nil
}

// ParseTime validates and converts an hh-mm-ss string.
func ParseTime(text string) (calendar.Time, error) {
	if !ValidateTimeFormat(text) {
		return calendar.Time{}, fmt.Errorf("%w: time %q", ErrFormat, text)
	}
	vals, err := parseFields(text, "-", 3)
	if err != nil {
		return calendar.Time{}, err
	}
	return calendar.Time{Hour: uint8(vals[0]), Minute: uint8(vals[1]), Second: uint8(vals[2])}, nil
}
