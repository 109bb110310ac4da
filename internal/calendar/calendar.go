// Package calendar implements the clock's time-of-day and Gregorian date
// arithmetic. It has no dependencies and never fails: callers only pass
// values that already satisfy the range invariants.
package calendar

import "fmt"

// Time is a time of day. Each field stays in range: Second and Minute 0-59,
// Hour 0-23.
type Time struct {
	Second uint8
	Minute uint8
	Hour   uint8
}

// Date is a calendar date. Day never exceeds DaysInMonth(Month, Year).
type Date struct {
	Day   uint8
	Month uint8
	Year  uint16
}

// Power-on values.
var (
	BootTime = Time{Second: 0, Minute: 0, Hour: 0}
	BootDate = Date{Day: 1, Month: 1, Year: 1971}
)

// String formats the time as hh-mm-ss, the same layout the UART accepts.
func (t Time) String() string {
	return fmt.Sprintf("%02d-%02d-%02d", t.Hour, t.Minute, t.Second)
}

// String formats the date as dd.mm.yyyy.
func (d Date) String() string {
	return fmt.Sprintf("%02d.%02d.%04d", d.Day, d.Month, d.Year)
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year uint16) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

var monthDays = [13]uint8{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the length of month in year. It returns 0 for a month
// outside 1-12.
func DaysInMonth(month uint8, year uint16) uint8 {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthDays[month]
}

// AdvanceDay normalizes a day carry: a day past the end of the month moves
// to the first of the next month, and month 13 moves to January of the next
// year.
func AdvanceDay(d *Date) {
	if d.Day > DaysInMonth(d.Month, d.Year) {
		d.Day = 1
		d.Month++
	}
	if d.Month > 12 {
		d.Month = 1
		d.Year++
	}
}

// AdvanceTime propagates carries second -> minute -> hour -> day. An hour
// overflow increments d.Day without normalizing it; call AdvanceDay after.
func AdvanceTime(t *Time, d *Date) {
	if t.Second >= 60 {
		t.Second = 0
		t.Minute++
	}
	if t.Minute >= 60 {
		t.Minute = 0
		t.Hour++
	}
	if t.Hour >= 24 {
		t.Hour = 0
		d.Day++
	}
}

// Valid reports whether every field of t is in range.
func (t Time) Valid() bool {
	return t.Second < 60 && t.Minute < 60 && t.Hour < 24
}

// Valid reports whether d is a real calendar date.
func (d Date) Valid() bool {
	return d.Day >= 1 && d.Day <= DaysInMonth(d.Month, d.Year)
}
