package structema

import (
	"fmt"
	"time"
)

// Date is a calendar date without time-of-day, wired as "2006-01-02".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "2006-01-02" date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Clock is a wall-clock time-of-day, wired as "15:04:05".
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ClockOf truncates t to its time-of-day.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// ParseClock parses a "15:04:05" clock string.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return Clock{}, err
	}
	return ClockOf(t), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}
