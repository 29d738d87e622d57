package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the layout used to read and write calendar dates.
const DateFormat = "2006-01-02"

// Date is a calendar date without a time of day.
type Date struct {
	time.Time
}

// Today returns the current date in UTC.
func Today() Date {
	return NewDateFromTime(time.Now().UTC())
}

func NewDateFromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day(), t.Location())
}

func NewDate(year int, month time.Month, day int, loc *time.Location) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, loc)}
}

// ParseDate parses a YYYY-MM-DD string in UTC.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateFormat, value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return NewDateFromTime(t), nil
}

func (d Date) AddDays(days int) Date {
	t := d.Time.AddDate(0, 0, days)
	return NewDate(t.Year(), t.Month(), t.Day(), t.Location())
}

// Equal reports whether d and other fall on the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month() && d.Day() == other.Day()
}

// At returns the instant at the given wall-clock time of day on d, in d's
// location. 24:00 is midnight of the next day.
func (d Date) At(t TimeOfDay) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, int(t), 0, 0, d.Location())
}

func (d Date) String() string {
	return d.Format(DateFormat)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a wall-clock time expressed in minutes after midnight.
// 24:00 (1440) is allowed as the end of a day.
type TimeOfDay int

const (
	TimeOfDayFormat = "15:04"
	EndOfDay        = TimeOfDay(24 * 60)
)

// NewTimeOfDay builds a TimeOfDay from hours and minutes.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// TimeOfDayOf returns the wall-clock part of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

// ParseTimeOfDay parses "HH:MM". "24:00" is accepted.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	if value == "24:00" {
		return EndOfDay, nil
	}
	t, err := time.Parse(TimeOfDayFormat, value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	return TimeOfDayOf(t), nil
}

// Add returns t shifted by the given number of minutes.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
