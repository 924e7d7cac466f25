// Package timeutil holds the calendar arithmetic behind the anniversary and
// birthday countdowns.
package timeutil

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// LayoutISO is the wire and display form of a Date.
	LayoutISO = "2006-01-02"
)

// Clock returns the current instant. Components take a Clock instead of
// calling time.Now so callers can pin "today".
type Clock func() time.Time

// Now is the wall clock.
func Now() time.Time {
	return time.Now()
}

// Date is a civil calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalizing out-of-range values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar date of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses "2006-01-02". Longer timestamp forms are accepted and
// truncated to their date part.
func ParseDate(v string) (Date, error) {
	v = strings.TrimSpace(v)
	if len(v) > len(LayoutISO) {
		v = v[:len(LayoutISO)]
	}
	t, err := time.Parse(LayoutISO, v)
	if err != nil {
		return Date{}, fmt.Errorf("timeutil: invalid date %q: %w", v, err)
	}
	return FromTime(t), nil
}

// ParseOptionalDate is ParseDate for optional form fields; blank input is absent.
func ParseOptionalDate(v string) (*Date, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	d, err := ParseDate(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return d.In(time.UTC).Format(LayoutISO)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return daysBetween(d, other) > 0
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Present reports whether d carries a date.
func Present(d *Date) bool {
	return d != nil && !d.IsZero()
}

// DaysSince returns the whole calendar days from d to the calendar day of
// now. ok is false when d is absent.
func DaysSince(d *Date, now time.Time) (days int, ok bool) {
	if !Present(d) {
		return 0, false
	}
	return daysBetween(*d, FromTime(now)), true
}

// DaysUntilNextAnnual returns the days from today until the next occurrence
// of d's month and day, counting today as 0. A Feb 29 anchor falls on Feb 28
// in common years. ok is false when d is absent.
func DaysUntilNextAnnual(d *Date, now time.Time) (days int, ok bool) {
	if !Present(d) {
		return 0, false
	}
	today := FromTime(now)
	next := Occurrence(*d, today.Year)
	if next.Before(today) {
		next = Occurrence(*d, today.Year+1)
	}
	return daysBetween(today, next), true
}

// Occurrence returns the anniversary of anchor in year.
func Occurrence(anchor Date, year int) Date {
	if anchor.Month == time.February && anchor.Day == 29 && !IsLeap(year) {
		return Date{Year: year, Month: time.February, Day: 28}
	}
	return Date{Year: year, Month: anchor.Month, Day: anchor.Day}
}

// IsLeap reports whether year has a Feb 29.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DayKey formats the calendar day of t as seen in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(LayoutISO)
}

// daysBetween counts days from a to b; UTC midnights keep DST out of it.
func daysBetween(a, b Date) int {
	return int(b.In(time.UTC).Sub(a.In(time.UTC)).Hours() / 24)
}
