package timeutil

import (
	"encoding/json"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 30, 0, 0, time.Local)
}

func datePtr(y int, m time.Month, d int) *Date {
	v := NewDate(y, m, d)
	return &v
}

func TestDaysSinceAnniversary(t *testing.T) {
	got, ok := DaysSince(datePtr(2024, time.January, 1), day(2024, time.June, 15))
	if !ok {
		t.Fatalf("expected a value")
	}
	if got != 166 {
		t.Fatalf("expected 166 days, got %d", got)
	}
}

func TestDaysUntilNextAnniversaryRollsIntoNextYear(t *testing.T) {
	got, ok := DaysUntilNextAnnual(datePtr(2024, time.January, 1), day(2024, time.June, 15))
	if !ok {
		t.Fatalf("expected a value")
	}
	// 2024-06-15 -> 2025-01-01, 2024 being a leap year.
	if got != 200 {
		t.Fatalf("expected 200 days, got %d", got)
	}
}

func TestDaysUntilNextAnnualToday(t *testing.T) {
	got, _ := DaysUntilNextAnnual(datePtr(1990, time.March, 3), day(2025, time.March, 3))
	if got != 0 {
		t.Fatalf("expected 0 on the day, got %d", got)
	}
}

func TestDaysUntilNextAnnualLaterThisYear(t *testing.T) {
	got, _ := DaysUntilNextAnnual(datePtr(1990, time.March, 10), day(2025, time.March, 3))
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestDaysUntilNextAnnualAbsent(t *testing.T) {
	if _, ok := DaysUntilNextAnnual(nil, time.Now()); ok {
		t.Fatalf("expected absent anchor to propagate")
	}
	if _, ok := DaysSince(&Date{}, time.Now()); ok {
		t.Fatalf("expected zero date to count as absent")
	}
}

func TestLeapDayAnchorFallsOnFeb28(t *testing.T) {
	anchor := datePtr(2000, time.February, 29)

	got, _ := DaysUntilNextAnnual(anchor, day(2025, time.February, 28))
	if got != 0 {
		t.Fatalf("expected Feb 28 to be the occurrence in 2025, got %d", got)
	}

	got, _ = DaysUntilNextAnnual(anchor, day(2025, time.March, 1))
	// 2025-03-01 -> 2026-02-28
	if got != 364 {
		t.Fatalf("expected 364, got %d", got)
	}

	got, _ = DaysUntilNextAnnual(anchor, day(2024, time.February, 29))
	if got != 0 {
		t.Fatalf("expected leap year occurrence on Feb 29, got %d", got)
	}
}

func TestDaysUntilNextAnnualBounds(t *testing.T) {
	anchors := []*Date{
		datePtr(1999, time.January, 1),
		datePtr(1999, time.December, 31),
		datePtr(2000, time.February, 29),
		datePtr(1988, time.July, 4),
	}
	start := day(2023, time.January, 1)
	for i := 0; i < 3*366; i++ {
		now := start.AddDate(0, 0, i)
		for _, a := range anchors {
			got, ok := DaysUntilNextAnnual(a, now)
			if !ok {
				t.Fatalf("expected value for %s", a)
			}
			if got < 0 || got > 366 {
				t.Fatalf("%s on %s: %d out of range", a, now.Format(LayoutISO), got)
			}
			occ := Occurrence(*a, now.Year())
			matches := occ == FromTime(now)
			if matches != (got == 0) {
				t.Fatalf("%s on %s: zero=%v but match=%v", a, now.Format(LayoutISO), got == 0, matches)
			}
			next := FromTime(now).In(time.UTC).AddDate(0, 0, got)
			if FromTime(next).Before(FromTime(now)) {
				t.Fatalf("next occurrence is in the past")
			}
		}
	}
}

func TestDateJSON(t *testing.T) {
	var holder struct {
		When *Date `json:"when"`
		Nope *Date `json:"nope"`
	}
	if err := json.Unmarshal([]byte(`{"when":"2024-02-29","nope":null}`), &holder); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if holder.When == nil || holder.When.String() != "2024-02-29" {
		t.Fatalf("unexpected date %v", holder.When)
	}
	if holder.Nope != nil {
		t.Fatalf("expected null to stay absent")
	}
	b, err := json.Marshal(holder)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"when":"2024-02-29","nope":null}` {
		t.Fatalf("unexpected json %s", b)
	}
}

func TestParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("  ")
	if err != nil || d != nil {
		t.Fatalf("expected blank to be absent, got %v %v", d, err)
	}
	d, err = ParseOptionalDate("2023-05-20T00:00:00Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2023-05-20" {
		t.Fatalf("unexpected %s", d)
	}
	if _, err := ParseOptionalDate("20-05-2023"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDayKeyUsesLocation(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	instant := time.Date(2024, time.May, 1, 20, 0, 0, 0, time.UTC)
	if got := DayKey(instant, shanghai); got != "2024-05-02" {
		t.Fatalf("expected 2024-05-02, got %s", got)
	}
	if got := DayKey(instant, time.UTC); got != "2024-05-01" {
		t.Fatalf("expected 2024-05-01, got %s", got)
	}
}
