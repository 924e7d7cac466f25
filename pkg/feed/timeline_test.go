package feed

import (
	"testing"
	"time"

	"tableflip.dev/lovenote/pkg/journal"
)

func TestTimelineGroupsOldestDayFirst(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	at := func(s string) time.Time {
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		return v
	}
	// Newest first, as the gateway returns them.
	posts := []journal.Post{
		{ID: "d", CreatedAt: at("2024-06-15T20:00:00Z")}, // 06-16 local
		{ID: "c", CreatedAt: at("2024-06-15T09:00:00Z")},
		{ID: "b", CreatedAt: at("2024-06-15T01:00:00Z")},
		{ID: "a", CreatedAt: at("2024-06-14T10:00:00Z")},
	}

	groups := Timeline(posts, loc)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	wantDays := []string{"2024-06-14", "2024-06-15", "2024-06-16"}
	for i, g := range groups {
		if g.Day != wantDays[i] {
			t.Fatalf("group %d: expected %s, got %s", i, wantDays[i], g.Day)
		}
	}
	if got := ids(groups[1].Posts); !equal(got, []string{"c", "b"}) {
		t.Fatalf("expected feed order within day, got %v", got)
	}
}

func TestTimelineEmpty(t *testing.T) {
	if groups := Timeline(nil, time.UTC); len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}
