package stats

import (
	"testing"
	"time"

	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/timeutil"
)

func date(y int, m time.Month, d int) *timeutil.Date {
	v := timeutil.NewDate(y, m, d)
	return &v
}

func mood(m journal.Mood) *journal.Mood { return &m }

var now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func samplePosts() []journal.Post {
	return []journal.Post{
		{ID: "p4", AuthorName: "Alice", PostType: journal.TypeMood, MoodType: mood(journal.MoodLove), CreatedAt: now.Add(-time.Hour),
			Likes: []journal.Like{{AuthorName: "Bob"}, {AuthorName: "Alice"}}},
		{ID: "p3", AuthorName: "Bob", PostType: journal.TypeMood, MoodType: mood("ecstatic"), IsPrivate: true, CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "p2", AuthorName: "Bob", PostType: journal.TypeText, CreatedAt: now.Add(-48 * time.Hour),
			Likes: []journal.Like{{AuthorName: "Alice"}}},
		{ID: "p1", AuthorName: "Alice", PostType: journal.TypeMemory, CreatedAt: now.Add(-72*time.Hour - time.Minute)},
	}
}

func TestComputeScenario(t *testing.T) {
	space := &journal.Space{
		Partner1Name:     "Alice",
		Partner2Name:     "Bob",
		AnniversaryDate:  date(2024, time.January, 1),
		Partner1Birthday: date(1995, time.June, 15),
	}
	a := Compute(nil, space, now)
	if a.DaysTogether != 166 {
		t.Fatalf("expected 166 days together, got %d", a.DaysTogether)
	}
	if a.NextAnniversaryDays == nil || *a.NextAnniversaryDays != 200 {
		t.Fatalf("expected 200 days to the anniversary, got %v", a.NextAnniversaryDays)
	}
	if len(a.Birthdays) != 1 || a.Birthdays[0].Name != "Alice" || a.Birthdays[0].Days != 0 {
		t.Fatalf("expected Alice's birthday today, got %+v", a.Birthdays)
	}
}

func TestComputeAbsentDates(t *testing.T) {
	a := Compute(nil, &journal.Space{Partner1Name: "A", Partner2Name: "B"}, now)
	if a.DaysTogether != 0 || a.NextAnniversaryDays != nil || len(a.Birthdays) != 0 {
		t.Fatalf("expected absent countdowns, got %+v", a)
	}
	if b := Compute(nil, nil, now); b.NextAnniversaryDays != nil {
		t.Fatalf("expected nil space to yield no countdown")
	}
}

func TestComputeEmptyCollection(t *testing.T) {
	a := Compute(nil, nil, now)
	if a.TotalPosts != 0 || a.PrivacyRatio != 0 || a.AvgPerDay != 0 {
		t.Fatalf("expected zero figures, got %+v", a)
	}
	if !a.ByType.Empty() || !a.ByAuthor.Empty() || !a.ByMood.Empty() {
		t.Fatalf("expected no-data distributions, got %+v", a)
	}
	if a.Max() != 1 {
		t.Fatalf("expected bar scale floor of 1, got %d", a.Max())
	}
}

func TestComputeTallies(t *testing.T) {
	posts := samplePosts()
	a := Compute(posts, nil, now)

	if a.TotalPosts != 4 {
		t.Fatalf("expected 4 posts, got %d", a.TotalPosts)
	}
	if a.ByType.Total() != a.TotalPosts || a.ByAuthor.Total() != a.TotalPosts {
		t.Fatalf("tallies must sum to the total: type %d author %d", a.ByType.Total(), a.ByAuthor.Total())
	}
	wantTypes := []Bucket{{"心情", 2}, {"文字", 1}, {"回忆", 1}}
	if len(a.ByType.Buckets) != len(wantTypes) {
		t.Fatalf("expected %v, got %v", wantTypes, a.ByType.Buckets)
	}
	for i, b := range wantTypes {
		if a.ByType.Buckets[i] != b {
			t.Fatalf("bucket %d: expected %v, got %v", i, b, a.ByType.Buckets[i])
		}
	}
	wantMoods := []Bucket{{"爱意", 1}, {journal.OtherMoodLabel, 1}}
	for i, b := range wantMoods {
		if a.ByMood.Buckets[i] != b {
			t.Fatalf("mood bucket %d: expected %v, got %v", i, b, a.ByMood.Buckets[i])
		}
	}
	if a.TotalLikes != 3 {
		t.Fatalf("expected 3 likes, got %d", a.TotalLikes)
	}
	if a.PrivateCount != 1 || a.PrivacyRatio != 0.25 || a.PrivacyPercent() != 25 {
		t.Fatalf("unexpected privacy figures %d %v %d", a.PrivateCount, a.PrivacyRatio, a.PrivacyPercent())
	}
	// Oldest post is 3 days and a minute old, which rounds up to 4 days.
	if a.AvgPerDay != 1 {
		t.Fatalf("expected 1 post per day, got %v", a.AvgPerDay)
	}
	if a.Max() != 2 {
		t.Fatalf("expected bar scale 2, got %d", a.Max())
	}
}

func TestAvgPerDayRounding(t *testing.T) {
	posts := []journal.Post{
		{ID: "a", CreatedAt: now.Add(-time.Hour)},
		{ID: "b", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "c", CreatedAt: now.Add(-72 * time.Hour)},
	}
	if got := Compute(posts, nil, now).AvgPerDay; got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	posts[2].CreatedAt = now.Add(-6 * 24 * time.Hour)
	if got := Compute(posts, nil, now).AvgPerDay; got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	posts = posts[:1]
	if got := Compute(posts, nil, now).AvgPerDay; got != 1 {
		t.Fatalf("expected a floor of one day, got %v", got)
	}
	posts = append(posts, journal.Post{ID: "d", CreatedAt: now.Add(-7 * 24 * time.Hour)})
	if got := Compute(posts, nil, now).AvgPerDay; got != 0.29 {
		t.Fatalf("expected 0.29, got %v", got)
	}
}

func TestMemoMatchesCompute(t *testing.T) {
	var m Memo
	posts := samplePosts()
	space := &journal.Space{AnniversaryDate: date(2024, time.January, 1)}

	first := m.Compute(posts, space, now)
	again := m.Compute(posts, space, now.Add(time.Minute))
	if first.TotalLikes != again.TotalLikes || first.DaysTogether != again.DaysTogether {
		t.Fatalf("cached result differs: %+v vs %+v", first, again)
	}

	posts[0].Likes = posts[0].Likes[:1]
	changed := m.Compute(posts, space, now)
	if changed.TotalLikes != 2 {
		t.Fatalf("expected recomputation after a like change, got %d likes", changed.TotalLikes)
	}

	tomorrow := m.Compute(posts, space, now.Add(24*time.Hour))
	if tomorrow.DaysTogether != 167 {
		t.Fatalf("expected recomputation on a new day, got %d", tomorrow.DaysTogether)
	}
}

func TestCountdownText(t *testing.T) {
	if got := CountdownText(0); got != "就是今天！" {
		t.Fatalf("unexpected %q", got)
	}
	if got := CountdownText(200); got != "200 天后" {
		t.Fatalf("unexpected %q", got)
	}
}
