// Package stats derives the journal's aggregate figures from the current
// post collection and the space's dates.
package stats

import (
	"math"
	"strconv"
	"time"

	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/timeutil"
)

const (
	// NoDataText is shown for an empty type or author distribution.
	NoDataText = "暂无数据"
	// NoMoodDataText is shown when there are no mood posts.
	NoMoodDataText = "暂无心情数据"
)

// Bucket is one labelled count of a distribution.
type Bucket struct {
	Label string
	Count int
}

// Distribution is a set of buckets in order of first appearance.
type Distribution struct {
	Buckets []Bucket
}

// Empty reports whether the distribution had no source posts.
func (d Distribution) Empty() bool {
	return len(d.Buckets) == 0
}

// Total sums every bucket.
func (d Distribution) Total() int {
	n := 0
	for _, b := range d.Buckets {
		n += b.Count
	}
	return n
}

// Max is the largest bucket count, or 0.
func (d Distribution) Max() int {
	m := 0
	for _, b := range d.Buckets {
		if b.Count > m {
			m = b.Count
		}
	}
	return m
}

func (d *Distribution) add(label string) {
	for i := range d.Buckets {
		if d.Buckets[i].Label == label {
			d.Buckets[i].Count++
			return
		}
	}
	d.Buckets = append(d.Buckets, Bucket{Label: label, Count: 1})
}

// Countdown is the days left until a partner's next birthday.
type Countdown struct {
	Name string
	Days int
}

// Aggregates is everything the stats view and header show.
type Aggregates struct {
	TotalPosts          int
	DaysTogether        int
	NextAnniversaryDays *int
	Birthdays           []Countdown

	ByType   Distribution
	ByAuthor Distribution
	ByMood   Distribution

	TotalLikes   int
	PrivateCount int
	PrivacyRatio float64
	AvgPerDay    float64
}

// Max is the shared bar scale across all distributions; never below 1.
func (a Aggregates) Max() int {
	m := 1
	for _, d := range []Distribution{a.ByType, a.ByAuthor, a.ByMood} {
		if v := d.Max(); v > m {
			m = v
		}
	}
	return m
}

// PrivacyPercent is the privacy ratio rounded to a whole percent.
func (a Aggregates) PrivacyPercent() int {
	return int(math.Round(a.PrivacyRatio * 100))
}

// Compute derives the aggregates. space may be nil.
func Compute(posts []journal.Post, space *journal.Space, now time.Time) Aggregates {
	a := Aggregates{TotalPosts: len(posts)}

	if space != nil {
		if d, ok := timeutil.DaysSince(space.AnniversaryDate, now); ok {
			a.DaysTogether = d
		}
		if d, ok := timeutil.DaysUntilNextAnnual(space.AnniversaryDate, now); ok {
			a.NextAnniversaryDays = &d
		}
		for _, b := range []struct {
			name string
			date *timeutil.Date
		}{
			{space.Partner1Name, space.Partner1Birthday},
			{space.Partner2Name, space.Partner2Birthday},
		} {
			if d, ok := timeutil.DaysUntilNextAnnual(b.date, now); ok {
				a.Birthdays = append(a.Birthdays, Countdown{Name: b.name, Days: d})
			}
		}
	}

	for i := range posts {
		p := &posts[i]
		a.ByType.add(p.PostType.Label())
		a.ByAuthor.add(p.AuthorName)
		if p.PostType == journal.TypeMood {
			label := journal.OtherMoodLabel
			if p.MoodType != nil {
				if l, ok := p.MoodType.Label(); ok {
					label = l
				}
			}
			a.ByMood.add(label)
		}
		a.TotalLikes += p.LikeCount()
		if p.IsPrivate {
			a.PrivateCount++
		}
	}

	if a.TotalPosts > 0 {
		a.PrivacyRatio = float64(a.PrivateCount) / float64(a.TotalPosts)
	}
	a.AvgPerDay = math.Round(float64(a.TotalPosts)/float64(activeDays(posts, now))*100) / 100
	return a
}

// activeDays is the time since the oldest post rounded up to whole days,
// at least 1.
func activeDays(posts []journal.Post, now time.Time) int {
	var oldest time.Time
	for i := range posts {
		if oldest.IsZero() || posts[i].CreatedAt.Before(oldest) {
			oldest = posts[i].CreatedAt
		}
	}
	if oldest.IsZero() {
		return 1
	}
	if d := int(math.Ceil(now.Sub(oldest).Hours() / 24)); d > 1 {
		return d
	}
	return 1
}

// CountdownText renders a countdown the way the header shows it.
func CountdownText(days int) string {
	if days == 0 {
		return "就是今天！"
	}
	return strconv.Itoa(days) + " 天后"
}
