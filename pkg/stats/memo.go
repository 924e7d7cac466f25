package stats

import (
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/timeutil"
)

// Memo caches the last Compute result. The key covers every input that can
// change the output, so a hit is indistinguishable from recomputing.
type Memo struct {
	mu    sync.Mutex
	key   uint64
	valid bool
	last  Aggregates
}

// Compute returns the cached aggregates when the inputs are unchanged.
func (m *Memo) Compute(posts []journal.Post, space *journal.Space, now time.Time) Aggregates {
	key := fingerprint(posts, space, now)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.key == key {
		return m.last
	}
	m.last = Compute(posts, space, now)
	m.key = key
	m.valid = true
	return m.last
}

// fingerprint hashes the inputs Compute reads. Of now only the calendar day
// and the active day span matter.
func fingerprint(posts []journal.Post, space *journal.Space, now time.Time) uint64 {
	d := xxhash.New()
	sep := []byte{0}
	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.Write(sep)
	}

	write(now.Format(timeutil.LayoutISO))
	write(strconv.Itoa(activeDays(posts, now)))
	if space != nil {
		write(space.ID)
		write(space.Partner1Name)
		write(space.Partner2Name)
		for _, date := range []*timeutil.Date{space.AnniversaryDate, space.Partner1Birthday, space.Partner2Birthday} {
			if date != nil {
				write(date.String())
			} else {
				write("-")
			}
		}
	}
	for i := range posts {
		p := &posts[i]
		write(p.ID)
		write(p.AuthorName)
		write(string(p.PostType))
		if p.MoodType != nil {
			write(string(*p.MoodType))
		} else {
			write("-")
		}
		write(strconv.FormatBool(p.IsPrivate))
		write(strconv.FormatInt(p.CreatedAt.UnixNano(), 10))
		write(strconv.Itoa(len(p.Likes)))
		write(strconv.Itoa(len(p.Comments)))
	}
	return d.Sum64()
}
