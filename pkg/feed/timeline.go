package feed

import (
	"sort"
	"time"

	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/timeutil"
)

// DayGroup is the posts created on one calendar day.
type DayGroup struct {
	Day   string
	Posts []journal.Post
}

// Timeline buckets posts by the calendar day of created_at in loc. Groups
// run oldest day first; posts keep their order within a group.
func Timeline(posts []journal.Post, loc *time.Location) []DayGroup {
	index := map[string]int{}
	var groups []DayGroup
	for _, p := range posts {
		day := timeutil.DayKey(p.CreatedAt, loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		groups[i].Posts = append(groups[i].Posts, p)
	}
	// ISO day keys sort chronologically.
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Day < groups[j].Day
	})
	return groups
}
