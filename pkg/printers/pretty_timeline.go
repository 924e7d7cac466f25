package printers

import (
	"time"

	"tableflip.dev/lovenote/pkg/feed"
	"tableflip.dev/lovenote/pkg/timeutil"
)

var weekdays = [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// Timeline prints posts grouped by calendar day, oldest day first.
func (pp *PrettyPrint) Timeline(groups []feed.DayGroup) {
	w := pp.out()
	if len(groups) == 0 {
		_, _ = emptyStyle.Fprint(w, " 还没有记录\n\n")
		return
	}
	for _, g := range groups {
		_, _ = titleStyle.Fprint(w, DayTitle(g.Day))
		_, _ = faintStyle.Fprintf(w, " · %d 条\n", len(g.Posts))
		for i := range g.Posts {
			pp.Post(&g.Posts[i])
		}
	}
}

// DayTitle renders an ISO day key as "2024年3月9日 周六". Keys that do not
// parse are returned unchanged.
func DayTitle(day string) string {
	d, err := timeutil.ParseDate(day)
	if err != nil {
		return day
	}
	t := d.In(time.UTC)
	return t.Format("2006年1月2日") + " " + weekdays[t.Weekday()]
}
