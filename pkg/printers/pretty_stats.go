package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/lovenote/pkg/stats"
)

const barWidth = 20

var barStyle = color.New(color.FgHiRed)

// Stats prints the headline figures followed by the type, author and mood
// distributions. Bars share one scale so they compare across sections.
func (pp *PrettyPrint) Stats(a stats.Aggregates) {
	w := pp.out()

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("总帖数", a.TotalPosts)
	tbl.AddRow("总点赞", a.TotalLikes)
	tbl.AddRow("私密占比", fmt.Sprintf("%d%%", a.PrivacyPercent()))
	tbl.AddRow("日均发帖", fmt.Sprintf("%.2f", a.AvgPerDay))
	tbl.RightAlign(1)
	fmt.Fprintln(w, tbl)
	fmt.Fprintln(w)

	scale := a.Max()
	pp.distribution("类型分布", a.ByType, scale, stats.NoDataText)
	pp.distribution("双方活跃", a.ByAuthor, scale, stats.NoDataText)
	pp.distribution("心情分布", a.ByMood, scale, stats.NoMoodDataText)
}

func (pp *PrettyPrint) distribution(title string, d stats.Distribution, scale int, empty string) {
	w := pp.out()
	pp.Title(title)
	if d.Empty() {
		_, _ = emptyStyle.Fprintf(w, " %s\n\n", empty)
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, b := range d.Buckets {
		tbl.AddRow(b.Label, barStyle.Sprint(Bar(b.Count, scale, barWidth)), b.Count)
	}
	fmt.Fprintln(w, tbl)
	fmt.Fprintln(w)
}

// Bar renders count as a bar proportional to scale, at most width cells.
// Any non-zero count gets at least one cell.
func Bar(count, scale, width int) string {
	if count <= 0 || scale <= 0 || width <= 0 {
		return ""
	}
	n := count * width / scale
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}
