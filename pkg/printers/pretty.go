package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/stats"
	"tableflip.dev/lovenote/pkg/view"
)

const (
	timeLayout    = "01-02 15:04"
	commentIndent = 4
)

type PrettyPrint struct {
	// Out defaults to color.Output.
	Out io.Writer
	// Me is the viewing identity, used for the own-post and liked markers.
	Me string
	// ShowID prefixes each post with its id so it can be liked or
	// commented on from the command line.
	ShowID bool
	// ShowComments expands every comment thread.
	ShowComments bool
	// Width wraps post content; zero disables wrapping.
	Width int
	// Query is the active search, which changes the empty-feed text.
	Query string
}

var (
	idStyle      = color.New(color.FgHiYellow, color.Italic, color.Faint)
	titleStyle   = color.New(color.Bold, color.Underline)
	faintStyle   = color.New(color.Faint)
	authorStyle  = color.New(color.Bold)
	moodStyle    = color.New(color.FgMagenta)
	likedStyle   = color.New(color.FgHiRed, color.Bold)
	emptyStyle   = color.New(color.Faint, color.Italic)
	countdownHot = color.New(color.FgHiRed, color.Bold)
)

// Writer is where the printer writes.
func (pp *PrettyPrint) Writer() io.Writer {
	return pp.out()
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) NewLine() {
	fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	_, _ = titleStyle.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	w := pp.out()
	_, _ = titleStyle.Fprint(w, title)
	_, _ = faintStyle.Fprintf(w, " - 共 %d 条记录\n", count)
}

// Header prints the space name, who is writing, the days together and the
// upcoming anniversary and birthdays.
func (pp *PrettyPrint) Header(space *journal.Space, a stats.Aggregates) {
	if space == nil {
		return
	}
	w := pp.out()
	pp.TitleWithCount(space.SpaceName, a.TotalPosts)
	var line []string
	if pp.Me != "" {
		line = append(line, "我是 "+pp.Me)
	}
	if a.DaysTogether > 0 {
		line = append(line, fmt.Sprintf("在一起 %d 天", a.DaysTogether))
	}
	if len(line) > 0 {
		_, _ = faintStyle.Fprintln(w, strings.Join(line, " · "))
	}
	if a.NextAnniversaryDays != nil {
		pp.countdown("下一周年", *a.NextAnniversaryDays)
	}
	for _, b := range a.Birthdays {
		pp.countdown(b.Name+" 生日", b.Days)
	}
	pp.NewLine()
}

func (pp *PrettyPrint) countdown(label string, days int) {
	w := pp.out()
	style := faintStyle
	if days == 0 {
		style = countdownHot
	}
	fmt.Fprintf(w, "%s ", label)
	_, _ = style.Fprintln(w, stats.CountdownText(days))
}

// Feed prints posts in the given order.
func (pp *PrettyPrint) Feed(posts []journal.Post) {
	if len(posts) == 0 {
		text := "还没有记录"
		if pp.Query != "" {
			text = view.EmptyFeedText
		}
		_, _ = emptyStyle.Fprintf(pp.out(), " %s\n\n", text)
		return
	}
	for i := range posts {
		pp.Post(&posts[i])
	}
}

// Post prints one post with its like and comment counts.
func (pp *PrettyPrint) Post(p *journal.Post) {
	w := pp.out()
	if pp.ShowID {
		_, _ = idStyle.Fprintf(w, "%s ", p.ID)
	}
	_, _ = authorStyle.Fprint(w, p.AuthorName)
	if p.IsMine(pp.Me) {
		fmt.Fprint(w, "（我）")
	}
	_, _ = faintStyle.Fprintf(w, " %s %s", p.CreatedAt.Local().Format(timeLayout), p.PostType.Label())
	if label := p.MoodLabel(); label != "" {
		_, _ = moodStyle.Fprintf(w, " [%s]", label)
	}
	if p.IsPrivate {
		fmt.Fprint(w, " 🔒")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, indent.String(pp.wrap(p.Content), 2))

	heart := faintStyle
	if p.LikedBy(pp.Me) {
		heart = likedStyle
	}
	fmt.Fprint(w, "  ")
	_, _ = heart.Fprintf(w, "♥ %d", p.LikeCount())
	_, _ = faintStyle.Fprintf(w, "  💬 %d\n", len(p.Comments))

	if pp.ShowComments {
		pp.Comments(p.Comments)
	}
	fmt.Fprintln(w)
}

// Comments prints a thread oldest first.
func (pp *PrettyPrint) Comments(comments []journal.Comment) {
	w := pp.out()
	for _, c := range comments {
		head := fmt.Sprintf("%s %s", c.AuthorName, faintStyle.Sprint(c.CreatedAt.Local().Format(timeLayout)))
		fmt.Fprintln(w, indent.String(head, commentIndent))
		fmt.Fprintln(w, indent.String(pp.wrap(c.Content), commentIndent+2))
	}
}

func (pp *PrettyPrint) wrap(s string) string {
	if pp.Width <= 0 {
		return s
	}
	return wordwrap.String(s, pp.Width)
}
