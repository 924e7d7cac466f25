package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/livesync"
	"tableflip.dev/lovenote/pkg/printers"
	"tableflip.dev/lovenote/pkg/stats"
	"tableflip.dev/lovenote/pkg/view"
)

const (
	postTimeLayout = "2006/1/2 15:04"
	barCells       = 24
)

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var body string
	switch m.svc.Views().Current() {
	case view.Create:
		body = m.viewCreate()
	case view.Login:
		body = m.viewLogin()
	case view.Select:
		body = m.viewSelect()
	case view.Main:
		body = m.viewMain()
	default:
		body = m.viewWelcome()
	}
	return body
}

func (m Model) title() string {
	return Gradient(appTitle, colorRose, colorPlum)
}

func (m Model) errorLine() string {
	if msg := m.svc.Views().Error(); msg != "" {
		return m.theme.Error.Render("⚠ "+msg) + "\n"
	}
	return ""
}

func (m Model) viewWelcome() string {
	choices := []string{"创建情侣空间", "进入现有空间"}
	var b strings.Builder
	b.WriteString(m.title() + "\n")
	b.WriteString(m.theme.Subtitle.Render(appSubtitle) + "\n\n")
	for i, c := range choices {
		style := m.theme.Button
		if i == m.welcomeCursor {
			style = m.theme.ActiveButton
		}
		b.WriteString(style.Render(c) + "\n")
	}
	b.WriteString("\n" + m.errorLine())
	b.WriteString(m.theme.Help.Render("c 创建 · l 进入 · enter 确认 · q 退出"))
	return m.theme.Panel.Render(b.String())
}

func (m Model) viewCreate() string {
	var b strings.Builder
	b.WriteString(m.title() + "\n")
	b.WriteString(m.theme.Title.Render("创建情侣空间") + "\n\n")
	labels := m.createLabels()
	for i := range m.create {
		label := m.theme.Label.Render(fmt.Sprintf("%-8s", labels[i]))
		if i != m.createFocus {
			label = m.theme.Faint.Render(fmt.Sprintf("%-8s", labels[i]))
		}
		b.WriteString(label + " " + m.create[i].View() + "\n")
	}
	b.WriteString("\n" + m.errorLine())
	if m.svc.Views().Loading(view.ActionCreate) {
		b.WriteString(m.theme.Faint.Render("创建中...") + "\n")
	}
	b.WriteString(m.theme.Help.Render("tab 下一项 · ctrl+s 创建空间 · esc 返回"))
	return m.theme.Panel.Render(b.String())
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(m.title() + "\n")
	b.WriteString(m.theme.Title.Render("进入情侣空间") + "\n\n")
	b.WriteString(m.theme.Label.Render("专属密码") + " " + m.login.View() + "\n\n")
	b.WriteString(m.errorLine())
	if m.svc.Views().Loading(view.ActionLogin) {
		b.WriteString(m.theme.Faint.Render("登录中...") + "\n")
	}
	b.WriteString(m.theme.Help.Render("enter 进入空间 · esc 返回"))
	return m.theme.Panel.Render(b.String())
}

func (m Model) viewSelect() string {
	sp := m.svc.Space()
	var b strings.Builder
	b.WriteString(m.title() + "\n")
	if sp != nil {
		b.WriteString(m.theme.Subtitle.Render(sp.SpaceName) + "\n\n")
	}
	b.WriteString(m.theme.Title.Render("选择你的身份") + "\n")
	b.WriteString(m.theme.Faint.Render("你是：") + "\n")
	for i, name := range sp.Partners() {
		style := m.theme.Button
		if i == m.identityCursor {
			style = m.theme.ActiveButton
		}
		b.WriteString(style.Render(name) + "\n")
	}
	b.WriteString("\n" + m.errorLine())
	b.WriteString(m.theme.Help.Render("↑/↓ 选择 · enter 确认 · ctrl+x 退出空间"))
	return m.theme.Panel.Render(b.String())
}

func (m Model) viewMain() string {
	views := m.svc.Views()
	a := m.svc.Stats()

	header := m.header(a)
	tabs := m.tabs(views.Tab())
	help := m.help()

	var body string
	switch views.Tab() {
	case view.TabTimeline:
		body = m.timeline()
	case view.TabStats:
		body = m.statsBody(a)
	default:
		body = m.feedBody()
	}

	top := lipgloss.JoinVertical(lipgloss.Left, header, tabs, m.errorLine())
	if m.height > 0 {
		avail := m.height - lipgloss.Height(top) - lipgloss.Height(help) - 1
		body = clip(body, avail)
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, body, help)
}

func (m Model) header(a stats.Aggregates) string {
	sp := m.svc.Space()
	if sp == nil {
		return m.title()
	}
	line := []string{fmt.Sprintf("共 %d 条记录", a.TotalPosts)}
	if a.DaysTogether > 0 {
		line = append(line, fmt.Sprintf("在一起 %d 天", a.DaysTogether))
	}
	if me := m.svc.Identity(); me != "" {
		line = append(line, "我是 "+me)
	}
	out := m.title() + "  " + m.theme.Title.Render(sp.SpaceName) + "\n" +
		m.theme.Faint.Render(strings.Join(line, " · "))

	var dates []string
	if a.NextAnniversaryDays != nil {
		dates = append(dates, "下一周年 "+stats.CountdownText(*a.NextAnniversaryDays))
	}
	for _, c := range a.Birthdays {
		dates = append(dates, c.Name+" 生日 "+stats.CountdownText(c.Days))
	}
	if len(dates) > 0 {
		out += "\n" + m.theme.Mood.Render(strings.Join(dates, "   "))
	}
	if m.svc.SyncState() == livesync.Armed {
		out += m.theme.Faint.Render("  ● 实时")
	}
	return out
}

func (m Model) tabs(active view.Tab) string {
	parts := make([]string, 0, 3)
	for _, t := range view.Tabs() {
		style := m.theme.Tab
		if t == active {
			style = m.theme.ActiveTab
		}
		parts = append(parts, style.Render(t.Label()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) help() string {
	var text string
	switch m.focus {
	case focusComposer:
		text = "ctrl+s 发布 · ctrl+t 类型 · ctrl+o 心情 · ctrl+p 私密 · esc 完成"
	case focusSearch:
		text = "输入关键词 · enter/esc 完成"
	case focusComment:
		text = "enter 发送 · esc 暂存草稿"
	default:
		text = "tab 切换 · n 发帖 · / 搜索 · j/k 移动 · l 点赞 · c 评论 · r 回复 · R 刷新 · ctrl+x 退出空间 · q 离开"
	}
	if m.status != "" {
		text = m.status + " · " + text
	}
	return m.theme.Help.Render(text)
}

func (m Model) composerView() string {
	views := m.svc.Views()
	c := views.Composer()
	var buttons []string
	for _, t := range view.ComposerTypes() {
		style := m.theme.Button
		if t == c.PostType {
			style = m.theme.ActiveButton
		}
		buttons = append(buttons, style.Render(view.TypeButton(t)))
	}
	if c.PostType == journal.TypeMood {
		label, _ := c.Mood.Label()
		buttons = append(buttons, m.theme.Mood.Render("["+label+"]"))
	}
	private := m.theme.Button.Render("🔓 私密")
	if c.IsPrivate {
		private = m.theme.ActiveButton.Render("🔒 私密")
	}
	buttons = append(buttons, private)

	row := lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
	box := m.theme.Card
	if m.focus == focusComposer {
		box = m.theme.SelectedCard
	}
	out := row + "\n" + m.composer.View()
	if views.Loading(view.ActionPost) {
		out += "\n" + m.theme.Faint.Render("发布中...")
	}
	return box.Render(out)
}

func (m Model) feedBody() string {
	views := m.svc.Views()
	parts := []string{m.composerView(), m.search.View()}

	posts := m.posts()
	if len(posts) == 0 {
		text := "还没有记录，写下第一条吧"
		if views.Search() != "" {
			text = view.EmptyFeedText
		}
		parts = append(parts, m.theme.Faint.Render(text))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	cards := make([]string, len(posts))
	for i := range posts {
		cards[i] = m.card(&posts[i], i == m.cursor)
	}
	fixed := lipgloss.JoinVertical(lipgloss.Left, parts...)
	avail := 0
	if m.height > 0 {
		avail = m.height - lipgloss.Height(fixed) - 12
	}
	parts = append(parts, window(cards, m.cursor, avail)...)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) card(p *journal.Post, selected bool) string {
	views := m.svc.Views()
	me := m.svc.Identity()

	head := m.theme.Author.Render(p.AuthorName)
	if p.IsMine(me) {
		head += "（我）"
	}
	head += " " + m.theme.Faint.Render(p.CreatedAt.In(m.svc.Location()).Format(postTimeLayout)+" "+p.PostType.Label())
	if label := p.MoodLabel(); label != "" {
		head += " " + m.theme.Mood.Render("["+label+"]")
	}
	if p.IsPrivate {
		head += " 🔒"
	}

	width := m.width - 8
	if width < 20 {
		width = 60
	}
	content := lipgloss.NewStyle().Width(width).Render(p.Content)

	heart := m.theme.Faint.Render(fmt.Sprintf("🤍 %d", p.LikeCount()))
	if p.LikedBy(me) {
		heart = m.theme.Liked.Render(fmt.Sprintf("❤️ %d", p.LikeCount()))
	}
	foot := heart + "  " + m.theme.Faint.Render(fmt.Sprintf("💬 %d", len(p.Comments)))

	lines := []string{head, content, foot}
	if views.Expanded(p.ID) {
		for _, c := range p.Comments {
			lines = append(lines, m.theme.Faint.Render("  "+c.AuthorName+": ")+c.Content)
		}
		if m.focus == focusComment && m.commentFor == p.ID {
			lines = append(lines, m.comment.View())
		} else if d := views.Draft(p.ID); d != "" {
			lines = append(lines, m.theme.Faint.Render("  草稿: "+d))
		}
	}

	style := m.theme.Card
	if selected {
		style = m.theme.SelectedCard
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) timeline() string {
	groups := m.svc.Timeline()
	if len(groups) == 0 {
		return m.theme.Faint.Render(view.EmptyFeedText)
	}
	var b strings.Builder
	for _, g := range groups {
		b.WriteString(m.theme.Label.Render("● "+printers.DayTitle(g.Day)) + "\n")
		for _, p := range g.Posts {
			line := fmt.Sprintf("  %s %s",
				m.theme.Faint.Render(p.CreatedAt.In(m.svc.Location()).Format("15:04")),
				m.theme.Author.Render(p.AuthorName))
			if label := p.MoodLabel(); label != "" {
				line += " " + m.theme.Mood.Render("["+label+"]")
			}
			if p.IsPrivate {
				line += " 🔒"
			}
			b.WriteString(line + "  " + firstLine(p.Content) + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) statsBody(a stats.Aggregates) string {
	figure := func(title, value string) string {
		return m.theme.Card.Render(m.theme.Faint.Render(title) + "\n" + m.theme.Label.Render(value))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		figure("总帖数", fmt.Sprint(a.TotalPosts)),
		figure("总点赞", fmt.Sprint(a.TotalLikes)),
		figure("私密占比", fmt.Sprintf("%d%%", a.PrivacyPercent())),
		figure("日均发帖", fmt.Sprintf("%.2f", a.AvgPerDay)),
	)
	scale := a.Max()
	return lipgloss.JoinVertical(lipgloss.Left,
		cards,
		m.distribution("类型分布", a.ByType, scale, stats.NoDataText),
		m.distribution("双方活跃", a.ByAuthor, scale, stats.NoDataText),
		m.distribution("心情分布", a.ByMood, scale, stats.NoMoodDataText),
	)
}

func (m Model) distribution(title string, d stats.Distribution, scale int, empty string) string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(title) + "\n")
	if d.Empty() {
		b.WriteString(m.theme.Faint.Render("  "+empty) + "\n")
		return b.String()
	}
	width := 0
	for _, bk := range d.Buckets {
		if w := lipgloss.Width(bk.Label); w > width {
			width = w
		}
	}
	for _, bk := range d.Buckets {
		pad := strings.Repeat(" ", width-lipgloss.Width(bk.Label))
		b.WriteString(fmt.Sprintf("  %s%s %s %d\n", bk.Label, pad,
			m.theme.Bar.Render(printers.Bar(bk.Count, scale, barCells)), bk.Count))
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// window picks the cards surrounding selected that fit in avail lines. A
// non-positive avail keeps every card.
func window(cards []string, selected, avail int) []string {
	if avail <= 0 || len(cards) == 0 {
		return cards
	}
	if selected < 0 {
		selected = 0
	}
	if selected >= len(cards) {
		selected = len(cards) - 1
	}
	start, end := selected, selected+1
	used := lipgloss.Height(cards[selected])
	for {
		grew := false
		if end < len(cards) && used+lipgloss.Height(cards[end]) <= avail {
			used += lipgloss.Height(cards[end])
			end++
			grew = true
		}
		if start > 0 && used+lipgloss.Height(cards[start-1]) <= avail {
			start--
			used += lipgloss.Height(cards[start])
			grew = true
		}
		if !grew {
			break
		}
	}
	return cards[start:end]
}

// clip keeps the first n lines of s.
func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
