package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/timeutil"
	"tableflip.dev/lovenote/pkg/view"
)

// Update handles messages and keybindings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applySizes()
		return m, nil

	case feedChangedMsg:
		m.clampCursor()
		return m, nil

	case doneMsg:
		return m.done(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.svc.Views().Current() {
		case view.Create:
			return m.updateCreate(msg)
		case view.Login:
			return m.updateLogin(msg)
		case view.Select:
			return m.updateSelect(msg)
		case view.Main:
			return m.updateMain(msg)
		default:
			return m.updateWelcome(msg)
		}
	}
	return m, nil
}

func (m *Model) applySizes() {
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	m.composer.SetWidth(w)
	m.search.Width = w - 4
	m.comment.Width = w - 4
	for i := range m.create {
		m.create[i].Width = 32
	}
	m.login.Width = 32
}

func (m Model) done(msg doneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// The service has already parked the user-facing message where it
		// is shown; like and comment failures only get a status line.
		switch msg.action {
		case "like":
			m.status = "点赞失败"
		case "comment":
			m.status = "评论失败"
		}
		return m, nil
	}
	m.status = ""
	switch msg.action {
	case "create", "login":
		for i := range m.create {
			m.create[i].Reset()
		}
		m.identityCursor = 0
	case "identity":
		m.focus = focusFeed
		m.cursor = 0
	case "post":
		m.composer.Reset()
		m.syncComposer()
		m.composer.Blur()
		m.focus = focusFeed
		m.cursor = 0
	case "comment":
		// The input may have moved on to another post meanwhile.
		if m.commentFor != msg.postID {
			break
		}
		m.comment.Reset()
		m.comment.Blur()
		m.focus = focusFeed
		m.commentFor = ""
	case "logout":
		m.focus = focusFeed
		m.cursor = 0
		m.search.Reset()
	}
	m.clampCursor()
	return m, nil
}

func (m Model) updateWelcome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k", "down", "j", "tab":
		m.welcomeCursor = 1 - m.welcomeCursor
	case "c":
		return m.openCreate()
	case "l":
		return m.openLogin()
	case "enter":
		if m.welcomeCursor == 0 {
			return m.openCreate()
		}
		return m.openLogin()
	}
	return m, nil
}

func (m Model) openCreate() (tea.Model, tea.Cmd) {
	m.svc.Views().Navigate(view.Create)
	for i := range m.create {
		m.create[i].Blur()
	}
	m.createFocus = fieldName
	return m, m.create[fieldName].Focus()
}

func (m Model) openLogin() (tea.Model, tea.Cmd) {
	m.svc.Views().Navigate(view.Login)
	m.login.SetValue(m.svc.Views().LastSecret())
	m.login.CursorEnd()
	return m, m.login.Focus()
}

func (m Model) back() (tea.Model, tea.Cmd) {
	m.svc.Views().Navigate(view.Welcome)
	m.login.Blur()
	for i := range m.create {
		m.create[i].Blur()
	}
	return m, nil
}

func (m Model) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.svc.Views().Loading(view.ActionCreate) {
		return m, nil
	}
	key := msg.String()
	switch {
	case key == "esc":
		return m.back()
	case key == "tab", key == "down":
		return m.focusField(m.createFocus + 1)
	case key == "shift+tab", key == "up":
		return m.focusField(m.createFocus - 1)
	case key == "enter" && m.createFocus < fieldCount-1:
		return m.focusField(m.createFocus + 1)
	case key == "enter", view.IsSubmitShortcut(key):
		fields, err := m.createFields()
		if err != nil {
			m.svc.Views().SetError("日期格式应为 YYYY-MM-DD")
			return m, nil
		}
		return m, m.call("create", func(ctx context.Context) error {
			_, err := m.svc.CreateSpace(ctx, fields)
			return err
		})
	}
	var cmd tea.Cmd
	m.create[m.createFocus], cmd = m.create[m.createFocus].Update(msg)
	return m, cmd
}

func (m Model) focusField(i int) (tea.Model, tea.Cmd) {
	i = (i + fieldCount) % fieldCount
	m.create[m.createFocus].Blur()
	m.createFocus = i
	return m, m.create[i].Focus()
}

func (m Model) createFields() (journal.SpaceFields, error) {
	f := journal.SpaceFields{
		SpaceName:    m.create[fieldName].Value(),
		Secret:       m.create[fieldSecret].Value(),
		Partner1Name: m.create[fieldPartner1].Value(),
		Partner2Name: m.create[fieldPartner2].Value(),
	}
	var err error
	if f.AnniversaryDate, err = timeutil.ParseOptionalDate(m.create[fieldAnniversary].Value()); err != nil {
		return f, err
	}
	if f.Partner1Birthday, err = timeutil.ParseOptionalDate(m.create[fieldBirthday1].Value()); err != nil {
		return f, err
	}
	if f.Partner2Birthday, err = timeutil.ParseOptionalDate(m.create[fieldBirthday2].Value()); err != nil {
		return f, err
	}
	return f, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.svc.Views().Loading(view.ActionLogin) {
		return m, nil
	}
	switch key := msg.String(); {
	case key == "esc":
		return m.back()
	case key == "enter", view.IsSubmitShortcut(key):
		secret := m.login.Value()
		return m, m.call("login", func(ctx context.Context) error {
			_, err := m.svc.Login(ctx, secret)
			return err
		})
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)
	return m, cmd
}

func (m Model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	partners := m.svc.Space().Partners()
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k", "down", "j", "tab":
		m.identityCursor = 1 - m.identityCursor
	case "1":
		m.identityCursor = 0
	case "2":
		m.identityCursor = 1
	case "enter":
		if m.identityCursor < len(partners) {
			name := partners[m.identityCursor]
			return m, m.call("identity", func(ctx context.Context) error {
				return m.svc.SelectIdentity(ctx, name)
			})
		}
	case "ctrl+x":
		return m.logout()
	}
	return m, nil
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	return m, m.call("logout", func(context.Context) error {
		return m.svc.Logout()
	})
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusComposer:
		return m.updateComposer(msg)
	case focusSearch:
		return m.updateSearch(msg)
	case focusComment:
		return m.updateComment(msg)
	}

	views := m.svc.Views()
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		views.NextTab()
	case "1":
		views.SetTab(view.TabFeed)
	case "2":
		views.SetTab(view.TabTimeline)
	case "3":
		views.SetTab(view.TabStats)
	case "/":
		views.SetTab(view.TabFeed)
		m.focus = focusSearch
		return m, m.search.Focus()
	case "n", "i":
		views.SetTab(view.TabFeed)
		m.focus = focusComposer
		return m, m.composer.Focus()
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "g":
		m.cursor = 0
	case "G":
		m.cursor = len(m.posts()) - 1
		m.clampCursor()
	case "l", " ":
		if p, ok := m.selected(); ok {
			id := p.ID
			return m, m.call("like", func(ctx context.Context) error {
				_, err := m.svc.ToggleLike(ctx, id)
				return err
			})
		}
	case "c":
		if p, ok := m.selected(); ok {
			views.ToggleComments(p.ID)
		}
	case "r":
		if p, ok := m.selected(); ok {
			if !views.Expanded(p.ID) {
				views.ToggleComments(p.ID)
			}
			m.commentFor = p.ID
			m.comment.SetValue(views.Draft(p.ID))
			m.comment.CursorEnd()
			m.focus = focusComment
			return m, m.comment.Focus()
		}
	case "R":
		return m, m.call("reload", m.svc.Reload)
	case "ctrl+x":
		return m.logout()
	}
	return m, nil
}

func (m Model) updateComposer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	views := m.svc.Views()
	key := msg.String()
	switch {
	case key == "esc":
		m.composer.Blur()
		m.focus = focusFeed
		return m, nil
	case view.IsSubmitShortcut(key):
		if views.Loading(view.ActionPost) || !views.Composer().Submittable() {
			return m, nil
		}
		return m, m.call("post", m.svc.PostComposer)
	case key == "ctrl+t":
		views.SetComposer(views.Composer().NextType())
		m.syncComposer()
		return m, nil
	case key == "ctrl+o":
		c := views.Composer()
		if c.PostType == journal.TypeMood {
			views.SetComposer(c.NextMood())
		}
		return m, nil
	case key == "ctrl+p":
		c := views.Composer()
		c.IsPrivate = !c.IsPrivate
		views.SetComposer(c)
		return m, nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	c := views.Composer()
	c.Content = m.composer.Value()
	views.SetComposer(c)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.search.Blur()
		m.focus = focusFeed
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.svc.Views().SetSearch(m.search.Value())
	m.cursor = 0
	m.clampCursor()
	return m, cmd
}

func (m Model) updateComment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case key == "esc":
		// The draft stays with its post.
		m.comment.Blur()
		m.focus = focusFeed
		return m, nil
	case key == "enter", view.IsSubmitShortcut(key):
		id := m.commentFor
		if strings.TrimSpace(m.svc.Views().Draft(id)) == "" {
			return m, nil
		}
		return m, m.callFor("comment", id, func(ctx context.Context) error {
			return m.svc.SubmitComment(ctx, id)
		})
	}
	var cmd tea.Cmd
	m.comment, cmd = m.comment.Update(msg)
	m.svc.Views().SetDraft(m.commentFor, m.comment.Value())
	return m, cmd
}
