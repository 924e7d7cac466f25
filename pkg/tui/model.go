// Package tui is the interactive terminal front end. It renders the client
// service's view state and turns key presses into service calls.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/view"
)

// focus is which widget of the main view takes key presses.
type focus int

const (
	focusFeed focus = iota
	focusComposer
	focusSearch
	focusComment
)

// Create-form fields, in tab order.
const (
	fieldName = iota
	fieldSecret
	fieldPartner1
	fieldPartner2
	fieldAnniversary
	fieldBirthday1
	fieldBirthday2
	fieldCount
)

// messages
type (
	// feedChangedMsg is sent whenever the service replaces the feed.
	feedChangedMsg struct{ version uint64 }
	// doneMsg reports a finished service call.
	doneMsg struct {
		action string
		postID string
		err    error
	}
)

// Model is the Bubble Tea model. The view.State owned by the service is the
// source of truth; the widgets here only mirror it while editing.
type Model struct {
	svc   *app.Service
	ctx   context.Context
	theme Theme

	width  int
	height int

	welcomeCursor int

	create      []textinput.Model
	createFocus int

	login textinput.Model

	identityCursor int

	focus    focus
	cursor   int
	composer textarea.Model
	search   textinput.Model
	comment  textinput.Model
	// commentFor is the post the comment input is bound to.
	commentFor string

	status   string
	quitting bool
}

// New builds the model over svc. The service should already be started.
func New(ctx context.Context, svc *app.Service) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		svc:    svc,
		ctx:    ctx,
		theme:  DefaultTheme(),
		create: newCreateInputs(),
		login:  newInput("输入你们的专属密码", 128),
	}
	m.login.EchoMode = textinput.EchoPassword
	m.login.EchoCharacter = '•'

	m.search = newInput(view.SearchPlaceholder, 128)
	m.search.Prompt = "🔍 "
	m.comment = newInput(view.CommentPlaceholder, 500)
	m.comment.Prompt = "↳ "

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.Prompt = ""
	m.composer = ta
	m.syncComposer()
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	return ti
}

func newCreateInputs() []textinput.Model {
	placeholders := [fieldCount]string{
		fieldName:        "给你们的空间起个名字",
		fieldSecret:      "设置一个只有你们知道的密码",
		fieldPartner1:    "第一个人的名字",
		fieldPartner2:    "第二个人的名字",
		fieldAnniversary: "YYYY-MM-DD",
		fieldBirthday1:   "YYYY-MM-DD",
		fieldBirthday2:   "YYYY-MM-DD",
	}
	inputs := make([]textinput.Model, fieldCount)
	for i, p := range placeholders {
		inputs[i] = newInput(p, 64)
	}
	inputs[fieldName].Focus()
	return inputs
}

// createLabels are shown beside the create-form fields.
func (m Model) createLabels() [fieldCount]string {
	p1 := m.create[fieldPartner1].Value()
	if p1 == "" {
		p1 = "TA"
	}
	p2 := m.create[fieldPartner2].Value()
	if p2 == "" {
		p2 = "你"
	}
	return [fieldCount]string{
		fieldName:        "空间名称",
		fieldSecret:      "专属密码",
		fieldPartner1:    "TA的名字",
		fieldPartner2:    "你的名字",
		fieldAnniversary: "在一起的日子",
		fieldBirthday1:   p1 + "的生日",
		fieldBirthday2:   p2 + "的生日",
	}
}

// syncComposer copies the service composer into the widgets.
func (m *Model) syncComposer() {
	c := m.svc.Views().Composer()
	if m.composer.Value() != c.Content {
		m.composer.SetValue(c.Content)
	}
	m.composer.Placeholder = view.Placeholder(c.PostType)
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// call runs f off the UI goroutine and reports back with a doneMsg.
func (m Model) call(action string, f func(ctx context.Context) error) tea.Cmd {
	return m.callFor(action, "", f)
}

// callFor is call for an action on one post.
func (m Model) callFor(action, postID string, f func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{action: action, postID: postID, err: f(ctx)}
	}
}

// posts is what the feed tab lists.
func (m Model) posts() []journal.Post {
	return m.svc.Feed()
}

// selected returns the post under the cursor.
func (m Model) selected() (journal.Post, bool) {
	posts := m.posts()
	if m.cursor < 0 || m.cursor >= len(posts) {
		return journal.Post{}, false
	}
	return posts[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.posts())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
