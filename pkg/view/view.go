// Package view tracks the client's local interaction state: which screen is
// shown, the active tab, the search filter, per-post comment panels and
// drafts, the composer, and the transient error. None of it is persisted.
package view

import (
	"strings"
	"sync"

	"tableflip.dev/lovenote/pkg/journal"
)

// View is a top-level screen.
type View string

const (
	Welcome View = "welcome"
	Create  View = "create"
	Login   View = "login"
	Select  View = "select"
	Main    View = "main"
)

// Tab is a pane of the main view.
type Tab string

const (
	TabFeed     Tab = "feed"
	TabTimeline Tab = "timeline"
	TabStats    Tab = "stats"
)

// Tabs returns the tabs in display order.
func Tabs() []Tab {
	return []Tab{TabFeed, TabTimeline, TabStats}
}

// Label is the tab title.
func (t Tab) Label() string {
	switch t {
	case TabTimeline:
		return "时光轴"
	case TabStats:
		return "统计"
	default:
		return "动态"
	}
}

// Action is a user action that owns a loading flag.
type Action string

const (
	ActionCreate Action = "create"
	ActionLogin  Action = "login"
	ActionPost   Action = "post"
)

const (
	SearchPlaceholder  = "搜索内容、作者、心情..."
	CommentPlaceholder = "写下你的回应..."
	// EmptyFeedText is shown when no post survives the search.
	EmptyFeedText = "没有匹配的记录，换个关键词试试～"
)

// ComposerTypes are the post types offered by the composer, in button order.
func ComposerTypes() []journal.PostType {
	return []journal.PostType{journal.TypeText, journal.TypeMood, journal.TypeMemory}
}

// TypeButton is the composer's button label for t.
func TypeButton(t journal.PostType) string {
	switch t {
	case journal.TypeMood:
		return "😊 心情"
	case journal.TypeMemory:
		return "💕 回忆"
	case journal.TypeText:
		return "💭 文字"
	}
	return t.Label()
}

// Placeholder is the composer hint for t.
func Placeholder(t journal.PostType) string {
	switch t {
	case journal.TypeMood:
		return "记录现在的心情..."
	case journal.TypeMemory:
		return "记录美好的回忆..."
	}
	return "分享此刻的想法..."
}

// Composer is the new-post form.
type Composer struct {
	Content   string
	PostType  journal.PostType
	Mood      journal.Mood
	IsPrivate bool
}

// NewComposer returns the composer as shown after posting.
func NewComposer() Composer {
	return Composer{PostType: journal.TypeText, Mood: journal.DefaultMood}
}

// Submittable reports whether the composer holds something to post.
func (c Composer) Submittable() bool {
	return ComposerSubmittable(c.Content)
}

// NextType cycles the composer through ComposerTypes.
func (c Composer) NextType() Composer {
	types := ComposerTypes()
	for i, t := range types {
		if t == c.PostType {
			c.PostType = types[(i+1)%len(types)]
			return c
		}
	}
	c.PostType = types[0]
	return c
}

// NextMood cycles the mood through journal.AllMoods.
func (c Composer) NextMood() Composer {
	moods := journal.AllMoods()
	for i, m := range moods {
		if m == c.Mood {
			c.Mood = moods[(i+1)%len(moods)]
			return c
		}
	}
	c.Mood = moods[0]
	return c
}

// ComposerSubmittable reports whether text is worth submitting.
func ComposerSubmittable(text string) bool {
	return strings.TrimSpace(text) != ""
}

// IsSubmitShortcut reports whether key, as bubbletea names it, submits the
// composer or a comment draft.
func IsSubmitShortcut(key string) bool {
	switch key {
	case "ctrl+enter", "ctrl+s", "alt+enter":
		return true
	}
	return false
}

// State is safe for concurrent use.
type State struct {
	mu sync.Mutex

	view       View
	tab        Tab
	search     string
	expanded   map[string]bool
	drafts     map[string]string
	composer   Composer
	err        string
	loading    map[Action]bool
	lastSecret string
}

// New returns the initial state on the welcome view.
func New() *State {
	s := &State{}
	s.resetLocked()
	return s
}

func (s *State) resetLocked() {
	s.view = Welcome
	s.tab = TabFeed
	s.search = ""
	s.expanded = map[string]bool{}
	s.drafts = map[string]string{}
	s.composer = NewComposer()
	s.err = ""
	s.loading = map[Action]bool{}
}

// Reset returns to the welcome view, keeping only the login prefill.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Navigate switches views. Moving to a different view clears the error.
func (s *State) Navigate(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != v {
		s.err = ""
	}
	s.view = v
}

// Current returns the shown view.
func (s *State) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetTab selects a main-view tab.
func (s *State) SetTab(t Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = t
}

// Tab returns the active tab.
func (s *State) Tab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

// NextTab cycles to the following tab.
func (s *State) NextTab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	tabs := Tabs()
	for i, t := range tabs {
		if t == s.tab {
			s.tab = tabs[(i+1)%len(tabs)]
			return s.tab
		}
	}
	s.tab = TabFeed
	return s.tab
}

// SetSearch replaces the search query.
func (s *State) SetSearch(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = q
}

// Search returns the search query.
func (s *State) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// ToggleComments flips the comment panel of postID and returns whether it is
// now expanded.
func (s *State) ToggleComments(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expanded[postID] {
		delete(s.expanded, postID)
		return false
	}
	s.expanded[postID] = true
	return true
}

// Expanded reports whether postID's comment panel is open.
func (s *State) Expanded(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[postID]
}

// SetDraft stores the comment draft for postID.
func (s *State) SetDraft(postID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == "" {
		delete(s.drafts, postID)
		return
	}
	s.drafts[postID] = text
}

// Draft returns the comment draft for postID.
func (s *State) Draft(postID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[postID]
}

// ClearDraft drops the draft for postID only.
func (s *State) ClearDraft(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, postID)
}

// Composer returns the composer contents.
func (s *State) Composer() Composer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer
}

// SetComposer replaces the composer contents.
func (s *State) SetComposer(c Composer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composer = c
}

// ResetComposer empties the composer after a successful post.
func (s *State) ResetComposer() {
	s.SetComposer(NewComposer())
}

// SetError records a transient error for the current view.
func (s *State) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

// ClearError drops the transient error.
func (s *State) ClearError() {
	s.SetError("")
}

// Error returns the transient error, or "".
func (s *State) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SetLoading flags a in flight.
func (s *State) SetLoading(a Action, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.loading[a] = true
		return
	}
	delete(s.loading, a)
}

// Loading reports whether a is in flight.
func (s *State) Loading(a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading[a]
}

// SetLastSecret sets the login form prefill.
func (s *State) SetLastSecret(secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSecret = secret
}

// LastSecret returns the login form prefill.
func (s *State) LastSecret() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSecret
}
