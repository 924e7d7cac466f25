// Package app is the client service shared by the CLI, the TUI and the MCP
// server. It ties the session store, the gateway, the post feed, the
// aggregates and live sync together, and records what the user should see
// in the view state.
package app

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"tableflip.dev/lovenote/pkg/feed"
	"tableflip.dev/lovenote/pkg/gateway"
	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/livesync"
	"tableflip.dev/lovenote/pkg/session"
	"tableflip.dev/lovenote/pkg/stats"
	"tableflip.dev/lovenote/pkg/timeutil"
	"tableflip.dev/lovenote/pkg/view"
)

var (
	ErrWrongSecret    = errors.New("app: no space matches that secret")
	ErrNoSpace        = errors.New("app: no active space")
	ErrNoIdentity     = errors.New("app: no identity selected")
	ErrUnknownPartner = errors.New("app: not a partner of this space")
)

// Message is the user-facing text for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrWrongSecret):
		return "密码不正确，请检查后重新输入"
	case errors.Is(err, ErrNoSpace):
		return "请先创建或进入空间"
	case errors.Is(err, ErrNoIdentity), errors.Is(err, ErrUnknownPartner):
		return "请先选择你的身份"
	}
	return gateway.Message(err)
}

// Options configures a Service. Changes may be nil, in which case nothing
// pushes refreshes and the feed only updates after local actions.
type Options struct {
	Gateway  *gateway.Gateway
	Sessions session.Sessions
	Changes  livesync.Feed
	Throttle time.Duration
	Clock    timeutil.Clock
	Location *time.Location
	// Closer is released by Close, after live sync stops.
	Closer io.Closer
}

// Service is safe for concurrent use.
type Service struct {
	gateway  *gateway.Gateway
	sessions session.Sessions
	posts    *feed.State
	views    *view.State
	sync     *livesync.Controller
	clock    timeutil.Clock
	loc      *time.Location
	memo     stats.Memo
	closer   io.Closer

	mu       sync.RWMutex
	space    *journal.Space
	identity string
}

// New builds a Service from o.
func New(o Options) *Service {
	s := &Service{
		gateway:  o.Gateway,
		sessions: o.Sessions,
		posts:    feed.New(o.Gateway),
		views:    view.New(),
		clock:    o.Clock,
		loc:      o.Location,
		closer:   o.Closer,
	}
	if s.clock == nil {
		s.clock = timeutil.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if o.Changes != nil {
		s.sync = &livesync.Controller{
			Feed:     o.Changes,
			Refresh:  s.Refresh,
			Throttle: o.Throttle,
		}
	}
	return s
}

// Start restores the persisted session and picks the first view.
func (s *Service) Start(ctx context.Context) error {
	s.views.SetLastSecret(s.sessions.LastSecret())

	sess, err := s.sessions.Restore()
	if err != nil {
		return err
	}
	if sess == nil {
		s.views.Navigate(view.Welcome)
		return nil
	}

	space := sess.Space
	s.mu.Lock()
	s.space = &space
	s.identity = sess.Identity
	s.mu.Unlock()
	s.views.SetLastSecret(space.Secret)

	s.posts.Bind(space.ID)
	if sess.Identity == "" {
		s.views.Navigate(view.Select)
	} else {
		s.views.Navigate(view.Main)
	}
	// A failed first load is shown in the view; the session stays valid.
	_ = s.Refresh(ctx, space.ID)
	s.arm(ctx, space.ID)
	return nil
}

// CreateSpace creates a space and makes it the active one.
func (s *Service) CreateSpace(ctx context.Context, fields journal.SpaceFields) (*journal.Space, error) {
	s.views.ClearError()
	s.views.SetLoading(view.ActionCreate, true)
	defer s.views.SetLoading(view.ActionCreate, false)

	space, err := s.gateway.CreateSpace(ctx, fields)
	if err != nil {
		log.Printf("app: create space: %v", err)
		return nil, s.fail(err)
	}
	if err := s.enter(ctx, *space); err != nil {
		return nil, s.fail(err)
	}
	return space, nil
}

// Login enters the space whose secret matches.
func (s *Service) Login(ctx context.Context, secret string) (*journal.Space, error) {
	s.views.ClearError()
	s.views.SetLoading(view.ActionLogin, true)
	defer s.views.SetLoading(view.ActionLogin, false)

	space, err := s.gateway.FindSpaceBySecret(ctx, secret)
	if err != nil {
		log.Printf("app: login: %v", err)
		return nil, s.fail(err)
	}
	if space == nil {
		return nil, s.fail(ErrWrongSecret)
	}
	if err := s.enter(ctx, *space); err != nil {
		return nil, s.fail(err)
	}
	return space, nil
}

func (s *Service) enter(ctx context.Context, space journal.Space) error {
	if err := s.sessions.Save(space); err != nil {
		return err
	}
	s.mu.Lock()
	s.space = &space
	s.identity = ""
	s.mu.Unlock()
	s.views.SetLastSecret(space.Secret)
	s.activate(ctx, space.ID)
	s.views.Navigate(view.Select)
	return nil
}

// activate binds the feed to spaceID and arms live sync for it.
func (s *Service) activate(ctx context.Context, spaceID string) {
	s.posts.Bind(spaceID)
	s.arm(ctx, spaceID)
}

// arm starts live sync for spaceID. The subscription connects in the
// background, so this never waits on the network.
func (s *Service) arm(ctx context.Context, spaceID string) {
	if s.sync == nil {
		return
	}
	if err := s.sync.Arm(ctx, spaceID); err != nil {
		log.Printf("app: live sync for %s: %v", spaceID, err)
	}
}

// SelectIdentity sets who is writing and opens the main view.
func (s *Service) SelectIdentity(ctx context.Context, name string) error {
	space := s.Space()
	if space == nil {
		return s.fail(ErrNoSpace)
	}
	name = strings.TrimSpace(name)
	if !space.HasPartner(name) {
		return s.fail(ErrUnknownPartner)
	}
	if err := s.sessions.SaveIdentity(name); err != nil {
		return s.fail(err)
	}
	s.mu.Lock()
	s.identity = name
	s.mu.Unlock()
	s.views.Navigate(view.Main)
	_ = s.Refresh(ctx, space.ID)
	return nil
}

// Refresh re-fetches spaceID into the feed. It is also what live sync calls
// on every change.
func (s *Service) Refresh(ctx context.Context, spaceID string) error {
	if err := s.posts.Refresh(ctx, spaceID); err != nil {
		s.views.SetError(Message(err))
		return err
	}
	return nil
}

// Reload refreshes the active space.
func (s *Service) Reload(ctx context.Context) error {
	space := s.Space()
	if space == nil {
		return ErrNoSpace
	}
	return s.Refresh(ctx, space.ID)
}

// Post publishes p as the current identity in the active space. On success
// the composer is reset and the feed refreshed.
func (s *Service) Post(ctx context.Context, p journal.NewPost) error {
	space, who, err := s.author()
	if err != nil {
		return s.fail(err)
	}
	s.views.ClearError()
	s.views.SetLoading(view.ActionPost, true)
	defer s.views.SetLoading(view.ActionPost, false)

	p.SpaceID = space.ID
	p.AuthorName = who
	if err := s.gateway.CreatePost(ctx, p); err != nil {
		log.Printf("app: post: %v", err)
		return s.fail(err)
	}
	s.views.ResetComposer()
	_ = s.Refresh(ctx, space.ID)
	return nil
}

// PostComposer publishes the composer contents.
func (s *Service) PostComposer(ctx context.Context) error {
	c := s.views.Composer()
	if !c.Submittable() {
		return nil
	}
	return s.Post(ctx, journal.NewPost{
		Content:   c.Content,
		PostType:  c.PostType,
		Mood:      c.Mood,
		IsPrivate: c.IsPrivate,
	})
}

// ToggleLike flips the current identity's like on postID. Failures are
// logged and returned but never shown in the view.
func (s *Service) ToggleLike(ctx context.Context, postID string) (bool, error) {
	space, who, err := s.author()
	if err != nil {
		return false, err
	}
	liked, err := s.gateway.ToggleLike(ctx, postID, who)
	if err != nil {
		log.Printf("app: like %s: %v", postID, err)
		return liked, err
	}
	_ = s.Refresh(ctx, space.ID)
	return liked, nil
}

// SubmitComment posts the draft for postID. A blank draft does nothing. The
// draft is cleared only when the comment is stored.
func (s *Service) SubmitComment(ctx context.Context, postID string) error {
	draft := s.views.Draft(postID)
	if strings.TrimSpace(draft) == "" {
		return nil
	}
	if err := s.Comment(ctx, postID, draft); err != nil {
		return err
	}
	s.views.ClearDraft(postID)
	return nil
}

// Comment adds text to postID as the current identity. Failures are logged
// and returned but never shown in the view.
func (s *Service) Comment(ctx context.Context, postID, text string) error {
	space, who, err := s.author()
	if err != nil {
		return err
	}
	if err := s.gateway.AddComment(ctx, postID, who, text); err != nil {
		log.Printf("app: comment on %s: %v", postID, err)
		return err
	}
	_ = s.Refresh(ctx, space.ID)
	return nil
}

// Logout disarms live sync and forgets the session. The last used secret
// is kept for the login form.
func (s *Service) Logout() error {
	if s.sync != nil {
		s.sync.Disarm()
	}
	err := s.sessions.Clear()
	s.mu.Lock()
	s.space = nil
	s.identity = ""
	s.mu.Unlock()
	s.posts.Reset()
	s.views.Reset()
	s.views.SetLastSecret(s.sessions.LastSecret())
	return err
}

// Close tears down live sync and releases the backend.
func (s *Service) Close() {
	if s.sync != nil {
		s.sync.Disarm()
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			log.Printf("app: close: %v", err)
		}
	}
}

// Configured reports whether the gateway reaches a backend.
func (s *Service) Configured() bool {
	return s.gateway.Configured()
}

// Space returns the active space, or nil.
func (s *Service) Space() *journal.Space {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.space == nil {
		return nil
	}
	cp := *s.space
	return &cp
}

// Identity returns the selected partner, or "".
func (s *Service) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *Service) author() (*journal.Space, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.space == nil {
		return nil, "", ErrNoSpace
	}
	if s.identity == "" {
		return nil, "", ErrNoIdentity
	}
	cp := *s.space
	return &cp, s.identity, nil
}

// fail records err as the view's transient error and returns it.
func (s *Service) fail(err error) error {
	s.views.SetError(Message(err))
	return err
}

// Views is the interaction state the UI renders.
func (s *Service) Views() *view.State {
	return s.views
}

// Changes fires whenever the feed is replaced.
func (s *Service) Changes() <-chan uint64 {
	return s.posts.Changes()
}

// SyncState reports whether live sync is armed.
func (s *Service) SyncState() livesync.State {
	if s.sync == nil {
		return livesync.Unarmed
	}
	return s.sync.State()
}

// Feed returns the posts matching the search query, newest first.
func (s *Service) Feed() []journal.Post {
	return s.posts.Filtered(s.views.Search())
}

// AllPosts returns every post, ignoring the search query.
func (s *Service) AllPosts() []journal.Post {
	return s.posts.Posts()
}

// FindPost returns one post of the current feed.
func (s *Service) FindPost(id string) (journal.Post, bool) {
	return s.posts.Find(id)
}

// Timeline groups the searched feed by local calendar day.
func (s *Service) Timeline() []feed.DayGroup {
	return feed.Timeline(s.Feed(), s.loc)
}

// Stats derives the aggregates from the whole feed; search does not apply.
func (s *Service) Stats() stats.Aggregates {
	return s.memo.Compute(s.posts.Posts(), s.Space(), s.clock().In(s.loc))
}

// Now is the service clock.
func (s *Service) Now() time.Time {
	return s.clock()
}

// Location is the zone used for calendar days.
func (s *Service) Location() *time.Location {
	return s.loc
}
