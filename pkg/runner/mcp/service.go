// Package mcp serves the active space over the Model Context Protocol so an
// assistant can read the feed and post on the current identity's behalf.
package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/feed"
	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/runner/add"
	"tableflip.dev/lovenote/pkg/stats"
)

// Service adapts the client service to the MCP tools and resources.
type Service struct {
	App *app.Service
}

var errNoService = errors.New("mcp: client service is not configured")

// CommentDTO is a transport-friendly projection of a comment.
type CommentDTO struct {
	ID         string `json:"id"`
	Author     string `json:"author"`
	Content    string `json:"content"`
	CreatedISO string `json:"created"`
}

// PostDTO is a transport-friendly projection of a post.
type PostDTO struct {
	ID         string       `json:"id"`
	Author     string       `json:"author"`
	Mine       bool         `json:"mine"`
	Content    string       `json:"content"`
	Type       string       `json:"type"`
	TypeLabel  string       `json:"typeLabel"`
	Mood       string       `json:"mood,omitempty"`
	MoodLabel  string       `json:"moodLabel,omitempty"`
	Private    bool         `json:"private"`
	CreatedISO string       `json:"created"`
	Likes      int          `json:"likes"`
	LikedByMe  bool         `json:"likedByMe"`
	Comments   []CommentDTO `json:"comments"`
}

// DayDTO is one timeline bucket.
type DayDTO struct {
	Day   string    `json:"day"`
	Posts []PostDTO `json:"posts"`
}

// BucketDTO is one row of a distribution.
type BucketDTO struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatsDTO mirrors the stats tab.
type StatsDTO struct {
	TotalPosts          int            `json:"totalPosts"`
	TotalLikes          int            `json:"totalLikes"`
	PrivacyPercent      int            `json:"privacyPercent"`
	AvgPerDay           float64        `json:"avgPerDay"`
	DaysTogether        int            `json:"daysTogether"`
	NextAnniversaryDays *int           `json:"nextAnniversaryDays,omitempty"`
	Birthdays           map[string]int `json:"birthdays,omitempty"`
	ByType              []BucketDTO    `json:"byType"`
	ByAuthor            []BucketDTO    `json:"byAuthor"`
	ByMood              []BucketDTO    `json:"byMood"`
}

// SpaceDTO describes the active space without its secret.
type SpaceDTO struct {
	Name     string   `json:"name"`
	Partners []string `json:"partners"`
	Identity string   `json:"identity,omitempty"`
	LiveSync string   `json:"liveSync"`
}

// NewService wraps the client service.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

func (s *Service) ready() error {
	if s.App == nil {
		return errNoService
	}
	if s.App.Space() == nil {
		return errors.New(app.Message(app.ErrNoSpace))
	}
	return nil
}

// failure turns a service error into the text the user would see.
func failure(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(app.Message(err))
}

// WhoAmI reports the active space and identity.
func (s *Service) WhoAmI(ctx context.Context) (SpaceDTO, error) {
	if err := s.ready(); err != nil {
		return SpaceDTO{}, err
	}
	sp := s.App.Space()
	return SpaceDTO{
		Name:     sp.SpaceName,
		Partners: sp.Partners(),
		Identity: s.App.Identity(),
		LiveSync: s.App.SyncState().String(),
	}, nil
}

// Feed returns posts newest first, filtered by query. A limit of zero or
// less returns everything.
func (s *Service) Feed(ctx context.Context, query string, limit int) ([]PostDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	posts := feed.Filter(s.App.AllPosts(), query)
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return s.toDTOs(posts), nil
}

// Timeline returns the feed grouped by local day.
func (s *Service) Timeline(ctx context.Context) ([]DayDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	groups := feed.Timeline(s.App.AllPosts(), s.App.Location())
	out := make([]DayDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, DayDTO{Day: g.Day, Posts: s.toDTOs(g.Posts)})
	}
	return out, nil
}

// PostByID returns one post. A unique id prefix is enough.
func (s *Service) PostByID(ctx context.Context, id string) (PostDTO, error) {
	if err := s.ready(); err != nil {
		return PostDTO{}, err
	}
	full, err := add.Resolve(s.App, id)
	if err != nil {
		return PostDTO{}, err
	}
	p, _ := s.App.FindPost(full)
	return s.toDTO(p), nil
}

// CreatePost publishes p as the current identity and returns the new post.
func (s *Service) CreatePost(ctx context.Context, p journal.NewPost) (PostDTO, error) {
	if err := s.ready(); err != nil {
		return PostDTO{}, err
	}
	before := map[string]bool{}
	for _, existing := range s.App.AllPosts() {
		before[existing.ID] = true
	}
	if err := s.App.Post(ctx, p); err != nil {
		return PostDTO{}, failure(err)
	}
	for _, created := range s.App.AllPosts() {
		if !before[created.ID] && created.AuthorName == s.App.Identity() {
			return s.toDTO(created), nil
		}
	}
	return PostDTO{}, errors.New("mcp: post created but not found after refresh")
}

// ToggleLike flips the current identity's like and returns the post.
func (s *Service) ToggleLike(ctx context.Context, id string) (PostDTO, error) {
	if err := s.ready(); err != nil {
		return PostDTO{}, err
	}
	full, err := add.Resolve(s.App, id)
	if err != nil {
		return PostDTO{}, err
	}
	if _, err := s.App.ToggleLike(ctx, full); err != nil {
		return PostDTO{}, failure(err)
	}
	return s.PostByID(ctx, full)
}

// Comment replies to a post and returns it with its comments.
func (s *Service) Comment(ctx context.Context, id, text string) (PostDTO, error) {
	if err := s.ready(); err != nil {
		return PostDTO{}, err
	}
	if strings.TrimSpace(text) == "" {
		return PostDTO{}, errors.New("comment text is required")
	}
	full, err := add.Resolve(s.App, id)
	if err != nil {
		return PostDTO{}, err
	}
	if err := s.App.Comment(ctx, full, strings.TrimSpace(text)); err != nil {
		return PostDTO{}, failure(err)
	}
	return s.PostByID(ctx, full)
}

// Stats returns the aggregates of the whole feed.
func (s *Service) Stats(ctx context.Context) (StatsDTO, error) {
	if err := s.ready(); err != nil {
		return StatsDTO{}, err
	}
	a := s.App.Stats()
	dto := StatsDTO{
		TotalPosts:          a.TotalPosts,
		TotalLikes:          a.TotalLikes,
		PrivacyPercent:      a.PrivacyPercent(),
		AvgPerDay:           a.AvgPerDay,
		DaysTogether:        a.DaysTogether,
		NextAnniversaryDays: a.NextAnniversaryDays,
		ByType:              buckets(a.ByType),
		ByAuthor:            buckets(a.ByAuthor),
		ByMood:              buckets(a.ByMood),
	}
	if len(a.Birthdays) > 0 {
		dto.Birthdays = make(map[string]int, len(a.Birthdays))
		for _, b := range a.Birthdays {
			dto.Birthdays[b.Name] = b.Days
		}
	}
	return dto, nil
}

func buckets(d stats.Distribution) []BucketDTO {
	out := make([]BucketDTO, 0, len(d.Buckets))
	for _, b := range d.Buckets {
		out = append(out, BucketDTO{Label: b.Label, Count: b.Count})
	}
	return out
}

func (s *Service) toDTOs(posts []journal.Post) []PostDTO {
	out := make([]PostDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, s.toDTO(p))
	}
	return out
}

func (s *Service) toDTO(p journal.Post) PostDTO {
	me := s.App.Identity()
	dto := PostDTO{
		ID:         p.ID,
		Author:     p.AuthorName,
		Mine:       p.IsMine(me),
		Content:    p.Content,
		Type:       string(p.PostType),
		TypeLabel:  p.PostType.Label(),
		Private:    p.IsPrivate,
		CreatedISO: formatTime(p.CreatedAt),
		Likes:      p.LikeCount(),
		LikedByMe:  p.LikedBy(me),
		Comments:   make([]CommentDTO, 0, len(p.Comments)),
	}
	if m, ok := p.Mood(); ok {
		dto.Mood = string(m)
		dto.MoodLabel = p.MoodLabel()
	}
	for _, c := range p.Comments {
		dto.Comments = append(dto.Comments, CommentDTO{
			ID:         c.ID,
			Author:     c.AuthorName,
			Content:    c.Content,
			CreatedISO: formatTime(c.CreatedAt),
		})
	}
	return dto
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
