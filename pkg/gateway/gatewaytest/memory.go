// Package gatewaytest provides an in-memory gateway.Backend for tests.
package gatewaytest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tableflip.dev/lovenote/pkg/gateway"
	"tableflip.dev/lovenote/pkg/journal"
)

// Memory is a goroutine-safe Backend. Set Fail to make the named operation
// return an error; Calls counts invocations per operation. OnChange, when
// set, is called after every successful write with the table name.
type Memory struct {
	mu       sync.Mutex
	counter  int
	clock    time.Time
	spaces   []journal.Space
	posts    []journal.Post
	likes    []journal.Like
	comments []journal.Comment

	Fail     map[string]error
	Calls    map[string]int
	OnChange func(table string)
}

var _ gateway.Backend = (*Memory)(nil)

// NewMemory returns an empty backend whose timestamps start at start and
// advance one minute per write.
func NewMemory(start time.Time) *Memory {
	return &Memory{
		clock: start,
		Fail:  map[string]error{},
		Calls: map[string]int{},
	}
}

func (m *Memory) begin(op string) error {
	m.Calls[op]++
	if err := m.Fail[op]; err != nil {
		return err
	}
	return nil
}

func (m *Memory) nextID(prefix string) string {
	m.counter++
	return fmt.Sprintf("%s-%d", prefix, m.counter)
}

func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *Memory) changed(table string) {
	if m.OnChange != nil {
		m.OnChange(table)
	}
}

// CallCount returns how many times op ran.
func (m *Memory) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[op]
}

// SpaceCount returns the number of stored spaces.
func (m *Memory) SpaceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.spaces)
}

// LikeCount returns the likes stored for postID.
func (m *Memory) LikeCount(postID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.likes {
		if l.PostID == postID {
			n++
		}
	}
	return n
}

// SetFail injects err for op; nil clears it.
func (m *Memory) SetFail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.Fail, op)
		return
	}
	m.Fail[op] = err
}

func (m *Memory) InsertSpace(_ context.Context, f journal.SpaceFields) (*journal.Space, error) {
	m.mu.Lock()
	if err := m.begin("InsertSpace"); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	for _, s := range m.spaces {
		if s.Secret == f.Secret {
			m.mu.Unlock()
			return nil, fmt.Errorf("duplicate key value violates unique constraint \"spaces_secret_key\": %w", gateway.ErrUniqueViolation)
		}
	}
	s := journal.Space{
		ID:               m.nextID("space"),
		SpaceName:        f.SpaceName,
		Secret:           f.Secret,
		Partner1Name:     f.Partner1Name,
		Partner2Name:     f.Partner2Name,
		AnniversaryDate:  f.AnniversaryDate,
		Partner1Birthday: f.Partner1Birthday,
		Partner2Birthday: f.Partner2Birthday,
		CreatedAt:        m.tick(),
	}
	m.spaces = append(m.spaces, s)
	m.mu.Unlock()
	return &s, nil
}

func (m *Memory) SpaceBySecret(_ context.Context, secret string) (*journal.Space, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("SpaceBySecret"); err != nil {
		return nil, err
	}
	for _, s := range m.spaces {
		if s.Secret == secret {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

// ListPosts returns posts in insertion order with comments newest first, so
// callers that rely on the gateway's ordering are exercised.
func (m *Memory) ListPosts(_ context.Context, spaceID string) ([]journal.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("ListPosts"); err != nil {
		return nil, err
	}
	out := make([]journal.Post, 0)
	for _, p := range m.posts {
		if p.SpaceID != spaceID {
			continue
		}
		p.Likes = nil
		p.Comments = nil
		for _, l := range m.likes {
			if l.PostID == p.ID {
				p.Likes = append(p.Likes, l)
			}
		}
		for i := len(m.comments) - 1; i >= 0; i-- {
			if c := m.comments[i]; c.PostID == p.ID {
				p.Comments = append(p.Comments, c)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *Memory) InsertPost(_ context.Context, n journal.NewPost) error {
	m.mu.Lock()
	if err := m.begin("InsertPost"); err != nil {
		m.mu.Unlock()
		return err
	}
	// Stores the mood as given so the gateway's filtering is what is tested.
	var mood *journal.Mood
	if n.Mood != "" {
		v := n.Mood
		mood = &v
	}
	m.posts = append(m.posts, journal.Post{
		ID:         m.nextID("post"),
		SpaceID:    n.SpaceID,
		AuthorName: n.AuthorName,
		Content:    n.Content,
		PostType:   n.PostType,
		MoodType:   mood,
		IsPrivate:  n.IsPrivate,
		CreatedAt:  m.tick(),
	})
	m.mu.Unlock()
	m.changed("posts")
	return nil
}

func (m *Memory) FindLike(_ context.Context, postID, author string) (*journal.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("FindLike"); err != nil {
		return nil, err
	}
	for _, l := range m.likes {
		if l.PostID == postID && l.AuthorName == author {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}

func (m *Memory) InsertLike(_ context.Context, postID, author string) error {
	m.mu.Lock()
	if err := m.begin("InsertLike"); err != nil {
		m.mu.Unlock()
		return err
	}
	m.likes = append(m.likes, journal.Like{ID: m.nextID("like"), PostID: postID, AuthorName: author})
	m.mu.Unlock()
	m.changed("likes")
	return nil
}

func (m *Memory) DeleteLike(_ context.Context, postID, author string) error {
	m.mu.Lock()
	if err := m.begin("DeleteLike"); err != nil {
		m.mu.Unlock()
		return err
	}
	kept := m.likes[:0]
	for _, l := range m.likes {
		if l.PostID == postID && l.AuthorName == author {
			continue
		}
		kept = append(kept, l)
	}
	m.likes = kept
	m.mu.Unlock()
	m.changed("likes")
	return nil
}

func (m *Memory) InsertComment(_ context.Context, postID, author, content string) error {
	m.mu.Lock()
	if err := m.begin("InsertComment"); err != nil {
		m.mu.Unlock()
		return err
	}
	found := false
	for _, p := range m.posts {
		if p.ID == postID {
			found = true
			break
		}
	}
	if !found {
		m.mu.Unlock()
		return errors.New("insert or update on table \"comments\" violates foreign key constraint")
	}
	m.comments = append(m.comments, journal.Comment{
		ID:         m.nextID("comment"),
		PostID:     postID,
		AuthorName: author,
		Content:    content,
		CreatedAt:  m.tick(),
	})
	m.mu.Unlock()
	m.changed("comments")
	return nil
}
