// Package feed holds the authoritative in-memory post collection for the
// active space. The collection is only ever replaced wholesale so readers
// always see a complete snapshot.
package feed

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"tableflip.dev/lovenote/pkg/journal"
)

// Lister fetches a space's posts, newest first, with likes and comments
// nested.
type Lister interface {
	ListPosts(ctx context.Context, spaceID string) ([]journal.Post, error)
}

// Snapshot is one applied version of the collection. Posts must be treated
// as read-only.
type Snapshot struct {
	SpaceID string
	Version uint64
	Posts   []journal.Post
}

// State is safe for concurrent use. Overlapping refreshes are allowed; the
// last one to finish is what readers see.
type State struct {
	lister Lister

	mu      sync.RWMutex
	spaceID string
	version uint64
	posts   []journal.Post

	changes chan uint64
}

// New returns an empty state backed by lister.
func New(lister Lister) *State {
	return &State{
		lister:  lister,
		changes: make(chan uint64, 1),
	}
}

// Bind points the state at spaceID, dropping posts of any other space.
func (s *State) Bind(spaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spaceID == spaceID {
		return
	}
	s.spaceID = spaceID
	s.replaceLocked(nil)
}

// Reset forgets the bound space and its posts.
func (s *State) Reset() {
	s.Bind("")
}

// SpaceID returns the bound space.
func (s *State) SpaceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spaceID
}

// Refresh re-fetches spaceID and replaces the collection. A result for a
// space that is no longer bound is discarded. On error the previous
// collection is kept.
func (s *State) Refresh(ctx context.Context, spaceID string) error {
	posts, err := s.lister.ListPosts(ctx, spaceID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if spaceID != s.spaceID {
		return nil
	}
	s.replaceLocked(posts)
	return nil
}

// Replace installs posts directly, for callers that fetched them already.
func (s *State) Replace(posts []journal.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(posts)
}

func (s *State) replaceLocked(posts []journal.Post) {
	s.posts = posts
	s.version++
	s.notify(s.version)
}

// notify keeps only the newest version in the channel.
func (s *State) notify(v uint64) {
	for {
		select {
		case s.changes <- v:
			return
		default:
		}
		select {
		case <-s.changes:
		default:
		}
	}
}

// Changes delivers the version of each applied replacement. Intermediate
// versions may be skipped when the reader is slow.
func (s *State) Changes() <-chan uint64 {
	return s.changes
}

// Snapshot returns the current collection.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{SpaceID: s.spaceID, Version: s.version, Posts: s.posts}
}

// Posts returns the current collection, newest first.
func (s *State) Posts() []journal.Post {
	return s.Snapshot().Posts
}

// Filtered returns the posts matching query.
func (s *State) Filtered(query string) []journal.Post {
	return Filter(s.Posts(), query)
}

// Find returns the post with id from the current collection.
func (s *State) Find(id string) (journal.Post, bool) {
	for _, p := range s.Posts() {
		if p.ID == id {
			return p, true
		}
	}
	return journal.Post{}, false
}

// Filter keeps the posts whose search text contains query, ignoring case.
// A blank query returns posts itself.
func Filter(posts []journal.Post, query string) []journal.Post {
	query = strings.TrimSpace(query)
	if query == "" {
		return posts
	}
	fold := cases.Fold()
	needle := fold.String(query)
	out := make([]journal.Post, 0, len(posts))
	for i := range posts {
		if strings.Contains(fold.String(posts[i].SearchText()), needle) {
			out = append(out, posts[i])
		}
	}
	return out
}
