// Package gateway wraps the persistence collaborator behind the operations
// the client needs and sorts its failures into user-facing categories.
package gateway

import (
	"context"
	"errors"
	"sort"
	"strings"

	"tableflip.dev/lovenote/pkg/journal"
)

// Backend is the query/command surface of the persistence collaborator.
// SpaceBySecret returns nil, nil when nothing matches. ListPosts returns the
// space's posts with likes and comments nested. FindLike returns nil, nil
// when absent. Uniqueness violations wrap ErrUniqueViolation.
type Backend interface {
	InsertSpace(ctx context.Context, fields journal.SpaceFields) (*journal.Space, error)
	SpaceBySecret(ctx context.Context, secret string) (*journal.Space, error)
	ListPosts(ctx context.Context, spaceID string) ([]journal.Post, error)
	InsertPost(ctx context.Context, post journal.NewPost) error
	FindLike(ctx context.Context, postID, author string) (*journal.Like, error)
	InsertLike(ctx context.Context, postID, author string) error
	DeleteLike(ctx context.Context, postID, author string) error
	InsertComment(ctx context.Context, postID, author, content string) error
}

// Gateway is the client's only path to the backend. A Gateway without a
// backend fails every call with ErrNotConfigured.
type Gateway struct {
	backend Backend
}

// New returns a Gateway over b; b may be nil when unconfigured.
func New(b Backend) *Gateway {
	return &Gateway{backend: b}
}

// Configured reports whether calls will reach a backend.
func (g *Gateway) Configured() bool {
	return g != nil && g.backend != nil
}

func (g *Gateway) ready(op string) error {
	if !g.Configured() {
		return wrap(ErrNotConfigured, op, nil)
	}
	return nil
}

// CreateSpace inserts a new space. A taken secret yields ErrDuplicateSecret.
func (g *Gateway) CreateSpace(ctx context.Context, fields journal.SpaceFields) (*journal.Space, error) {
	const op = "create space"
	if err := g.ready(op); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, wrap(ErrCreateFailed, op, err)
	}
	space, err := g.backend.InsertSpace(ctx, fields)
	if err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return nil, wrap(ErrDuplicateSecret, op, err)
		}
		return nil, wrap(ErrCreateFailed, op, err)
	}
	if space == nil {
		return nil, wrap(ErrCreateFailed, op, errors.New("backend returned no row"))
	}
	return space, nil
}

// FindSpaceBySecret returns the matching space or nil when the secret is not
// known. Only transport problems are errors.
func (g *Gateway) FindSpaceBySecret(ctx context.Context, secret string) (*journal.Space, error) {
	const op = "find space"
	if err := g.ready(op); err != nil {
		return nil, err
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, nil
	}
	space, err := g.backend.SpaceBySecret(ctx, secret)
	if err != nil {
		return nil, wrap(ErrLookupFailed, op, err)
	}
	return space, nil
}

// ListPosts returns the space's posts newest first, comments oldest first.
func (g *Gateway) ListPosts(ctx context.Context, spaceID string) ([]journal.Post, error) {
	const op = "list posts"
	if err := g.ready(op); err != nil {
		return nil, err
	}
	posts, err := g.backend.ListPosts(ctx, spaceID)
	if err != nil {
		return nil, wrap(ErrFetchFailed, op, err)
	}
	out := make([]journal.Post, 0, len(posts))
	for _, p := range posts {
		if p.PostType != journal.TypeMood {
			p.MoodType = nil
		}
		comments := append([]journal.Comment(nil), p.Comments...)
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		})
		p.Comments = comments
		p.Likes = append([]journal.Like(nil), p.Likes...)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CreatePost inserts a post. The mood is dropped unless the post is a mood post.
func (g *Gateway) CreatePost(ctx context.Context, post journal.NewPost) error {
	const op = "create post"
	if err := g.ready(op); err != nil {
		return err
	}
	if err := post.Normalize(); err != nil {
		if errors.Is(err, journal.ErrEmptyContent) {
			return wrap(ErrEmptyContent, op, nil)
		}
		return wrap(ErrPostFailed, op, err)
	}
	if err := g.backend.InsertPost(ctx, post); err != nil {
		return wrap(ErrPostFailed, op, err)
	}
	return nil
}

// ToggleLike removes author's like when present, otherwise adds one, and
// reports whether author likes the post afterwards.
//
// The existence check and the write are two calls. Two sessions of the same
// identity toggling at once can both see "absent"; the backend's unique
// (post, author) constraint then rejects the second insert, which is treated
// as already liked.
func (g *Gateway) ToggleLike(ctx context.Context, postID, author string) (bool, error) {
	const op = "toggle like"
	if err := g.ready(op); err != nil {
		return false, err
	}
	existing, err := g.backend.FindLike(ctx, postID, author)
	if err != nil {
		return false, wrap(ErrLikeFailed, op, err)
	}
	if existing != nil {
		if err := g.backend.DeleteLike(ctx, postID, author); err != nil {
			return true, wrap(ErrLikeFailed, op, err)
		}
		return false, nil
	}
	if err := g.backend.InsertLike(ctx, postID, author); err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return true, nil
		}
		return false, wrap(ErrLikeFailed, op, err)
	}
	return true, nil
}

// AddComment appends a comment. Blank content is rejected without calling
// the backend.
func (g *Gateway) AddComment(ctx context.Context, postID, author, content string) error {
	const op = "add comment"
	content = strings.TrimSpace(content)
	if content == "" {
		return wrap(ErrEmptyContent, op, nil)
	}
	if err := g.ready(op); err != nil {
		return err
	}
	if err := g.backend.InsertComment(ctx, postID, author, content); err != nil {
		return wrap(ErrCommentFailed, op, err)
	}
	return nil
}
