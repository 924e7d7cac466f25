// Package add publishes posts, likes and comments and prints the refreshed
// feed.
package add

import (
	"context"
	"errors"
	"io"
	"strings"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/printers"
)

var errNoService = errors.New("add: no service")

// Post publishes a new entry as the current identity.
type Post struct {
	Service *app.Service
	Post    journal.NewPost
	ShowID  bool
	Out     io.Writer
}

func (n *Post) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	if err := n.Service.Post(ctx, n.Post); err != nil {
		return err
	}
	show(n.Service, n.Out, n.ShowID, false)
	return nil
}

// Like toggles the current identity's like on PostID.
type Like struct {
	Service *app.Service
	PostID  string
	Out     io.Writer
}

func (n *Like) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	id, err := Resolve(n.Service, n.PostID)
	if err != nil {
		return err
	}
	if _, err := n.Service.ToggleLike(ctx, id); err != nil {
		return err
	}
	show(n.Service, n.Out, true, false)
	return nil
}

// Comment replies to PostID as the current identity.
type Comment struct {
	Service *app.Service
	PostID  string
	Text    string
	Out     io.Writer
}

func (n *Comment) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	id, err := Resolve(n.Service, n.PostID)
	if err != nil {
		return err
	}
	n.Service.Views().SetDraft(id, n.Text)
	if err := n.Service.SubmitComment(ctx, id); err != nil {
		return err
	}
	show(n.Service, n.Out, true, true)
	return nil
}

var (
	// ErrUnknownPost is returned for ids not in the active space's feed.
	ErrUnknownPost = errors.New("add: no such post in this space")
	// ErrAmbiguousPost is returned when an id prefix matches several posts.
	ErrAmbiguousPost = errors.New("add: post id prefix matches more than one post")
)

// Resolve expands id to the full id of a post in svc's feed. A unique
// prefix is enough.
func Resolve(svc *app.Service, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrUnknownPost
	}
	if _, ok := svc.FindPost(id); ok {
		return id, nil
	}
	match := ""
	for _, p := range svc.AllPosts() {
		if !strings.HasPrefix(p.ID, id) {
			continue
		}
		if match != "" {
			return "", ErrAmbiguousPost
		}
		match = p.ID
	}
	if match == "" {
		return "", ErrUnknownPost
	}
	return match, nil
}

func show(svc *app.Service, w io.Writer, showID, comments bool) {
	pp := printers.PrettyPrint{Out: w, Me: svc.Identity(), ShowID: showID, ShowComments: comments}
	pp.Header(svc.Space(), svc.Stats())
	pp.Feed(svc.AllPosts())
}
