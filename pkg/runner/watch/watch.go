// Package watch follows the active space and prints posts as they arrive.
package watch

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/livesync"
	"tableflip.dev/lovenote/pkg/printers"
)

var errNoService = errors.New("watch: no service")

type Watch struct {
	Service *app.Service
	// Interval polls the backend when live sync is not armed. Zero never
	// polls.
	Interval time.Duration
	ShowID   bool
	Out      io.Writer
}

func (n *Watch) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	sp := n.Service.Space()
	if sp == nil {
		return app.ErrNoSpace
	}

	pp := &printers.PrettyPrint{Out: n.Out, Me: n.Service.Identity(), ShowID: n.ShowID}
	pp.Header(sp, n.Service.Stats())
	seen := map[string]bool{}
	n.printNew(pp, seen)

	status := "实时同步中"
	if n.Service.SyncState() != livesync.Armed {
		status = "未连接实时同步"
	}
	_, _ = color.New(color.Faint).Fprintf(pp.Writer(), "%s，按 Ctrl+C 退出\n\n", status)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-n.Service.Changes():
				n.printNew(pp, seen)
			}
		}
	})
	if n.Interval > 0 {
		g.Go(func() error {
			t := time.NewTicker(n.Interval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-t.C:
					if n.Service.SyncState() == livesync.Armed {
						continue
					}
					if err := n.Service.Reload(ctx); err != nil && ctx.Err() == nil {
						log.Printf("watch: reload: %v", err)
					}
				}
			}
		})
	}
	return g.Wait()
}

// printNew prints the posts not printed yet, oldest first.
func (n *Watch) printNew(pp *printers.PrettyPrint, seen map[string]bool) {
	posts := n.Service.AllPosts()
	var fresh []journal.Post
	for i := len(posts) - 1; i >= 0; i-- {
		if !seen[posts[i].ID] {
			seen[posts[i].ID] = true
			fresh = append(fresh, posts[i])
		}
	}
	for i := range fresh {
		pp.Post(&fresh[i])
	}
}
