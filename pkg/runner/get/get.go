// Package get prints the feed, the timeline and the stats of the active
// space.
package get

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/printers"
	"tableflip.dev/lovenote/pkg/view"
)

var errNoService = errors.New("get: no service")

type Get struct {
	Service  *app.Service
	Tab      view.Tab
	Search   string
	ShowID   bool
	Comments bool
	// Calendar prints the posting days of Month on the timeline tab.
	Calendar bool
	Month    time.Time
	Out      io.Writer
	// Print, when set, receives the data instead of the pretty output.
	Print func(v interface{}) error
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	sp := n.Service.Space()
	if sp == nil {
		return app.ErrNoSpace
	}
	n.Service.Views().SetTab(n.Tab)
	n.Service.Views().SetSearch(n.Search)
	// The first load runs in Start; a failure there is parked in the view.
	if msg := n.Service.Views().Error(); msg != "" {
		return errors.New(msg)
	}

	if n.Print != nil {
		switch n.Tab {
		case view.TabTimeline:
			return n.Print(n.Service.Timeline())
		case view.TabStats:
			return n.Print(n.Service.Stats())
		default:
			return n.Print(n.Service.Feed())
		}
	}

	pp := printers.PrettyPrint{
		Out:          n.Out,
		Me:           n.Service.Identity(),
		ShowID:       n.ShowID,
		ShowComments: n.Comments,
		Query:        n.Search,
	}
	pp.Header(sp, n.Service.Stats())

	switch n.Tab {
	case view.TabTimeline:
		if n.Calendar {
			pp.Calendar(n.Month, n.Service.Feed()...)
		}
		pp.Timeline(n.Service.Timeline())
	case view.TabStats:
		pp.Stats(n.Service.Stats())
	default:
		pp.Feed(n.Service.Feed())
	}
	return nil
}
