package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/config"
)

// Info prints where lovenote keeps its state and which backend it talks to.
type Info struct {
	Config  *config.Config
	Service *app.Service
	Out     io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	w := n.Out
	if w == nil {
		w = color.Output
	}

	if override := os.Getenv("LOVENOTE_CONFIG_PATH"); override != "" {
		fmt.Fprintln(w, "LOVENOTE_CONFIG_PATH found on env, using", override)
	} else {
		fmt.Fprintln(w, "LOVENOTE_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		if n.Config, err = config.Load(); err != nil {
			return err
		}
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("backend:", n.Config.Backend)
	tbl.AddRow("configured:", n.Config.Configured())
	switch n.Config.Backend {
	case config.BackendLocal:
		tbl.AddRow("database:", n.Config.LocalPath)
	default:
		tbl.AddRow("supabase.url:", n.Config.SupabaseURL)
	}
	tbl.AddRow("session.path:", n.Config.SessionPath)
	tbl.AddRow("sync.throttle:", n.Config.SyncThrottle)

	if n.Service != nil {
		tbl.AddRow("live sync:", n.Service.SyncState())
		if sp := n.Service.Space(); sp != nil {
			tbl.AddRow("space:", sp.SpaceName)
			tbl.AddRow("identity:", n.Service.Identity())
			tbl.AddRow("posts:", len(n.Service.AllPosts()))
		} else {
			tbl.AddRow("space:", "none")
		}
	}
	fmt.Fprintln(w, tbl)
	return nil
}
