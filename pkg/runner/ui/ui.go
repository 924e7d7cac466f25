package ui

import (
	"context"
	"errors"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/printers"
	"tableflip.dev/lovenote/pkg/tui"
)

type UI struct {
	Service *app.Service
	// Verbose keeps log output while the UI owns the terminal.
	Verbose bool
}

func (d *UI) Do(ctx context.Context) error {
	if d.Service == nil {
		return errors.New("ui: no service")
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		// Not a terminal: print what the main view would show.
		if sp := d.Service.Space(); sp != nil {
			pp := printers.PrettyPrint{Me: d.Service.Identity()}
			pp.Header(sp, d.Service.Stats())
			pp.Feed(d.Service.Feed())
			return nil
		}
		return app.ErrNoSpace
	}
	if !d.Verbose {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}
	return tui.Run(ctx, d.Service)
}
