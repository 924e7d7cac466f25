package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/lovenote/pkg/app"
)

// Run shows the UI until the user quits or ctx ends. Feed replacements,
// including those pushed by live sync, repaint the screen.
func Run(ctx context.Context, svc *app.Service, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(ctx, svc), append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				p.Quit()
				return nil
			case v := <-svc.Changes():
				p.Send(feedChangedMsg{version: v})
			}
		}
	})
	return g.Wait()
}
