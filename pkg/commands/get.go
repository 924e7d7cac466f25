package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/commands/options"
	"tableflip.dev/lovenote/pkg/runner/get"
	"tableflip.dev/lovenote/pkg/view"
)

func addFeed(topLevel *cobra.Command) {
	so := &options.SearchOptions{}
	ido := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "feed",
		Aliases: []string{"ls", "get"},
		Short:   "List the posts of the active space, newest first.",
		Example: `
lovenote feed
lovenote feed --search 海 --comments
lovenote feed -k
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGet(cmd, &get.Get{Tab: view.TabFeed, Search: so.Search, ShowID: ido.ShowID, Comments: so.Comments})
		},
	}

	options.AddSearchArgs(cmd, so)
	options.AddShowIDArgs(cmd, ido)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addTimeline(topLevel *cobra.Command) {
	so := &options.SearchOptions{}
	ido := &options.IDOptions{}
	co := &options.CalendarOptions{}

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "List the posts of the active space grouped by day.",
		Example: `
lovenote timeline
lovenote timeline --calendar --month 2024-02
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := &get.Get{
				Tab:      view.TabTimeline,
				Search:   so.Search,
				ShowID:   ido.ShowID,
				Comments: so.Comments,
				Calendar: co.Calendar,
			}
			return runGet(cmd, g, func(svc *app.Service) error {
				var err error
				g.Month, err = co.GetMonth(svc.Now(), svc.Location())
				return err
			})
		},
	}

	options.AddSearchArgs(cmd, so)
	options.AddShowIDArgs(cmd, ido)
	options.AddCalendarArgs(cmd, co)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addStats(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals and distributions for the active space.",
		Example: `
lovenote stats
lovenote stats --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGet(cmd, &get.Get{Tab: view.TabStats})
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, g *get.Get, prepare ...func(svc *app.Service) error) error {
	return withService(cmd, func(svc *app.Service) error {
		for _, p := range prepare {
			if err := p(svc); err != nil {
				return err
			}
		}
		g.Service = svc
		g.Out = cmd.OutOrStdout()
		if oo.JSON {
			g.Print = oo.Print
		}
		return g.Do(cmd.Context())
	})
}
