package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/commands/options"
	"tableflip.dev/lovenote/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	ido := &options.IDOptions{}
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print new posts as your partner shares them.",
		Long: "Print new posts as they arrive over live sync. When live sync is not " +
			"available the feed is polled every --interval.",
		Example: `
lovenote watch
lovenote watch --interval 30s
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(svc *app.Service) error {
				w := watch.Watch{Service: svc, Interval: interval, ShowID: ido.ShowID, Out: cmd.OutOrStdout()}
				return w.Do(cmd.Context())
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "Poll interval while live sync is down, 0 to never poll.")
	options.AddShowIDArgs(cmd, ido)

	topLevel.AddCommand(cmd)
}
