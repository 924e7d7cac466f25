package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/config"
	"tableflip.dev/lovenote/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the backend and where state is stored.",
		Example: `
lovenote info
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, err := app.Load(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()
			if err := svc.Start(cmd.Context()); err != nil {
				return err
			}
			s := info.Info{Config: cfg, Service: svc, Out: cmd.OutOrStdout()}
			return s.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
