package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/commands/options"
	"tableflip.dev/lovenote/pkg/runner/space"
)

func addCreate(topLevel *cobra.Command) {
	so := &options.SpaceOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a shared space for the two of you.",
		Example: `
lovenote create --name 小窝 --secret s3cret --partner1 阿晴 --partner2 小北
lovenote create --name 小窝 --secret s3cret --partner1 阿晴 --partner2 小北 --anniversary 2024-01-01
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := so.Fields()
			if err != nil {
				return err
			}
			return withService(cmd, func(svc *app.Service) error {
				s := space.Create{Service: svc, Fields: fields, Out: cmd.OutOrStdout()}
				return s.Do(cmd.Context())
			})
		},
	}

	options.AddSpaceArgs(cmd, so)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addLogin(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "login [secret]",
		Short: "Enter an existing space with its secret.",
		Long:  "Enter an existing space with its secret. Without a secret the last one used is tried.",
		Example: `
lovenote login s3cret
lovenote login
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *app.Service) error {
				s := space.Login{Service: svc, Secret: strings.Join(args, ""), Out: cmd.OutOrStdout()}
				return s.Do(cmd.Context())
			})
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addIdentity(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "identity [name]",
		Aliases: []string{"iam"},
		Short:   "Choose which partner you are.",
		Example: `
lovenote identity 阿晴
lovenote identity
`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return partnerCompletions(cmd), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *app.Service) error {
				s := space.Identity{Service: svc, Name: strings.Join(args, ""), Out: cmd.OutOrStdout()}
				return s.Do(cmd.Context())
			})
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addWhoAmI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the active space and identity.",
		Example: `
lovenote whoami
lovenote whoami --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(svc *app.Service) error {
				s := space.WhoAmI{Service: svc, Out: cmd.OutOrStdout()}
				if oo.JSON {
					s.Print = oo.Print
				}
				return s.Do(cmd.Context())
			})
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Leave the active space on this device.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(svc *app.Service) error {
				s := space.Logout{Service: svc, Out: cmd.OutOrStdout()}
				return s.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}
