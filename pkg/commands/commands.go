package commands

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/commands/options"
)

var (
	oo      = &options.OutputOptions{}
	verbose bool
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "lovenote",
		Short: base.Wrap80("A shared journal for two, on the command line."),
		Long: base.Wrap80("lovenote keeps a private feed of posts, likes and comments " +
			"that two partners share through a secret. Run without a command to open the interactive UI."),
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFlags(0)
			if verbose {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd)
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addCreate(topLevel)
	addLogin(topLevel)
	addIdentity(topLevel)
	addWhoAmI(topLevel)
	addLogout(topLevel)
	addPost(topLevel)
	addLike(topLevel)
	addComment(topLevel)
	addFeed(topLevel)
	addTimeline(topLevel)
	addStats(topLevel)
	addWatch(topLevel)
	addMCP(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// loadService opens the configured backend and restores the session.
func loadService(cmd *cobra.Command) (*app.Service, error) {
	svc, err := app.Load(nil)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := svc.Start(ctx); err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}

// withService runs f over a started service and reports its error the way
// the output options ask for.
func withService(cmd *cobra.Command, f func(svc *app.Service) error) error {
	cmd.SilenceUsage = true
	svc, err := loadService(cmd)
	if err != nil {
		return oo.HandleError(err)
	}
	defer svc.Close()
	return oo.HandleError(f(svc))
}
