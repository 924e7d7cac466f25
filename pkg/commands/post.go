package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/commands/options"
	"tableflip.dev/lovenote/pkg/runner/add"
)

func addPost(topLevel *cobra.Command) {
	po := &options.PostOptions{}
	ido := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "post <text>",
		Aliases: []string{"p"},
		Short:   "Share a post with your partner.",
		Example: `
lovenote post 今天一起去看了海
lovenote post --mood love 想你
lovenote post --type memory --private 第一次约会
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := po.NewPost(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return withService(cmd, func(svc *app.Service) error {
				s := add.Post{Service: svc, Post: p, ShowID: ido.ShowID, Out: cmd.OutOrStdout()}
				return s.Do(cmd.Context())
			})
		},
	}

	options.AddPostArgs(cmd, po)
	options.AddShowIDArgs(cmd, ido)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addLike(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post, or take a like back.",
		Long:  "Toggle your like on a post. A unique prefix of the id is enough, see `lovenote feed -k`.",
		Example: `
lovenote like 3f2a
`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return postCompletions(cmd, toComplete), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *app.Service) error {
				s := add.Like{Service: svc, PostID: args[0], Out: cmd.OutOrStdout()}
				return s.Do(cmd.Context())
			})
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addComment(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "comment <post-id> <text>",
		Short: "Reply to a post.",
		Example: `
lovenote comment 3f2a 我也想你
`,
		Args: cobra.MinimumNArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return postCompletions(cmd, toComplete), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *app.Service) error {
				s := add.Comment{
					Service: svc,
					PostID:  args[0],
					Text:    strings.Join(args[1:], " "),
					Out:     cmd.OutOrStdout(),
				}
				return s.Do(cmd.Context())
			})
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
