package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/lovenote/pkg/app"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(lovenote completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(lovenote completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

func completionService(cmd *cobra.Command) *app.Service {
	svc, err := loadService(cmd)
	if err != nil {
		return nil
	}
	return svc
}

// postCompletions offers the ids of the active space's posts, with the
// start of the content as the description.
func postCompletions(cmd *cobra.Command, toComplete string) []string {
	svc := completionService(cmd)
	if svc == nil {
		return nil
	}
	defer svc.Close()
	var ids []string
	for _, p := range svc.AllPosts() {
		if !strings.HasPrefix(p.ID, toComplete) {
			continue
		}
		content := []rune(strings.ReplaceAll(p.Content, "\n", " "))
		if len(content) > 24 {
			content = append(content[:24], '…')
		}
		ids = append(ids, p.ID+"\t"+string(content))
	}
	return ids
}

func partnerCompletions(cmd *cobra.Command) []string {
	svc := completionService(cmd)
	if svc == nil {
		return nil
	}
	defer svc.Close()
	if sp := svc.Space(); sp != nil {
		return sp.Partners()
	}
	return nil
}
