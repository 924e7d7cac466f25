package options

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/lovenote/pkg/journal"
)

// PostOptions
type PostOptions struct {
	Type    string
	Mood    string
	Private bool
}

func AddPostArgs(cmd *cobra.Command, o *PostOptions) {
	types := make([]string, 0, 4)
	for _, t := range journal.AllPostTypes() {
		types = append(types, string(t))
	}
	moods := make([]string, 0, 8)
	for _, m := range journal.AllMoods() {
		moods = append(moods, string(m))
	}
	cmd.Flags().StringVarP(&o.Type, "type", "t", string(journal.TypeText),
		"Post type, one of "+strings.Join(types, ", ")+".")
	cmd.Flags().StringVarP(&o.Mood, "mood", "m", "",
		"Mood for mood posts, one of "+strings.Join(moods, ", ")+". Implies --type=mood.")
	cmd.Flags().BoolVarP(&o.Private, "private", "p", false,
		"Mark the post private.")
}

// NewPost builds the composer payload for content.
func (o *PostOptions) NewPost(content string) (journal.NewPost, error) {
	p := journal.NewPost{Content: content, IsPrivate: o.Private}
	var err error
	if p.PostType, err = journal.ParsePostType(o.Type); err != nil {
		return p, err
	}
	if o.Mood != "" {
		if p.Mood, err = journal.ParseMood(o.Mood); err != nil {
			return p, err
		}
		p.PostType = journal.TypeMood
	}
	return p, nil
}
