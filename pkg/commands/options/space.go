package options

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/timeutil"
)

// SpaceOptions is the create-space form as flags.
type SpaceOptions struct {
	Name        string
	Secret      string
	Partner1    string
	Partner2    string
	Anniversary string
	Birthday1   string
	Birthday2   string
}

func AddSpaceArgs(cmd *cobra.Command, o *SpaceOptions) {
	cmd.Flags().StringVar(&o.Name, "name", "", "Name of the shared space.")
	cmd.Flags().StringVar(&o.Secret, "secret", "", "Secret both partners use to enter the space.")
	cmd.Flags().StringVar(&o.Partner1, "partner1", "", "First partner's name.")
	cmd.Flags().StringVar(&o.Partner2, "partner2", "", "Second partner's name.")
	cmd.Flags().StringVar(&o.Anniversary, "anniversary", "", `Anniversary date, example: --anniversary="2020-02-14".`)
	cmd.Flags().StringVar(&o.Birthday1, "birthday1", "", "First partner's birthday, YYYY-MM-DD.")
	cmd.Flags().StringVar(&o.Birthday2, "birthday2", "", "Second partner's birthday, YYYY-MM-DD.")
}

// Fields parses the dates and returns the form. Required fields are left
// to journal.SpaceFields.Validate.
func (o *SpaceOptions) Fields() (journal.SpaceFields, error) {
	f := journal.SpaceFields{
		SpaceName:    o.Name,
		Secret:       o.Secret,
		Partner1Name: o.Partner1,
		Partner2Name: o.Partner2,
	}
	var err error
	if f.AnniversaryDate, err = timeutil.ParseOptionalDate(o.Anniversary); err != nil {
		return f, fmt.Errorf("--anniversary: %w", err)
	}
	if f.Partner1Birthday, err = timeutil.ParseOptionalDate(o.Birthday1); err != nil {
		return f, fmt.Errorf("--birthday1: %w", err)
	}
	if f.Partner2Birthday, err = timeutil.ParseOptionalDate(o.Birthday2); err != nil {
		return f, fmt.Errorf("--birthday2: %w", err)
	}
	return f, nil
}
