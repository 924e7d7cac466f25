package options

import (
	"time"

	"github.com/spf13/cobra"
)

const layoutMonth = "2006-01"

// SearchOptions
type SearchOptions struct {
	Search   string
	Comments bool
}

func AddSearchArgs(cmd *cobra.Command, o *SearchOptions) {
	cmd.Flags().StringVarP(&o.Search, "search", "s", "",
		"Only show posts whose content, author or mood contains the text.")
	cmd.Flags().BoolVarP(&o.Comments, "comments", "c", false,
		"Expand comment threads.")
}

// CalendarOptions
type CalendarOptions struct {
	Calendar bool
	Month    string
}

func AddCalendarArgs(cmd *cobra.Command, o *CalendarOptions) {
	cmd.Flags().BoolVar(&o.Calendar, "calendar", false,
		"Show a month calendar of posting days.")
	cmd.Flags().StringVar(&o.Month, "month", "",
		`Month for --calendar, example: --month="2024-02". Defaults to this month.`)
}

// GetMonth returns the first of the requested month in loc, or of now's
// month when none was given.
func (o *CalendarOptions) GetMonth(now time.Time, loc *time.Location) (time.Time, error) {
	if o.Month == "" {
		now = now.In(loc)
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc), nil
	}
	return time.ParseInLocation(layoutMonth, o.Month, loc)
}
