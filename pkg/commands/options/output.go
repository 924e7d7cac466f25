package options

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/lovenote/pkg/app"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// HandleError reports err with the message shown to users. In JSON mode the
// error is printed and the command succeeds.
func (o *OutputOptions) HandleError(err error) error {
	if err == nil {
		return nil
	}
	msg := app.Message(err)
	if o.JSON {
		out := map[string]string{
			"error":  msg,
			"detail": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	if msg == err.Error() {
		return err
	}
	return &userError{msg: msg, err: err}
}

// Print writes v as indented JSON.
func (o *OutputOptions) Print(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(color.Output, string(b))
	return err
}

type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg + " (" + e.err.Error() + ")" }

func (e *userError) Unwrap() error { return e.err }
