// Package space runs the commands that enter, inspect and leave a shared
// space.
package space

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/printers"
)

var errNoService = errors.New("space: no service")

var (
	bold  = color.New(color.Bold)
	faint = color.New(color.Faint)
)

func out(w io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return color.Output
}

// Create makes a new space and enters it.
type Create struct {
	Service *app.Service
	Fields  journal.SpaceFields
	Out     io.Writer
}

func (n *Create) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	sp, err := n.Service.CreateSpace(ctx, n.Fields)
	if err != nil {
		return err
	}
	w := out(n.Out)
	_, _ = bold.Fprintf(w, "已创建空间 %s\n", sp.SpaceName)
	choose(w, sp)
	return nil
}

// Login enters the space matching Secret, or the last used secret when
// Secret is blank.
type Login struct {
	Service *app.Service
	Secret  string
	Out     io.Writer
}

func (n *Login) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	secret := strings.TrimSpace(n.Secret)
	if secret == "" {
		secret = n.Service.Views().LastSecret()
	}
	sp, err := n.Service.Login(ctx, secret)
	if err != nil {
		return err
	}
	w := out(n.Out)
	_, _ = bold.Fprintf(w, "已进入空间 %s\n", sp.SpaceName)
	choose(w, sp)
	return nil
}

func choose(w io.Writer, sp *journal.Space) {
	_, _ = faint.Fprintln(w, "选择你的身份:")
	for _, name := range sp.Partners() {
		fmt.Fprintf(w, "  lovenote identity %s\n", name)
	}
}

// Identity selects who is writing. A blank Name lists the choices.
type Identity struct {
	Service *app.Service
	Name    string
	Out     io.Writer
}

func (n *Identity) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	sp := n.Service.Space()
	if sp == nil {
		return app.ErrNoSpace
	}
	w := out(n.Out)
	if strings.TrimSpace(n.Name) == "" {
		choose(w, sp)
		return nil
	}
	if err := n.Service.SelectIdentity(ctx, n.Name); err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out, Me: n.Service.Identity()}
	pp.Header(sp, n.Service.Stats())
	return nil
}

// Status is what whoami reports.
type Status struct {
	Space      string   `json:"space,omitempty"`
	Identity   string   `json:"identity,omitempty"`
	Partners   []string `json:"partners,omitempty"`
	Configured bool     `json:"configured"`
	LiveSync   string   `json:"live_sync"`
}

// WhoAmI prints the active space and identity.
type WhoAmI struct {
	Service *app.Service
	Out     io.Writer
	// Print, when set, receives the status instead of the pretty output.
	Print func(v interface{}) error
}

func (n *WhoAmI) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	st := Status{
		Identity:   n.Service.Identity(),
		Configured: n.Service.Configured(),
		LiveSync:   n.Service.SyncState().String(),
	}
	sp := n.Service.Space()
	if sp != nil {
		st.Space = sp.SpaceName
		st.Partners = sp.Partners()
	}
	if n.Print != nil {
		return n.Print(st)
	}

	w := out(n.Out)
	if sp == nil {
		_, _ = faint.Fprintln(w, "未进入任何空间")
		return nil
	}
	pp := printers.PrettyPrint{Out: n.Out, Me: st.Identity}
	pp.Header(sp, n.Service.Stats())
	if st.Identity == "" {
		choose(w, sp)
	}
	return nil
}

// Logout leaves the active space.
type Logout struct {
	Service *app.Service
	Out     io.Writer
}

func (n *Logout) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	if err := n.Service.Logout(); err != nil {
		return err
	}
	_, _ = faint.Fprintln(out(n.Out), "已退出空间")
	return nil
}
