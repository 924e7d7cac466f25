package space

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/gateway"
	"tableflip.dev/lovenote/pkg/gateway/gatewaytest"
	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/session"
	"tableflip.dev/lovenote/pkg/timeutil"
	"tableflip.dev/lovenote/pkg/view"
)

var now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func newService(t *testing.T) *app.Service {
	t.Helper()
	store, err := session.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	svc := app.New(app.Options{
		Gateway:  gateway.New(gatewaytest.NewMemory(now.Add(-time.Hour))),
		Sessions: store,
		Clock:    func() time.Time { return now },
		Location: time.UTC,
	})
	t.Cleanup(svc.Close)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc
}

func fields() journal.SpaceFields {
	return journal.SpaceFields{
		SpaceName:       "小窝",
		Secret:          "s3cret",
		Partner1Name:    "阿晴",
		Partner2Name:    "小北",
		AnniversaryDate: &timeutil.Date{Year: 2024, Month: time.January, Day: 1},
	}
}

func TestCreateThenIdentity(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	var out bytes.Buffer

	c := Create{Service: svc, Fields: fields(), Out: &out}
	if err := c.Do(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, want := range []string{"已创建空间 小窝", "lovenote identity 阿晴", "lovenote identity 小北"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("create output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	i := Identity{Service: svc, Name: "小北", Out: &out}
	if err := i.Do(ctx); err != nil {
		t.Fatalf("identity: %v", err)
	}
	if svc.Identity() != "小北" {
		t.Fatalf("identity = %q", svc.Identity())
	}
	if !strings.Contains(out.String(), "在一起 166 天") {
		t.Fatalf("expected the header:\n%s", out.String())
	}

	i = Identity{Service: svc, Name: "路人", Out: &bytes.Buffer{}}
	if err := i.Do(ctx); err == nil {
		t.Fatal("expected an error for a stranger")
	}
}

func TestIdentityWithoutSpace(t *testing.T) {
	svc := newService(t)
	i := Identity{Service: svc, Name: "阿晴", Out: &bytes.Buffer{}}
	if err := i.Do(context.Background()); !errors.Is(err, app.ErrNoSpace) {
		t.Fatalf("expected ErrNoSpace, got %v", err)
	}
}

func TestLoginUsesLastSecret(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	if _, err := svc.CreateSpace(ctx, fields()); err != nil {
		t.Fatalf("create: %v", err)
	}
	l := Logout{Service: svc, Out: &bytes.Buffer{}}
	if err := l.Do(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if svc.Space() != nil {
		t.Fatal("expected no space after logout")
	}

	var out bytes.Buffer
	in := Login{Service: svc, Out: &out}
	if err := in.Do(ctx); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out.String(), "已进入空间 小窝") {
		t.Fatalf("unexpected login output:\n%s", out.String())
	}
	if got := svc.Views().Current(); got != view.Select {
		t.Fatalf("view = %v", got)
	}

	in = Login{Service: svc, Secret: "wrong", Out: &bytes.Buffer{}}
	if err := in.Do(ctx); !errors.Is(err, app.ErrWrongSecret) {
		t.Fatalf("expected ErrWrongSecret, got %v", err)
	}
}

func TestWhoAmI(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var out bytes.Buffer
	w := WhoAmI{Service: svc, Out: &out}
	if err := w.Do(ctx); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out.String(), "未进入任何空间") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	if _, err := svc.CreateSpace(ctx, fields()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.SelectIdentity(ctx, "阿晴"); err != nil {
		t.Fatalf("select: %v", err)
	}
	var st Status
	w = WhoAmI{Service: svc, Print: func(v interface{}) error {
		st = v.(Status)
		return nil
	}}
	if err := w.Do(ctx); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if st.Space != "小窝" || st.Identity != "阿晴" || len(st.Partners) != 2 || !st.Configured {
		t.Fatalf("unexpected status %+v", st)
	}
}
