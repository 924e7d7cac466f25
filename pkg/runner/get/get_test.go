package get

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/feed"
	"tableflip.dev/lovenote/pkg/gateway"
	"tableflip.dev/lovenote/pkg/gateway/gatewaytest"
	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/session"
	"tableflip.dev/lovenote/pkg/stats"
	"tableflip.dev/lovenote/pkg/view"
)

var now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func newService(t *testing.T, enter bool) *app.Service {
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
	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !enter {
		return svc
	}
	if _, err := svc.CreateSpace(ctx, journal.SpaceFields{
		SpaceName: "小窝", Secret: "s3cret", Partner1Name: "阿晴", Partner2Name: "小北",
	}); err != nil {
		t.Fatalf("create space: %v", err)
	}
	if err := svc.SelectIdentity(ctx, "阿晴"); err != nil {
		t.Fatalf("select identity: %v", err)
	}
	for _, content := range []string{"看海", "吃饭"} {
		if err := svc.Post(ctx, journal.NewPost{Content: content}); err != nil {
			t.Fatalf("post: %v", err)
		}
	}
	return svc
}

func TestGetNoSpace(t *testing.T) {
	svc := newService(t, false)
	n := Get{Service: svc, Out: &bytes.Buffer{}}
	if err := n.Do(context.Background()); !errors.Is(err, app.ErrNoSpace) {
		t.Fatalf("expected ErrNoSpace, got %v", err)
	}
}

func TestGetFeedSearch(t *testing.T) {
	svc := newService(t, true)
	var out bytes.Buffer
	n := Get{Service: svc, Tab: view.TabFeed, Search: "海", Out: &out}
	if err := n.Do(context.Background()); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out.String(), "看海") || strings.Contains(out.String(), "吃饭") {
		t.Fatalf("unexpected feed:\n%s", out.String())
	}

	out.Reset()
	n.Search = "xyz"
	if err := n.Do(context.Background()); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out.String(), view.EmptyFeedText) {
		t.Fatalf("expected empty search text:\n%s", out.String())
	}
}

func TestGetPrintsData(t *testing.T) {
	svc := newService(t, true)
	var got interface{}
	print := func(v interface{}) error {
		got = v
		return nil
	}

	tests := map[view.Tab]func(v interface{}) bool{
		view.TabFeed: func(v interface{}) bool {
			posts, ok := v.([]journal.Post)
			return ok && len(posts) == 2
		},
		view.TabTimeline: func(v interface{}) bool {
			days, ok := v.([]feed.DayGroup)
			return ok && len(days) == 1
		},
		view.TabStats: func(v interface{}) bool {
			a, ok := v.(stats.Aggregates)
			return ok && a.TotalPosts == 2
		},
	}
	for tab, check := range tests {
		n := Get{Service: svc, Tab: tab, Print: print}
		if err := n.Do(context.Background()); err != nil {
			t.Fatalf("%s: %v", tab, err)
		}
		if !check(got) {
			t.Errorf("%s: unexpected data %#v", tab, got)
		}
	}
}

func TestGetTimelineAndStats(t *testing.T) {
	svc := newService(t, true)
	var out bytes.Buffer
	n := Get{Service: svc, Tab: view.TabTimeline, Calendar: true, Month: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), Out: &out}
	if err := n.Do(context.Background()); err != nil {
		t.Fatalf("timeline: %v", err)
	}
	for _, want := range []string{"2024年6月", "2024年6月15日 周六", "看海"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("timeline missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	n = Get{Service: svc, Tab: view.TabStats, Out: &out}
	if err := n.Do(context.Background()); err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"总帖数", "类型分布", stats.NoMoodDataText} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("stats missing %q:\n%s", want, out.String())
		}
	}
}
