package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"tableflip.dev/lovenote/pkg/app"
	"tableflip.dev/lovenote/pkg/gateway"
	"tableflip.dev/lovenote/pkg/gateway/gatewaytest"
	"tableflip.dev/lovenote/pkg/journal"
	"tableflip.dev/lovenote/pkg/session"
	"tableflip.dev/lovenote/pkg/timeutil"
)

var now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, withSpace bool) *Service {
	t.Helper()
	store, err := session.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	a := app.New(app.Options{
		Gateway:  gateway.New(gatewaytest.NewMemory(now.Add(-time.Hour))),
		Sessions: store,
		Clock:    func() time.Time { return now },
		Location: time.UTC,
	})
	t.Cleanup(a.Close)
	ctx := context.Background()
	if err := a.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if withSpace {
		anniversary := timeutil.Date{Year: 2024, Month: time.January, Day: 1}
		_, err := a.CreateSpace(ctx, journal.SpaceFields{
			SpaceName:       "小窝",
			Secret:          "s3cret",
			Partner1Name:    "阿晴",
			Partner2Name:    "小北",
			AnniversaryDate: &anniversary,
		})
		if err != nil {
			t.Fatalf("create space: %v", err)
		}
		if err := a.SelectIdentity(ctx, "阿晴"); err != nil {
			t.Fatalf("select identity: %v", err)
		}
	}
	return NewService(a)
}

func TestServiceRequiresSpace(t *testing.T) {
	svc := newTestService(t, false)
	if _, err := svc.Feed(context.Background(), "", 0); err == nil {
		t.Fatalf("expected an error without a space")
	}
	if _, err := NewService(nil).Stats(context.Background()); err != errNoService {
		t.Fatalf("expected errNoService, got %v", err)
	}
}

func TestServiceCreatePost(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, true)

	dto, err := svc.CreatePost(ctx, journal.NewPost{Content: "想你", PostType: journal.TypeMood, Mood: journal.MoodLove})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if dto.ID == "" {
		t.Fatalf("expected generated id")
	}
	if dto.Author != "阿晴" || !dto.Mine {
		t.Fatalf("expected own post by 阿晴, got %+v", dto)
	}
	if dto.Type != string(journal.TypeMood) || dto.Mood != string(journal.MoodLove) {
		t.Fatalf("unexpected type/mood: %s/%s", dto.Type, dto.Mood)
	}
	if dto.CreatedISO == "" {
		t.Fatalf("expected created timestamp")
	}

	if _, err := svc.CreatePost(ctx, journal.NewPost{Content: "   "}); err == nil {
		t.Fatalf("expected blank content to fail")
	}
}

func TestServiceLikeAndComment(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, true)

	dto, err := svc.CreatePost(ctx, journal.NewPost{Content: "看海"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	liked, err := svc.ToggleLike(ctx, dto.ID)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if liked.Likes != 1 || !liked.LikedByMe {
		t.Fatalf("expected one like by me, got %+v", liked)
	}
	unliked, err := svc.ToggleLike(ctx, dto.ID)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if unliked.Likes != 0 || unliked.LikedByMe {
		t.Fatalf("expected like removed, got %+v", unliked)
	}

	commented, err := svc.Comment(ctx, dto.ID, " 好美 ")
	if err != nil {
		t.Fatalf("Comment failed: %v", err)
	}
	if len(commented.Comments) != 1 || commented.Comments[0].Content != "好美" {
		t.Fatalf("unexpected comments: %+v", commented.Comments)
	}
	if _, err := svc.Comment(ctx, dto.ID, " "); err == nil {
		t.Fatalf("expected blank comment to fail")
	}
	if _, err := svc.ToggleLike(ctx, "missing"); err == nil {
		t.Fatalf("expected unknown post to fail")
	}
}

func TestServiceFeedQueryAndLimit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, true)

	for _, content := range []string{"看海", "吃饭", "海边散步"} {
		if _, err := svc.CreatePost(ctx, journal.NewPost{Content: content}); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	all, err := svc.Feed(ctx, "", 0)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(all) != 3 || all[0].Content != "海边散步" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	matches, err := svc.Feed(ctx, "海", 0)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	limited, err := svc.Feed(ctx, "", 1)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit of 1, got %d", len(limited))
	}
}

func TestServiceStatsAndWhoAmI(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, true)
	if _, err := svc.CreatePost(ctx, journal.NewPost{Content: "hello", IsPrivate: true}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.TotalPosts != 1 || st.PrivacyPercent != 100 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.DaysTogether != 166 {
		t.Fatalf("expected 166 days together, got %d", st.DaysTogether)
	}

	who, err := svc.WhoAmI(ctx)
	if err != nil {
		t.Fatalf("WhoAmI failed: %v", err)
	}
	if who.Name != "小窝" || who.Identity != "阿晴" || len(who.Partners) != 2 {
		t.Fatalf("unexpected whoami: %+v", who)
	}
	b, _ := json.Marshal(who)
	if strings.Contains(string(b), "s3cret") {
		t.Fatalf("secret leaked: %s", b)
	}
}

func TestArgumentHelpers(t *testing.T) {
	args := map[string]interface{}{
		"id":    " abc ",
		"blank": "  ",
		"limit": float64(5),
	}
	if v, err := requireString(args, "id"); err != nil || v != "abc" {
		t.Fatalf("requireString(id) = %q, %v", v, err)
	}
	if _, err := requireString(args, "blank"); err == nil {
		t.Fatalf("expected blank to be rejected")
	}
	if v, ok := intArg(args, "limit"); !ok || v != 5 {
		t.Fatalf("intArg(limit) = %d, %v", v, ok)
	}
	if _, ok := intArg(args, "missing"); ok {
		t.Fatalf("expected missing limit")
	}
	if got := templateArg(map[string]interface{}{"id": []string{"p-1"}}, "id"); got != "p-1" {
		t.Fatalf("templateArg = %q", got)
	}
}

func TestToJSONResult(t *testing.T) {
	result, err := toJSONResult(map[string]int{"count": 2})
	if err != nil {
		t.Fatalf("toJSONResult failed: %v", err)
	}
	if result.IsError || len(result.Content) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok || text.Text != `{"count":2}` {
		t.Fatalf("unexpected content: %#v", result.Content[0])
	}
}
