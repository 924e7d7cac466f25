package livesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type refreshRecorder struct {
	mu    sync.Mutex
	calls []string
	ch    chan string
}

func newRecorder() *refreshRecorder {
	return &refreshRecorder{ch: make(chan string, 64)}
}

func (r *refreshRecorder) refresh(_ context.Context, spaceID string) error {
	r.mu.Lock()
	r.calls = append(r.calls, spaceID)
	r.mu.Unlock()
	r.ch <- spaceID
	return nil
}

func (r *refreshRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *refreshRecorder) wait(t *testing.T) string {
	t.Helper()
	select {
	case id := <-r.ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refresh")
		return ""
	}
}

func waitForSubs(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Len() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscriptions, got %d", n, h.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestArmRequiresSpace(t *testing.T) {
	c := &Controller{Feed: NewHub()}
	if err := c.Arm(context.Background(), ""); !errors.Is(err, ErrNoSpace) {
		t.Fatalf("expected ErrNoSpace, got %v", err)
	}
	if c.State() != Unarmed {
		t.Fatalf("expected unarmed, got %s", c.State())
	}
}

func TestChangeTriggersRefreshForArmedSpace(t *testing.T) {
	hub := NewHub()
	rec := newRecorder()
	c := &Controller{Feed: hub, Refresh: rec.refresh}
	defer c.Disarm()

	if err := c.Arm(context.Background(), "space-a"); err != nil {
		t.Fatalf("arm: %v", err)
	}
	if c.State() != Armed || c.SpaceID() != "space-a" {
		t.Fatalf("unexpected state %s for %q", c.State(), c.SpaceID())
	}

	// A like in some other space still arrives; it refreshes the armed one.
	hub.Publish(Change{Table: "likes", Event: "INSERT"})
	if got := rec.wait(t); got != "space-a" {
		t.Fatalf("expected refresh of space-a, got %q", got)
	}
}

func TestRearmClosesPreviousSubscription(t *testing.T) {
	hub := NewHub()
	rec := newRecorder()
	c := &Controller{Feed: hub, Refresh: rec.refresh}
	defer c.Disarm()

	if err := c.Arm(context.Background(), "space-a"); err != nil {
		t.Fatalf("arm a: %v", err)
	}
	if err := c.Arm(context.Background(), "space-b"); err != nil {
		t.Fatalf("arm b: %v", err)
	}
	waitForSubs(t, hub, 1)
	if c.SpaceID() != "space-b" {
		t.Fatalf("expected space-b, got %q", c.SpaceID())
	}

	hub.Publish(Change{Table: "posts", Event: "INSERT"})
	if got := rec.wait(t); got != "space-b" {
		t.Fatalf("expected refresh of space-b, got %q", got)
	}
	time.Sleep(50 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Fatalf("expected exactly one refresh, got %d", n)
	}
}

func TestDisarmStopsRefreshing(t *testing.T) {
	hub := NewHub()
	rec := newRecorder()
	c := &Controller{Feed: hub, Refresh: rec.refresh}

	if err := c.Arm(context.Background(), "space-a"); err != nil {
		t.Fatalf("arm: %v", err)
	}
	c.Disarm()
	waitForSubs(t, hub, 0)
	if c.State() != Unarmed {
		t.Fatalf("expected unarmed, got %s", c.State())
	}

	hub.Publish(Change{Table: "posts", Event: "INSERT"})
	time.Sleep(50 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Fatalf("expected no refresh after disarm, got %d", n)
	}
	c.Disarm()
}

func TestContextCancelEndsSubscription(t *testing.T) {
	hub := NewHub()
	c := &Controller{Feed: hub}
	ctx, cancel := context.WithCancel(context.Background())
	if err := c.Arm(ctx, "space-a"); err != nil {
		t.Fatalf("arm: %v", err)
	}
	cancel()
	waitForSubs(t, hub, 0)
	waitForState(t, c, Unarmed)
	c.Disarm()
}

func TestThrottleCoalescesBurst(t *testing.T) {
	hub := NewHub()
	rec := newRecorder()
	c := &Controller{Feed: hub, Refresh: rec.refresh, Throttle: 40 * time.Millisecond}
	defer c.Disarm()

	if err := c.Arm(context.Background(), "space-a"); err != nil {
		t.Fatalf("arm: %v", err)
	}
	for i := 0; i < 5; i++ {
		hub.Publish(Change{Table: "comments", Event: "INSERT"})
	}
	rec.wait(t)
	time.Sleep(100 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Fatalf("expected one coalesced refresh, got %d", n)
	}
}

type failingFeed struct{}

func (failingFeed) Subscribe(context.Context, string) (Subscription, error) {
	return nil, errors.New("boom")
}

func TestSubscribeFailureLeavesUnarmed(t *testing.T) {
	c := &Controller{Feed: failingFeed{}}
	if err := c.Arm(context.Background(), "space-a"); err == nil {
		t.Fatal("expected subscribe error")
	}
	if c.State() != Unarmed {
		t.Fatalf("expected unarmed, got %s", c.State())
	}
}

type endedSub struct{ ch chan Change }

func (s endedSub) Changes() <-chan Change { return s.ch }
func (s endedSub) Close() error           { return nil }

// endingFeed hands out subscriptions whose feed has already ended.
type endingFeed struct{}

func (endingFeed) Subscribe(context.Context, string) (Subscription, error) {
	ch := make(chan Change)
	close(ch)
	return endedSub{ch: ch}, nil
}

func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %s, got %s", want, c.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFeedEndingOnItsOwnLeavesUnarmed(t *testing.T) {
	c := &Controller{Feed: endingFeed{}}
	if err := c.Arm(context.Background(), "space-a"); err != nil {
		t.Fatalf("arm: %v", err)
	}
	waitForState(t, c, Unarmed)
	if id := c.SpaceID(); id != "" {
		t.Fatalf("expected no armed space, got %q", id)
	}
	// Disarm still reaps the ended subscription.
	c.Disarm()

	if err := c.Arm(context.Background(), "space-b"); err != nil {
		t.Fatalf("rearm: %v", err)
	}
	waitForState(t, c, Unarmed)
	c.Disarm()
}
