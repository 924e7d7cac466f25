package supabase

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tableflip.dev/lovenote/pkg/livesync"
)

type joinMessage struct {
	Topic   string      `json:"topic"`
	Event   string      `json:"event"`
	Ref     string      `json:"ref"`
	Payload joinPayload `json:"payload"`
}

func TestRealtimeJoinsAndForwardsChanges(t *testing.T) {
	joined := make(chan joinMessage, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/realtime/v1/websocket" || r.URL.Query().Get("apikey") != "anon" {
			t.Errorf("unexpected socket url %s", r.URL)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var join joinMessage
		if err := conn.ReadJSON(&join); err != nil {
			t.Errorf("read join: %v", err)
			return
		}
		joined <- join
		_ = conn.WriteJSON(map[string]interface{}{
			"topic": join.Topic, "event": "phx_reply", "ref": join.Ref,
			"payload": map[string]interface{}{"status": "ok", "response": map[string]interface{}{}},
		})
		_ = conn.WriteJSON(map[string]interface{}{
			"topic": join.Topic, "event": "postgres_changes", "ref": nil,
			"payload": map[string]interface{}{"data": map[string]interface{}{"table": "comments", "type": "INSERT"}},
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	rt := NewRealtime(srv.URL, "anon")
	rt.Heartbeat = 0
	sub, err := rt.Subscribe(context.Background(), "s1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	select {
	case join := <-joined:
		if join.Topic != "realtime:space-s1" || join.Event != "phx_join" {
			t.Fatalf("unexpected join %+v", join)
		}
		b := join.Payload.Config.PostgresChanges
		if len(b) != 3 || b[0].Table != "posts" || b[0].Filter != "space_id=eq.s1" || b[1].Filter != "" || b[2].Table != "likes" {
			t.Fatalf("unexpected bindings %+v", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for join")
	}

	select {
	case c := <-sub.Changes():
		if c != (livesync.Change{Table: "comments", Event: "INSERT"}) {
			t.Fatalf("unexpected change %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := <-sub.Changes(); ok {
		t.Fatal("expected changes channel closed")
	}
}

func TestRealtimeDialFailureRetriesInBackground(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	rt := NewRealtime(srv.URL, "anon")
	rt.RetryDelay = 10 * time.Millisecond
	sub, err := rt.Subscribe(context.Background(), "s1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	select {
	case c, ok := <-sub.Changes():
		if ok {
			t.Fatalf("unexpected change %+v before any connection", c)
		}
		t.Fatal("changes closed while still retrying")
	default:
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRealtimeSubscribeDoesNotWaitForHandshake(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			// Accept and never answer the upgrade.
			defer conn.Close()
		}
	}()

	rt := NewRealtime("http://"+ln.Addr().String(), "anon")
	returned := make(chan livesync.Subscription, 1)
	go func() {
		sub, err := rt.Subscribe(context.Background(), "s1")
		if err != nil {
			t.Errorf("subscribe: %v", err)
		}
		returned <- sub
	}()

	var sub livesync.Subscription
	select {
	case sub = <-returned:
	case <-time.After(time.Second):
		t.Fatal("subscribe blocked on the websocket handshake")
	}
	if sub == nil {
		return
	}

	closed := make(chan struct{})
	go func() {
		_ = sub.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("close blocked on the pending dial")
	}
}

func TestRealtimeEmitsNothingOnFirstConnect(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	rt := NewRealtime(srv.URL, "anon")
	rt.Heartbeat = 0
	sub, err := rt.Subscribe(context.Background(), "s1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()
	select {
	case c := <-sub.Changes():
		t.Fatalf("unexpected change %+v on the first connection", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNewRealtimeEndpoint(t *testing.T) {
	if got := NewRealtime("https://abc.supabase.co/", "k").endpoint; got != "wss://abc.supabase.co/realtime/v1/websocket" {
		t.Fatalf("unexpected endpoint %s", got)
	}
	if got := NewRealtime("abc.supabase.co", "k").endpoint; got != "wss://abc.supabase.co/realtime/v1/websocket" {
		t.Fatalf("unexpected endpoint %s", got)
	}
}
