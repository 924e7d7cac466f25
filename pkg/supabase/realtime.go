package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"tableflip.dev/lovenote/pkg/livesync"
)

const (
	phoenixTopic = "phoenix"

	eventJoin      = "phx_join"
	eventLeave     = "phx_leave"
	eventReply     = "phx_reply"
	eventError     = "phx_error"
	eventClose     = "phx_close"
	eventHeartbeat = "heartbeat"
	eventChanges   = "postgres_changes"

	// EventReconnect is sent on a subscription after the socket had to be
	// reopened; anything may have been missed in between.
	EventReconnect = "RECONNECT"
)

// Realtime is a livesync.Feed over the Supabase Realtime websocket.
type Realtime struct {
	endpoint string
	apiKey   string

	Dialer     *websocket.Dialer
	Heartbeat  time.Duration
	RetryDelay time.Duration
}

var _ livesync.Feed = (*Realtime)(nil)

// NewRealtime returns a feed for the project at baseURL.
func NewRealtime(baseURL, apiKey string) *Realtime {
	if !strings.HasPrefix(baseURL, "http") && !strings.HasPrefix(baseURL, "ws") {
		baseURL = "https://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		baseURL = "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		baseURL = "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return &Realtime{
		endpoint:   baseURL + "/realtime/v1/websocket",
		apiKey:     apiKey,
		Dialer:     websocket.DefaultDialer,
		Heartbeat:  25 * time.Second,
		RetryDelay: 2 * time.Second,
	}
}

// Topic is the channel a space's changes are joined on.
func Topic(spaceID string) string {
	return "realtime:space-" + spaceID
}

type message struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
	JoinRef string          `json:"join_ref,omitempty"`
}

// Binding is one postgres_changes subscription of a channel join.
type Binding struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

type joinPayload struct {
	Config struct {
		Broadcast struct {
			Self bool `json:"self"`
		} `json:"broadcast"`
		Presence struct {
			Key string `json:"key"`
		} `json:"presence"`
		PostgresChanges []Binding `json:"postgres_changes"`
	} `json:"config"`
	AccessToken string `json:"access_token,omitempty"`
}

type replyPayload struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

type changePayload struct {
	Data struct {
		Table string `json:"table"`
		Type  string `json:"type"`
	} `json:"data"`
}

// Bindings lists the change feeds joined for a space: its own posts and
// every comment and like, which carry no space column to filter on.
func Bindings(spaceID string) []Binding {
	return []Binding{
		{Event: "*", Schema: "public", Table: "posts", Filter: "space_id=eq." + spaceID},
		{Event: "*", Schema: "public", Table: "comments"},
		{Event: "*", Schema: "public", Table: "likes"},
	}
}

func (r *Realtime) url() string {
	q := url.Values{}
	q.Set("apikey", r.apiKey)
	q.Set("vsn", "1.0.0")
	return r.endpoint + "?" + q.Encode()
}

func (r *Realtime) dial(ctx context.Context) (*websocket.Conn, error) {
	d := r.Dialer
	if d == nil {
		d = websocket.DefaultDialer
	}
	conn, _, err := d.DialContext(ctx, r.url(), nil)
	if err != nil {
		return nil, fmt.Errorf("supabase: dial realtime: %w", err)
	}
	return conn, nil
}

// Subscribe joins the space's channel in the background and returns at once.
// Failed dials and later drops are retried until the subscription is closed.
func (r *Realtime) Subscribe(ctx context.Context, spaceID string) (livesync.Subscription, error) {
	if spaceID == "" {
		return nil, errors.New("supabase: space id required")
	}
	ctx, cancel := context.WithCancel(ctx)
	ch := &channel{
		rt:      r,
		spaceID: spaceID,
		topic:   Topic(spaceID),
		changes: make(chan livesync.Change, 16),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go ch.run(ctx)
	return ch, nil
}

type channel struct {
	rt      *Realtime
	spaceID string
	topic   string
	changes chan livesync.Change
	cancel  context.CancelFunc
	done    chan struct{}
	ref     uint64

	writeMu sync.Mutex
}

func (c *channel) Changes() <-chan livesync.Change {
	return c.changes
}

// Close leaves the channel and waits for the socket to shut down.
func (c *channel) Close() error {
	c.cancel()
	<-c.done
	return nil
}

func (c *channel) nextRef() string {
	return strconv.FormatUint(atomic.AddUint64(&c.ref, 1), 10)
}

func (c *channel) emit(change livesync.Change) {
	select {
	case c.changes <- change:
	default:
		// A refresh is already queued.
	}
}

func (c *channel) run(ctx context.Context) {
	defer close(c.done)
	defer close(c.changes)

	var conn *websocket.Conn
	connected := false
	for {
		if conn == nil {
			var err error
			conn, err = c.rt.dial(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("supabase: realtime %s: %v", c.topic, err)
				if !sleep(ctx, c.rt.RetryDelay) {
					return
				}
				continue
			}
			// Only a redial can have missed changes.
			if connected {
				c.emit(livesync.Change{Table: "*", Event: EventReconnect})
			}
			connected = true
		}

		err := c.serve(ctx, conn)
		conn.Close()
		conn = nil
		if ctx.Err() != nil {
			return
		}
		log.Printf("supabase: realtime %s closed: %v", c.topic, err)
		if !sleep(ctx, c.rt.RetryDelay) {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *channel) send(conn *websocket.Conn, topic, event string, payload interface{}, joinRef string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(message{
		Topic:   topic,
		Event:   event,
		Payload: raw,
		Ref:     c.nextRef(),
		JoinRef: joinRef,
	})
}

// serve joins the channel and reads until the socket fails or ctx ends.
func (c *channel) serve(ctx context.Context, conn *websocket.Conn) error {
	serveCtx, stop := context.WithCancel(ctx)
	defer stop()

	var join joinPayload
	join.Config.PostgresChanges = Bindings(c.spaceID)
	join.AccessToken = c.rt.apiKey
	joinRef := c.nextRef()
	if err := c.send(conn, c.topic, eventJoin, join, joinRef); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	go func() {
		<-serveCtx.Done()
		if ctx.Err() != nil {
			// Best effort; the socket closes right after.
			_ = c.send(conn, c.topic, eventLeave, struct{}{}, joinRef)
		}
		conn.Close()
	}()
	go c.heartbeat(serveCtx, conn)

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			if serveCtx.Err() != nil {
				return nil
			}
			return err
		}
		switch msg.Event {
		case eventChanges:
			if msg.Topic != c.topic {
				continue
			}
			var p changePayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				log.Printf("supabase: realtime %s: decode change: %v", c.topic, err)
			}
			c.emit(livesync.Change{Table: p.Data.Table, Event: p.Data.Type})
		case eventReply:
			var p replyPayload
			if err := json.Unmarshal(msg.Payload, &p); err == nil && p.Status != "ok" {
				return fmt.Errorf("%s rejected: %s", msg.Topic, string(p.Response))
			}
		case eventError, eventClose:
			if msg.Topic == c.topic {
				return fmt.Errorf("channel %s", msg.Event)
			}
		}
	}
}

func (c *channel) heartbeat(ctx context.Context, conn *websocket.Conn) {
	if c.rt.Heartbeat <= 0 {
		return
	}
	t := time.NewTicker(c.rt.Heartbeat)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := c.send(conn, phoenixTopic, eventHeartbeat, struct{}{}, ""); err != nil {
				log.Printf("supabase: realtime heartbeat: %v", err)
				conn.Close()
				return
			}
		}
	}
}
