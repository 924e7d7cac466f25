package livesync

import (
	"context"
	"sync"
)

// Hub is an in-process Feed. Every published change reaches every open
// subscription regardless of space, like the unfiltered like and comment
// feeds of the hosted backend.
type Hub struct {
	mu   sync.Mutex
	subs map[*hubSub]struct{}
}

var _ Feed = (*Hub)(nil)

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*hubSub]struct{})}
}

type hubSub struct {
	hub     *Hub
	spaceID string
	ch      chan Change
	once    sync.Once
}

func (s *hubSub) Changes() <-chan Change { return s.ch }

func (s *hubSub) Close() error {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		close(s.ch)
	})
	return nil
}

// Subscribe opens a subscription that is closed when ctx ends or Close is
// called.
func (h *Hub) Subscribe(ctx context.Context, spaceID string) (Subscription, error) {
	s := &hubSub{hub: h, spaceID: spaceID, ch: make(chan Change, 16)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	return s, nil
}

// Publish delivers c to every subscription without blocking; a subscriber
// with a full buffer already has a refresh pending.
func (h *Hub) Publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.ch <- c:
		default:
		}
	}
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
