// Package livesync keeps one change-feed subscription open for the active
// space and turns every notification into a full refresh.
package livesync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Change is a fire-only notice that something in Table changed. Nothing
// beyond its arrival is relied upon.
type Change struct {
	Table string
	Event string
}

// Subscription is an open change feed. Changes is closed when the feed ends.
type Subscription interface {
	Changes() <-chan Change
	Close() error
}

// Feed opens subscriptions for a space: posts of that space plus every
// like and comment.
type Feed interface {
	Subscribe(ctx context.Context, spaceID string) (Subscription, error)
}

// RefreshFunc re-fetches the space's posts.
type RefreshFunc func(ctx context.Context, spaceID string) error

// State is the controller's lifecycle state.
type State int

const (
	Unarmed State = iota
	Armed
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	default:
		return "unarmed"
	}
}

var ErrNoSpace = errors.New("livesync: space id required")

// Controller owns at most one subscription at a time. Throttle, when
// positive, folds a burst of changes into one refresh issued Throttle after
// the first change of the burst.
type Controller struct {
	Feed     Feed
	Refresh  RefreshFunc
	Throttle time.Duration

	mu     sync.Mutex
	active *armed
}

type armed struct {
	spaceID string
	sub     Subscription
	cancel  context.CancelFunc
	done    chan struct{}
	// ended is set once the pump stops, whether or not Disarm ran.
	ended atomic.Bool
}

// Arm subscribes to spaceID, tearing down any previous subscription first.
// The subscription lives until Disarm, the next Arm, or ctx ends.
func (c *Controller) Arm(ctx context.Context, spaceID string) error {
	if spaceID == "" {
		return ErrNoSpace
	}
	if c.Feed == nil {
		return errors.New("livesync: no change feed configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.disarmLocked()

	subCtx, cancel := context.WithCancel(ctx)
	sub, err := c.Feed.Subscribe(subCtx, spaceID)
	if err != nil {
		cancel()
		return fmt.Errorf("livesync: subscribe %s: %w", spaceID, err)
	}
	a := &armed{
		spaceID: spaceID,
		sub:     sub,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	c.active = a
	go c.pump(subCtx, a)
	return nil
}

// Disarm closes the current subscription, if any, and waits for its
// goroutine to finish.
func (c *Controller) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disarmLocked()
}

// State reports whether a subscription is open. A feed that ended on its
// own counts as unarmed.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.ended.Load() {
		return Unarmed
	}
	return Armed
}

// SpaceID returns the armed space, or "".
func (c *Controller) SpaceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.ended.Load() {
		return ""
	}
	return c.active.spaceID
}

func (c *Controller) disarmLocked() {
	a := c.active
	if a == nil {
		return
	}
	c.active = nil
	a.cancel()
	if err := a.sub.Close(); err != nil {
		log.Printf("livesync: close subscription for %s: %v", a.spaceID, err)
	}
	<-a.done
}

func (c *Controller) pump(ctx context.Context, a *armed) {
	defer close(a.done)
	defer a.ended.Store(true)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	changes := a.sub.Changes()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				if fire != nil {
					c.refresh(ctx, a.spaceID)
				}
				return
			}
			if c.Throttle <= 0 {
				c.refresh(ctx, a.spaceID)
				continue
			}
			if fire == nil {
				timer = time.NewTimer(c.Throttle)
				fire = timer.C
			}
		case <-fire:
			fire = nil
			c.refresh(ctx, a.spaceID)
		}
	}
}

func (c *Controller) refresh(ctx context.Context, spaceID string) {
	if c.Refresh == nil || ctx.Err() != nil {
		return
	}
	if err := c.Refresh(ctx, spaceID); err != nil && ctx.Err() == nil {
		log.Printf("livesync: refresh %s: %v", spaceID, err)
	}
}
