package localdb

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tableflip.dev/lovenote/pkg/livesync"
)

var _ livesync.Feed = (*DB)(nil)

// EventFileChanged is the event of every change the watch reports. The
// file does not say which table moved, so Table is always "*".
const EventFileChanged = "FILE_CHANGED"

// Subscribe watches the database file and its WAL for writes from any
// process. The space id is not used: any write reads as a change.
func (d *DB) Subscribe(ctx context.Context, _ string) (livesync.Subscription, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("localdb: create watcher: %w", err)
	}
	dir := filepath.Dir(d.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("localdb: watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &watch{
		changes: make(chan livesync.Change, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go w.run(ctx, watcher, filepath.Base(d.path), d.Throttle)
	return w, nil
}

type watch struct {
	changes chan livesync.Change
	cancel  context.CancelFunc
	done    chan struct{}
}

func (w *watch) Changes() <-chan livesync.Change {
	return w.changes
}

func (w *watch) Close() error {
	w.cancel()
	<-w.done
	return nil
}

func (w *watch) send(c livesync.Change) {
	select {
	case w.changes <- c:
	default:
		// Drop; the pending change already causes a full refresh.
	}
}

func (w *watch) run(ctx context.Context, watcher *fsnotify.Watcher, base string, delay time.Duration) {
	throttle := newEventThrottle(delay)
	defer close(w.done)
	defer close(w.changes)
	defer throttle.Stop()
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Printf("localdb: watcher close: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			// Unclassified trouble still means refetch.
			log.Printf("localdb: watch: %v", err)
			throttle.Enqueue(w.send)
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.HasPrefix(filepath.Base(evt.Name), base) {
				continue
			}
			throttle.Enqueue(w.send)
		}
	}
}

// eventThrottle folds a burst of file events into one change delivered
// delay after the first event of the burst.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	delay   time.Duration
	stopped bool
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{delay: delay}
}

func (t *eventThrottle) Enqueue(send func(livesync.Change)) {
	change := livesync.Change{Table: "*", Event: EventFileChanged}
	if t.delay <= 0 {
		send(change)
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil || t.stopped {
		return
	}
	// send never blocks, so it runs under the lock and cannot race Stop.
	t.timer = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.timer = nil
		if !t.stopped {
			send(change)
		}
	})
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
