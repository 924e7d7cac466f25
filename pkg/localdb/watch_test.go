package localdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchSeesWritesFromAnotherConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lovenote.db")
	reader, err := Open(path)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer reader.Close()
	reader.Throttle = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := reader.Subscribe(ctx, "ignored")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	// Allow the watcher to register before writing.
	time.Sleep(50 * time.Millisecond)

	writer, err := Open(path)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	defer writer.Close()
	if _, err := writer.InsertSpace(context.Background(), fields("moon")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	select {
	case c, ok := <-sub.Changes():
		if !ok {
			t.Fatal("changes closed early")
		}
		if c.Event != EventFileChanged {
			t.Fatalf("unexpected change %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}
}

func TestWatchCloseEndsChanges(t *testing.T) {
	db := openTest(t)
	sub, err := db.Subscribe(context.Background(), "")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	for range sub.Changes() {
	}
}
