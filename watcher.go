package relay

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes an external source of raw bytes for a Feeder. The
// returned channel must carry the source's current value right away, so a
// freshly fed Path never waits for the next change, and closes when the
// context is canceled or the source is gone for good.
type Watcher interface {
	Watch(ctx context.Context) (<-chan []byte, error)
}

// FileWatcher feeds a single file's contents, re-read on every write.
type FileWatcher struct {
	name string
}

// NewFileWatcher watches the file at name.
func NewFileWatcher(name string) *FileWatcher {
	return &FileWatcher{name: name}
}

// Watch emits the file contents immediately and again after each write or
// create event. Reads that race a writer mid-truncate simply wait for the
// next event; fsnotify error events are ignored and watching continues.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := notify.Add(w.name); err != nil {
		notify.Close()
		return nil, fmt.Errorf("failed to watch file %s: %w", w.name, err)
	}

	feed := make(chan []byte)
	go func() {
		defer close(feed)
		defer notify.Close()

		emit := func() bool {
			data, err := os.ReadFile(w.name)
			if err != nil {
				return true
			}
			select {
			case feed <- data:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-notify.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if !emit() {
					return
				}
			case _, ok := <-notify.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return feed, nil
}

// ChannelWatcher adapts an existing byte channel into a Watcher, for
// custom sources and for tests.
type ChannelWatcher struct {
	source <-chan []byte
	direct bool
}

// NewChannelWatcher forwards values from source through a goroutine that
// honors context cancellation.
func NewChannelWatcher(source <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{source: source}
}

// NewSyncChannelWatcher hands the source channel to the Feeder as-is, with
// no goroutine in between. Pair it with SyncMode for deterministic tests.
func NewSyncChannelWatcher(source <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{source: source, direct: true}
}

// Watch returns the forwarding channel, or the source itself for the sync
// variant.
func (w *ChannelWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if w.direct {
		return w.source, nil
	}

	feed := make(chan []byte)
	go func() {
		defer close(feed)
		for {
			var raw []byte
			var ok bool
			select {
			case <-ctx.Done():
				return
			case raw, ok = <-w.source:
				if !ok {
					return
				}
			}
			select {
			case feed <- raw:
			case <-ctx.Done():
				return
			}
		}
	}()
	return feed, nil
}
