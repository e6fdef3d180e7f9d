package relay

import (
	"testing"
	"time"
)

func TestKeyTag(t *testing.T) {
	field := KeyTag.Field("root")
	if field.Key().Name() != "tag" {
		t.Errorf("expected key 'tag', got %q", field.Key().Name())
	}
}

func TestKeyCount(t *testing.T) {
	field := KeyCount.Field(3)
	if field.Key().Name() != "count" {
		t.Errorf("expected key 'count', got %q", field.Key().Name())
	}
}

func TestKeyError(t *testing.T) {
	field := KeyError.Field("something went wrong")
	if field.Key().Name() != "error" {
		t.Errorf("expected key 'error', got %q", field.Key().Name())
	}
}

func TestKeyDebounce(t *testing.T) {
	field := KeyDebounce.Field(100 * time.Millisecond)
	if field.Key().Name() != "debounce" {
		t.Errorf("expected key 'debounce', got %q", field.Key().Name())
	}
}

func TestKeyWatcherType(t *testing.T) {
	field := KeyWatcherType.Field("*relay.FileWatcher")
	if field.Key().Name() != "watcher_type" {
		t.Errorf("expected key 'watcher_type', got %q", field.Key().Name())
	}
}
