package observer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/brightloom/filescan/internal/config"
)

// TestMain ensures no watcher or debounce goroutines leak across tests.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}

func waitForEvent(t *testing.T, ch <-chan ChangeEvent, want EventType, path string) ChangeEvent {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Type == want && (path == "" || ev.Path == path) {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func TestObserverEmitsCreatedOnNewFile(t *testing.T) {
	dir := t.TempDir()
	opts := config.Default()
	opts.WatchDebounceMs = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := Monitor(ctx, []string{dir}, opts)
	require.NoError(t, err)
	defer obs.Stop()

	target := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	ev := waitForEvent(t, obs.Events(), Created, target)
	assert.Equal(t, target, ev.Path)
}

func TestObserverEmitsDeletedOnRemove(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "doomed.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	opts := config.Default()
	opts.WatchDebounceMs = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := Monitor(ctx, []string{dir}, opts)
	require.NoError(t, err)
	defer obs.Stop()

	require.NoError(t, os.Remove(target))
	ev := waitForEvent(t, obs.Events(), Deleted, target)
	assert.Equal(t, target, ev.Path)
}

func TestObserverStopClosesEventsChannel(t *testing.T) {
	dir := t.TempDir()
	opts := config.Default()

	ctx := context.Background()
	obs, err := Monitor(ctx, []string{dir}, opts)
	require.NoError(t, err)

	obs.Stop()

	_, ok := <-obs.Events()
	assert.False(t, ok)
}

func TestObserverStatsCountProcessedEvents(t *testing.T) {
	dir := t.TempDir()
	opts := config.Default()
	opts.WatchDebounceMs = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := Monitor(ctx, []string{dir}, opts)
	require.NoError(t, err)
	defer obs.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644))
	waitForEvent(t, obs.Events(), Created, "")

	assert.GreaterOrEqual(t, obs.Stats().EventsProcessed, uint64(1))
}

func TestDebouncerCoalescesRapidEvents(t *testing.T) {
	var got []EventType
	done := make(chan struct{})

	d := newDebouncer(20*time.Millisecond, func(path string, t EventType) {
		got = append(got, t)
		close(done)
	})

	d.add("x", Created)
	d.add("x", Modified)
	d.add("x", Modified)

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("debouncer never flushed")
	}

	require.Len(t, got, 1)
	assert.Equal(t, Modified, got[0])
}

func TestDebouncerZeroWindowFlushesImmediately(t *testing.T) {
	var count int
	d := newDebouncer(0, func(path string, t EventType) { count++ })
	d.add("x", Created)
	d.add("y", Created)
	assert.Equal(t, 2, count)
}
