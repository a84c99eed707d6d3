package projector

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"consumerwise/internal/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Errorf(string, ...any) {}

type fakeCollection struct {
	mu    sync.Mutex
	state []string
	reads int
}

func (f *fakeCollection) snapshot(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	out := make([]string, len(f.state))
	copy(out, f.state)
	return out, nil
}

func (f *fakeCollection) set(state ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
}

func (f *fakeCollection) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func receiveView(t *testing.T, c <-chan []string) []string {
	t.Helper()
	select {
	case v, ok := <-c:
		require.True(t, ok, "view channel closed early")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for view")
		return nil
	}
}

func requireClosed(t *testing.T, c <-chan []string) {
	t.Helper()
	for {
		select {
		case _, ok := <-c:
			if !ok {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for view channel to close")
		}
	}
}

func TestLive(t *testing.T) {
	t.Parallel()

	sorted := func(s []string) []string {
		out := make([]string, len(s))
		copy(out, s)
		sort.Strings(out)
		return out
	}

	t.Run("initial view then one recompute per accepted event", func(t *testing.T) {
		t.Parallel()
		col := &fakeCollection{}
		col.set("b", "a")
		events := make(chan feed.Event)
		var closeCalls int
		closeSub := func() error {
			closeCalls++
			return nil
		}

		live := NewLive(
			context.Background(),
			events,
			closeSub,
			col.snapshot,
			sorted,
			func(e feed.Event) bool { return e.Key == "mine" },
			nopLogger{},
		)

		assert.Equal(t, []string{"a", "b"}, receiveView(t, live.C))

		col.set("c", "a", "b")
		events <- feed.Event{Collection: "items", Key: "mine", ChangeID: "1"}
		assert.Equal(t, []string{"a", "b", "c"}, receiveView(t, live.C))

		// A filtered-out event triggers no refetch: the next view reflects
		// only the accepted one, and the snapshot reads stay at the initial
		// read plus one per accepted event.
		events <- feed.Event{Collection: "items", Key: "other", ChangeID: "2"}
		col.set("d")
		events <- feed.Event{Collection: "items", Key: "mine", ChangeID: "3"}
		assert.Equal(t, []string{"d"}, receiveView(t, live.C))
		assert.Equal(t, 3, col.readCount())

		require.NoError(t, live.Close())
		assert.Equal(t, 1, closeCalls)
		requireClosed(t, live.C)
	})

	t.Run("nil accept takes every event", func(t *testing.T) {
		t.Parallel()
		col := &fakeCollection{}
		col.set("a")
		events := make(chan feed.Event)

		live := NewLive(context.Background(), events, nil, col.snapshot, sorted, nil, nopLogger{})
		assert.Equal(t, []string{"a"}, receiveView(t, live.C))

		col.set("a", "b")
		events <- feed.Event{Collection: "items", ChangeID: "1"}
		assert.Equal(t, []string{"a", "b"}, receiveView(t, live.C))

		require.NoError(t, live.Close())
		requireClosed(t, live.C)
	})

	t.Run("closed event source closes the view channel", func(t *testing.T) {
		t.Parallel()
		col := &fakeCollection{}
		col.set("a")
		events := make(chan feed.Event)

		live := NewLive(context.Background(), events, nil, col.snapshot, sorted, nil, nopLogger{})
		assert.Equal(t, []string{"a"}, receiveView(t, live.C))

		close(events)
		requireClosed(t, live.C)
	})
}
