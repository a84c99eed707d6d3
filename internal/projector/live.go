package projector

import (
	"context"

	"consumerwise/internal/feed"
)

type logger interface {
	Debugf(format string, v ...any)
	Errorf(format string, v ...any)
}

// Snapshot fetches the complete current state of a collection. The live
// projector recomputes views from full snapshots rather than applying
// incremental changes.
type Snapshot[T any] func(ctx context.Context) ([]T, error)

// Live republishes a derived view on C whenever the underlying collection
// changes. The initial projection is delivered on subscribe, then one
// projection per accepted change event. Close releases the change
// subscription; C is closed afterwards.
type Live[T any] struct {
	C        <-chan []T
	closeSub func() error
	cancel   context.CancelFunc
}

// NewLive wires a stream of change events to a snapshot fetcher and a pure
// projection. closeSub releases the event source and is called from Close;
// accept filters events before a refetch, nil accepts all.
func NewLive[T any](
	ctx context.Context,
	events <-chan feed.Event,
	closeSub func() error,
	snap Snapshot[T],
	project func([]T) []T,
	accept func(feed.Event) bool,
	log logger,
) *Live[T] {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan []T)

	emit := func() {
		s, err := snap(ctx)
		if err != nil {
			log.Errorf("Live: error fetching snapshot, err: %v", err)
			return
		}
		select {
		case out <- project(s):
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(out)
		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				if accept != nil && !accept(e) {
					continue
				}
				log.Debugf("Live: recomputing projection for collection: %s, change ID: %s", e.Collection, e.ChangeID)
				emit()
			}
		}
	}()

	return &Live[T]{C: out, closeSub: closeSub, cancel: cancel}
}

func (l *Live[T]) Close() error {
	l.cancel()
	if l.closeSub != nil {
		return l.closeSub()
	}
	return nil
}
