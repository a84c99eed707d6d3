// Package feed carries change notifications between writers and live
// projections. Every successful write publishes an event to a per-collection
// Redis channel; subscribers treat an event as "the collection changed" and
// refetch, so delivery order within a channel follows Redis publish order.
package feed

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v9"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const channelPrefix = "consumerwise:changes:"

type Event struct {
	Collection string `json:"collection"`
	Key        string `json:"key"`
	ChangeID   string `json:"change_id"`
}

type logger interface {
	Debugf(format string, v ...any)
	Errorf(format string, v ...any)
}

type Publisher struct {
	RDB    *redis.Client
	Logger logger
}

// Publish announces a change to collection. Key scopes the change to one
// document (the retailer ID for stock changes); it is empty for
// collection-wide changes.
func (p Publisher) Publish(ctx context.Context, collection string, key string) error {
	e := Event{
		Collection: collection,
		Key:        key,
		ChangeID:   uuid.NewString(),
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrapf(err, "error marshalling change event: %+v", e)
	}
	if err = p.RDB.Publish(ctx, channelPrefix+collection, payload).Err(); err != nil {
		return errors.Wrapf(err, "error publishing change event to channel: %s", channelPrefix+collection)
	}
	p.Logger.Debugf("Publish: change event for collection: %s, key: %s, change ID: %s", collection, key, e.ChangeID)
	return nil
}

type Subscription struct {
	C      <-chan Event
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

// Subscribe opens a change subscription for one collection. The caller must
// Close it when the consumer goes away, or the pub/sub connection leaks.
func Subscribe(ctx context.Context, rdb *redis.Client, collection string, log logger) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	pubsub := rdb.Subscribe(ctx, channelPrefix+collection)
	out := make(chan Event)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					log.Errorf("Subscribe: error unmarshalling change event from channel: %s, payload: %s, err: %v",
						msg.Channel, msg.Payload, err)
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{C: out, pubsub: pubsub, cancel: cancel}
}

func (s *Subscription) Close() error {
	s.cancel()
	return errors.Wrap(s.pubsub.Close(), "error closing change subscription")
}
