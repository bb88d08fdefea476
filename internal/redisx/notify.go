package redisx

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// PublishOrdersChanged tells subscribers that userID's order set changed.
// Every writer to the orders collection calls this after a successful write.
func PublishOrdersChanged(ctx context.Context, rdb *redis.Client, userID string) error {
	return rdb.Publish(ctx, ChannelOrdersChanged, userID).Err()
}

// Notifier satisfies checkout.Notifier over the shared client.
type Notifier struct{ R *redis.Client }

func (n *Notifier) OrdersChanged(ctx context.Context, userID string) error {
	return PublishOrdersChanged(ctx, n.R, userID)
}

// ChangeListener adapts redis pub/sub to the feed's change source. Implements
// feed.ChangeSource.
type ChangeListener struct{ R *redis.Client }

// Subscribe yields a signal per change notification, coalescing bursts, until
// release is called or ctx ends. The channel closes once the subscription is
// released; release is safe to call more than once.
func (c *ChangeListener) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func()) {
	ps := c.R.Subscribe(ctx, ChannelOrdersChanged)
	out := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				if m.Payload != "" && m.Payload != userID {
					continue
				}
				select {
				case out <- struct{}{}:
				default: // a signal is already pending
				}
			}
		}
	}()

	var once sync.Once
	release := func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}
	return out, release
}
