package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/example/storefront/internal/kafka"
	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/redisx"
)

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID string, to orders.Status) (userID string, err error)
}

// Service walks fresh orders through processing -> delivering -> completed.
// The engine itself never writes statuses; this worker is the external
// fulfillment process the feed observes.
type Service struct {
	Repo        StatusUpdater
	Redis       *redis.Client
	Events      *kafkax.OrderEvents
	ServiceName string

	// AdvanceDelay is the dwell time between status hops.
	AdvanceDelay time.Duration
}

// HandleOrderCreated is wired as the consumer handler for
// storefront.order.created.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCreated {
		return nil // ignore
	}

	// dedup on event_id, replays are expected
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}

	for _, next := range []orders.Status{orders.StatusDelivering, orders.StatusCompleted} {
		if s.AdvanceDelay > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(s.AdvanceDelay):
			}
		}
		if err := s.advance(ctx, p.OrderID, next); err != nil {
			// already advanced elsewhere or gone; nothing to retry
			log.Printf("fulfillment: order %s -> %s: %v", p.OrderID, next, err)
			return nil
		}
	}
	return nil
}

func (s *Service) advance(ctx context.Context, orderID string, to orders.Status) error {
	userID, err := s.Repo.UpdateStatus(ctx, orderID, to)
	if err != nil {
		return err
	}

	// refresh the tracking cache and wake live feeds
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(redisx.StatusCache{Status: string(to), UserID: userID})
	_ = s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	if err := redisx.PublishOrdersChanged(ctx, s.Redis, userID); err != nil {
		log.Printf("fulfillment: notify change: %v", err)
	}

	if s.Events != nil {
		if err := s.Events.PublishStatusChanged(ctx, orderID, userID, to); err != nil {
			log.Printf("fulfillment: publish status event: %v", err)
		}
	}
	log.Printf("fulfillment: order %s -> %s", orderID, to)
	return nil
}
