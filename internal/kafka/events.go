package kafka

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/example/storefront/internal/orders"
)

// OrderEvents publishes order lifecycle envelopes. Implements
// checkout.EventPublisher; the fulfillment worker uses it for status events.
type OrderEvents struct {
	Created *Producer // topic storefront.order.created
	Status  *Producer // topic storefront.order.status, nil when unused
	Service string
}

func (e *OrderEvents) PublishOrderCreated(ctx context.Context, o orders.Order) error {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		CorrelationID: o.ID,
		Payload: MustMarshal(orders.OrderCreatedPayload{
			OrderID:    o.ID,
			UserID:     o.UserID,
			Lines:      o.Lines,
			TotalCents: o.TotalCents,
		}),
	}
	e.Created.Publish(orders.PartitionKey(o.ID), MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}

func (e *OrderEvents) PublishStatusChanged(ctx context.Context, orderID, userID string, status orders.Status) error {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		CorrelationID: orderID,
		Payload: MustMarshal(orders.OrderStatusChangedPayload{
			OrderID: orderID,
			UserID:  userID,
			Status:  status,
		}),
	}
	e.Status.Publish(orders.PartitionKey(orderID), MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}
