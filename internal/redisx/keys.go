package redisx

import "time"

const (
	// Cart cache slot. One fixed name for the whole device, NOT per-user;
	// cart.Store.Restore filters by user id after load. Load-bearing, see
	// the restore contract in internal/cart.
	KeyCartCache = "cart:lines"

	// Cached order status for fast tracking reads: order:status:{order_id}
	KeyOrderStatus = "order:status:%s"

	// Pub/sub channel carrying the user id whose orders changed.
	ChannelOrdersChanged = "orders:changed"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
