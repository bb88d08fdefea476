package redisx

// StatusCache is the cached order-tracking payload. UserID scopes reads to
// the order's owner; handlers strip it before responding.
type StatusCache struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}
