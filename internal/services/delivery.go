package services

import (
	"context"
	"fmt"
	"time"
)

// DeliverySink is the narrow fan-out contract the core pushes real-time
// events into: fire-and-forget, no delivery guarantee, no backpressure. The
// connection handler that joins clients to their channel lives outside this
// module; the core only publishes.
type DeliverySink interface {
	// Publish emits an event on the user's channel. Implementations must be
	// time-bounded; a returned error means this attempt failed, nothing more.
	Publish(ctx context.Context, userID uint, event string, payload any) error
	// Supports reports whether the sink can carry the given notification
	// channel (push, email, sms, realtime).
	Supports(channel string) bool
}

// DeliveryEvent is the envelope placed on a user channel. ID lets a
// subscriber dedupe at-least-once redeliveries.
type DeliveryEvent struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserChannel names the per-user channel a connection handler subscribes
// to after authenticating the user.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}
