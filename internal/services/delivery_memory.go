package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sileme/sileme/internal/models"
)

// MemoryDeliverySink keeps published events in memory. It backs redis-less
// single-process deployments and the test suite.
type MemoryDeliverySink struct {
	mu     sync.Mutex
	events map[uint][]DeliveryEvent
}

func NewMemoryDeliverySink() *MemoryDeliverySink {
	return &MemoryDeliverySink{
		events: make(map[uint][]DeliveryEvent),
	}
}

func (sink *MemoryDeliverySink) Publish(_ context.Context, userID uint, event string, payload any) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	sink.events[userID] = append(sink.events[userID], DeliveryEvent{
		ID:        uuid.NewString(),
		Event:     event,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	return nil
}

func (sink *MemoryDeliverySink) Supports(channel string) bool {
	return channel == models.ChannelRealtime
}

// Events returns a copy of everything published for the user.
func (sink *MemoryDeliverySink) Events(userID uint) []DeliveryEvent {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	published := make([]DeliveryEvent, len(sink.events[userID]))
	copy(published, sink.events[userID])
	return published
}
