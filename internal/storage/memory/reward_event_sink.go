package memory

import (
	"context"
	"sync"

	"solay-backend/internal/domain"
	"solay-backend/internal/storage"
)

// RewardEventSink is an in-memory implementation of storage.RewardEventSink.
type RewardEventSink struct {
	mu     sync.RWMutex
	events []*domain.RewardEvent
}

// NewRewardEventSink creates a new in-memory reward event sink.
func NewRewardEventSink() *RewardEventSink {
	return &RewardEventSink{}
}

var _ storage.RewardEventSink = (*RewardEventSink)(nil)

// InsertBulk appends a batch of events.
func (s *RewardEventSink) InsertBulk(_ context.Context, events []*domain.RewardEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		if e == nil {
			return storage.ErrInvalidInput
		}
		copy := *e
		s.events = append(s.events, &copy)
	}
	return nil
}

// Events returns a snapshot of all recorded events.
func (s *RewardEventSink) Events() []*domain.RewardEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.RewardEvent, 0, len(s.events))
	for _, e := range s.events {
		copy := *e
		out = append(out, &copy)
	}
	return out
}
