// Package session fans out sign-in and sign-out notifications to subscribers.
package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSignedIn  Kind = "signed_in"
	KindSignedOut Kind = "signed_out"
)

type Event struct {
	Kind   Kind   `json:"kind"`
	UserID string `json:"user_id"`
}

// Subscription receives the events of one user until it is unsubscribed.
type Subscription struct {
	ID     uuid.UUID
	UserID string
	C      <-chan Event

	out chan Event
}

// Broker is the in-process registry of session subscribers.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[uuid.UUID]*Subscription
	buffer int
	logger *slog.Logger
}

func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[string]map[uuid.UUID]*Subscription),
		buffer: 8,
		logger: logger.With("component", "session_broker"),
	}
}

func (b *Broker) Subscribe(userID string) *Subscription {
	out := make(chan Event, b.buffer)
	s := &Subscription{ID: uuid.New(), UserID: userID, C: out, out: out}

	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.subs[userID]
	if !ok {
		m = make(map[uuid.UUID]*Subscription)
		b.subs[userID] = m
	}
	m[s.ID] = s

	b.logger.Debug("session subscriber added", "user_id", userID, "subscription", s.ID)
	return s
}

// Unsubscribe removes s and closes its channel. Repeated calls are no-ops.
func (b *Broker) Unsubscribe(s *Subscription) {
	if s == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.subs[s.UserID]
	if !ok {
		return
	}
	if _, ok := m[s.ID]; !ok {
		return
	}
	delete(m, s.ID)
	if len(m) == 0 {
		delete(b.subs, s.UserID)
	}
	close(s.out)

	b.logger.Debug("session subscriber removed", "user_id", s.UserID, "subscription", s.ID)
}

// Publish delivers ev to every subscriber of ev.UserID without blocking.
// Subscribers with a full buffer miss the event.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.subs[ev.UserID] {
		select {
		case s.out <- ev:
		default:
			b.logger.Warn("dropping session event; subscriber buffer full", "user_id", ev.UserID, "subscription", s.ID)
		}
	}
}

// Subscribers returns the number of live subscriptions for userID.
func (b *Broker) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}
