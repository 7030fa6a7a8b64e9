package signal

import (
	"context"
	"sync"
)

// Sim is a thread-safe in-memory Signal. Subscribers are notified synchronously
// on the goroutine that publishes the value.
type Sim struct {
	name string

	mu       sync.Mutex
	value    any
	writeErr error
	next     Token
	subs     map[Token]Callback
	writes   []any
}

var _ Signal = (*Sim)(nil)

// NewSim creates a simulated signal holding the initial value.
func NewSim(name string, initial any) *Sim {
	return &Sim{
		name:  name,
		value: initial,
		subs:  make(map[Token]Callback),
	}
}

// Name returns the device path of the signal.
func (s *Sim) Name() string {
	return s.name
}

// Get returns the current value.
func (s *Sim) Get() (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}

// Set writes a setpoint and notifies subscribers.
func (s *Sim) Set(ctx context.Context, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.writeErr != nil {
		err := s.writeErr
		s.mu.Unlock()
		return err
	}
	s.writes = append(s.writes, value)
	s.mu.Unlock()

	s.Push(value)
	return nil
}

// Push publishes a new value as if it had been read back from hardware.
func (s *Sim) Push(value any) {
	s.mu.Lock()
	s.value = value
	tokens := make([]Token, 0, len(s.subs))
	for token := range s.subs {
		tokens = append(tokens, token)
	}
	s.mu.Unlock()

	for _, token := range tokens {
		// A callback may unsubscribe others while this publish is in flight.
		s.mu.Lock()
		cb, ok := s.subs[token]
		s.mu.Unlock()
		if ok {
			cb(value)
		}
	}
}

// Subscribe registers cb for value changes.
func (s *Sim) Subscribe(cb Callback) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.subs[s.next] = cb
	return s.next
}

// Unsubscribe removes a subscription. Unknown tokens are ignored.
func (s *Sim) Unsubscribe(token Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, token)
}

// Subscribers reports the number of live subscriptions.
func (s *Sim) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Writes returns every value written through Set, oldest first.
func (s *Sim) Writes() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.writes...)
}

// FailWrites makes subsequent Set calls return err. A nil err clears it.
func (s *Sim) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}
