package observer

import (
	"context"
	"sync"
)

// Observer defines the callback contract for receiving published events of type T.
type Observer[T any] interface {
	Notify(context.Context, T) error
}

// ObserverFunc adapts a standalone function into an Observer.
//
//revive:disable-next-line:exported
type ObserverFunc[T any] func(context.Context, T) error

// Notify executes the wrapped function.
func (f ObserverFunc[T]) Notify(ctx context.Context, evt T) error {
	if f == nil {
		return nil
	}
	return f(ctx, evt)
}

// Publisher publishes events to downstream observers.
type Publisher[T any] interface {
	Publish(context.Context, T)
}

type entry[T any] struct {
	id  uint64
	obs Observer[T]
}

// Subject coordinates observer registrations and event fan-out.
type Subject[T any] struct {
	mu      sync.RWMutex
	nextID  uint64
	entries []entry[T]
	onError func(error)
}

// NewSubject constructs a Subject with optional initial observers.
func NewSubject[T any](observers ...Observer[T]) *Subject[T] {
	s := &Subject[T]{}
	s.Attach(observers...)
	return s
}

// Publish invokes every observer with the provided event.
func (s *Subject[T]) Publish(ctx context.Context, evt T) {
	if s == nil {
		return
	}

	s.mu.RLock()
	entries := append([]entry[T](nil), s.entries...)
	errHandler := s.onError
	s.mu.RUnlock()

	for _, e := range entries {
		if e.obs == nil {
			continue
		}
		if err := e.obs.Notify(ctx, evt); err != nil && errHandler != nil {
			errHandler(err)
		}
	}
}

// Attach registers additional observers to the subject.
func (s *Subject[T]) Attach(observers ...Observer[T]) {
	if s == nil || len(observers) == 0 {
		return
	}
	s.mu.Lock()
	for _, obs := range observers {
		s.nextID++
		s.entries = append(s.entries, entry[T]{id: s.nextID, obs: obs})
	}
	s.mu.Unlock()
}

// Register attaches a single observer and returns a function that detaches it.
// The cancel function is idempotent. Notifications already in flight on other
// goroutines may still reach the observer after cancel returns.
func (s *Subject[T]) Register(obs Observer[T]) func() {
	if s == nil || obs == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.entries = append(s.entries, entry[T]{id: id, obs: obs})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.entries {
			if e.id == id {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				return
			}
		}
	}
}

// SetErrorHandler configures a callback for observer failures.
func (s *Subject[T]) SetErrorHandler(fn func(error)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}
