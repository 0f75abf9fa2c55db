// Package eventpipe is an in-process instrumentation system: named sources
// register emit hooks, subscribers listen for source announcements and
// structured counter events.
//
// It reproduces the registration-ordering quirk of the host APIs it stands in
// for: Subscribe announces every already-known source synchronously, before
// the caller holds its cancel handle.
package eventpipe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vshulcz/Countra/internal/domain"
	"github.com/vshulcz/Countra/internal/ports"
	"github.com/vshulcz/Countra/pkg/observer"
)

// EmitFunc produces one emission interval's worth of payload items.
type EmitFunc func() []any

// Source describes a telemetry source registered with the hub.
type Source struct {
	// Emit is invoked once per interval while the source is enabled.
	Emit EmitFunc
	// OnEnable, when set, runs before emission starts and may reject the
	// enable. Hooks are third-party code and are allowed to panic; callers
	// of Enable contain that.
	OnEnable func(domain.SourceSettings) error
}

type sourceState struct {
	src  Source
	stop chan struct{}
}

// Hub fans out source announcements and counter events to subscribers.
type Hub struct {
	mu      sync.Mutex
	sources map[string]*sourceState
	order   []string
	closed  bool

	announce *observer.Subject[string]
	events   *observer.Subject[domain.Event]
	wg       sync.WaitGroup
}

var _ ports.EventBus = (*Hub)(nil)

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		sources:  map[string]*sourceState{},
		announce: observer.NewSubject[string](),
		events:   observer.NewSubject[domain.Event](),
	}
}

// RegisterSource announces a new named source to current and future
// subscribers. Source names are unique for the lifetime of the process.
func (h *Hub) RegisterSource(name string, src Source) error {
	h.mu.Lock()
	if _, dup := h.sources[name]; dup {
		h.mu.Unlock()
		return fmt.Errorf("eventpipe: source %q already registered", name)
	}
	h.sources[name] = &sourceState{src: src}
	h.order = append(h.order, name)
	h.mu.Unlock()

	h.announce.Publish(context.Background(), name)
	return nil
}

// Subscribe attaches the listener and returns a detach function. Sources
// registered before the call are replayed synchronously, in registration
// order, before Subscribe returns.
func (h *Hub) Subscribe(l ports.TelemetryListener) (func(), error) {
	if l == nil {
		return nil, fmt.Errorf("eventpipe: nil listener")
	}

	h.mu.Lock()
	known := append([]string(nil), h.order...)
	cancelAnnounce := h.announce.Register(observer.ObserverFunc[string](func(_ context.Context, name string) error {
		l.SourceCreated(name)
		return nil
	}))
	cancelEvents := h.events.Register(observer.ObserverFunc[domain.Event](func(_ context.Context, evt domain.Event) error {
		l.EventWritten(evt)
		return nil
	}))
	h.mu.Unlock()

	for _, name := range known {
		l.SourceCreated(name)
	}

	return func() {
		cancelAnnounce()
		cancelEvents()
	}, nil
}

// Enable starts counter emission on the named source at the given interval.
func (h *Hub) Enable(name string, settings domain.SourceSettings, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("eventpipe: interval must be positive, got %v", interval)
	}

	h.mu.Lock()
	st, ok := h.sources[name]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("eventpipe: enable %q: %w", name, domain.ErrUnknownSource)
	}
	if st.stop != nil {
		h.mu.Unlock()
		return fmt.Errorf("eventpipe: enable %q: %w", name, domain.ErrSourceEnabled)
	}
	hook := st.src.OnEnable
	h.mu.Unlock()

	// The hook runs outside the lock: it is foreign code and may panic.
	if hook != nil {
		if err := hook(settings); err != nil {
			return fmt.Errorf("eventpipe: enable %q: %w", name, err)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("eventpipe: hub closed")
	}
	if st.stop != nil {
		return fmt.Errorf("eventpipe: enable %q: %w", name, domain.ErrSourceEnabled)
	}
	st.stop = make(chan struct{})
	h.wg.Add(1)
	go h.run(name, st.src.Emit, st.stop, interval)
	return nil
}

func (h *Hub) run(name string, emit EmitFunc, stop <-chan struct{}, interval time.Duration) {
	defer h.wg.Done()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if emit == nil {
				continue
			}
			items := emit()
			if len(items) == 0 {
				continue
			}
			h.events.Publish(context.Background(), domain.Event{
				Source:  name,
				Kind:    domain.KindCounters,
				Payload: items,
			})
		}
	}
}

// Close halts emission on every enabled source and waits for the emitter
// goroutines to exit. Subscribers stay attached; no further events arrive.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for _, st := range h.sources {
		if st.stop != nil {
			close(st.stop)
			st.stop = nil
		}
	}
	h.mu.Unlock()
	h.wg.Wait()
}
