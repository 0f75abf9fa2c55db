// Package bridge subscribes to an instrumentation event bus and republishes
// structured counter payloads into a metrics series registry.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vshulcz/Countra/internal/domain"
	"github.com/vshulcz/Countra/internal/ports"
	"github.com/vshulcz/Countra/internal/services/audit"
)

// EmissionInterval is the counter aggregation interval requested from every
// enabled source.
const EmissionInterval = time.Second

// Config carries the collaborators and policies for one listening session.
type Config struct {
	// Bus is the instrumentation system to subscribe to. Required.
	Bus ports.EventBus
	// Registry receives the republished series. Required.
	Registry ports.SeriesRegistry
	// Include decides whether a discovered source gets enabled.
	// Nil accepts every source.
	Include func(source string) bool
	// Settings supplies per-source verbosity and keyword filtering.
	// Nil falls back to domain.DefaultSettings.
	Settings func(source string) domain.SourceSettings
	// Logger receives enable-failure warnings. Nil discards them.
	Logger *zap.Logger
	// Audit, when set, receives source lifecycle events.
	Audit audit.Publisher
}

// Bridge is one live listening session. It owns the subscription and the
// translator; stopping it halts the subscription only and never retracts
// already-published series values.
type Bridge struct {
	bus      ports.EventBus
	tr       *Translator
	include  func(string) bool
	settings func(string) domain.SourceSettings
	log      *zap.Logger
	audit    audit.Publisher

	// mu guards the pre-wiring discovery buffer and session bookkeeping.
	// Discovery callbacks can fire before Start finishes, so appends to
	// pending must be exclusive with the replay pass that drains it.
	mu          sync.Mutex
	ready       bool
	pending     []string
	enabled     []string
	unsubscribe func()

	nowUnix func() int64
}

// Start begins listening on cfg.Bus. Sources announced while the
// subscription is still being wired are buffered and replayed exactly once,
// in arrival order, before Start returns.
func Start(cfg Config) (*Bridge, error) {
	if cfg.Bus == nil {
		return nil, errors.New("bridge: nil event bus")
	}
	if cfg.Registry == nil {
		return nil, errors.New("bridge: nil series registry")
	}
	if cfg.Include == nil {
		cfg.Include = func(string) bool { return true }
	}
	if cfg.Settings == nil {
		cfg.Settings = func(string) domain.SourceSettings { return domain.DefaultSettings() }
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	b := &Bridge{
		bus:      cfg.Bus,
		tr:       NewTranslator(cfg.Registry),
		include:  cfg.Include,
		settings: cfg.Settings,
		log:      cfg.Logger,
		audit:    cfg.Audit,
		nowUnix:  func() int64 { return time.Now().Unix() },
	}

	// Subscribe may announce pre-existing sources synchronously, before we
	// hold the cancel handle; those land in the pending buffer.
	unsubscribe, err := cfg.Bus.Subscribe(b)
	if err != nil {
		return nil, fmt.Errorf("bridge: subscribe: %w", err)
	}

	b.mu.Lock()
	b.unsubscribe = unsubscribe
	b.ready = true
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, name := range pending {
		b.evaluate(name)
	}
	return b, nil
}

// SourceCreated is the discovery callback invoked by the bus, possibly
// concurrently and possibly before Start has finished wiring.
func (b *Bridge) SourceCreated(name string) {
	b.mu.Lock()
	if !b.ready {
		b.pending = append(b.pending, name)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	b.evaluate(name)
}

// EventWritten is the emission callback invoked by the bus for every event
// from an enabled source. The raw event goes to the translator unmodified.
func (b *Bridge) EventWritten(evt domain.Event) {
	b.tr.Handle(evt)
}

// evaluate runs the inclusion predicate and, when accepted, enables counter
// emission on the source. Enable failures are contained: logged, audited,
// never propagated, so one misbehaving source cannot take down the session.
func (b *Bridge) evaluate(name string) {
	b.journal(audit.ActionDiscovered, name, "")
	if !b.include(name) {
		return
	}
	if err := b.enable(name, b.settings(name)); err != nil {
		b.log.Warn("failed to enable source",
			zap.String("source", name),
			zap.Error(err),
		)
		b.journal(audit.ActionEnableFailed, name, err.Error())
		return
	}
	b.mu.Lock()
	b.enabled = append(b.enabled, name)
	b.mu.Unlock()
	b.journal(audit.ActionEnabled, name, "")
}

// enable wraps the bus call, converting panics from the instrumentation API
// into ordinary errors.
func (b *Bridge) enable(name string, s domain.SourceSettings) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enable panicked: %v", r)
		}
	}()
	return b.bus.Enable(name, s, EmissionInterval)
}

func (b *Bridge) journal(action audit.Action, source, detail string) {
	if b.audit == nil {
		return
	}
	b.audit.Publish(context.Background(), audit.Event{
		Timestamp: b.nowUnix(),
		Source:    source,
		Action:    action,
		Detail:    detail,
	})
}

// Enabled reports the sources this session has successfully enabled, in
// enable order.
func (b *Bridge) Enabled() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.enabled...)
}

// Stop detaches from the bus. Callbacks already in flight on other
// goroutines may still complete; published series values stay as they are.
func (b *Bridge) Stop() {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
