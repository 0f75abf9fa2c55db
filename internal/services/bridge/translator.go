package bridge

import (
	"github.com/vshulcz/Countra/internal/domain"
	"github.com/vshulcz/Countra/internal/ports"
)

// Translator republishes raw counter events into the series registry.
// It holds no mutable state of its own; concurrent Handle calls are safe
// because the registry's label resolution is the serialization point.
type Translator struct {
	registry ports.SeriesRegistry
}

// NewTranslator returns a Translator publishing into registry.
func NewTranslator(registry ports.SeriesRegistry) *Translator {
	return &Translator{registry: registry}
}

// Handle classifies every payload item of evt and publishes the usable ones.
// Malformed events and items are dropped silently; telemetry noise is
// expected and non-actionable. Items are independent: one bad item never
// stops its siblings.
func (t *Translator) Handle(evt domain.Event) {
	if evt.Kind != domain.KindCounters {
		return
	}
	if len(evt.Payload) == 0 {
		return
	}
	for _, item := range evt.Payload {
		s, ok := domain.DecodeSample(item)
		if !ok {
			continue
		}
		switch s.Kind {
		case domain.SampleIncrement:
			t.registry.Counter(evt.Source, s.Name, s.DisplayName).Add(s.Value)
		case domain.SampleMean:
			t.registry.Gauge(evt.Source, s.Name, s.DisplayName).Set(s.Value)
		}
	}
}
