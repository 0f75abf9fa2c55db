package runtime

import (
	"testing"

	"github.com/vshulcz/Countra/internal/adapters/eventpipe"
	"github.com/vshulcz/Countra/internal/domain"
)

func decodeAll(t *testing.T, items []any) []domain.Sample {
	t.Helper()
	var out []domain.Sample
	for _, item := range items {
		s, ok := domain.DecodeSample(item)
		if !ok {
			t.Fatalf("emitter produced undecodable item: %+v", item)
		}
		out = append(out, s)
	}
	return out
}

func TestEmitRuntime_FirstSampleHasNoIncrements(t *testing.T) {
	e := New()
	samples := decodeAll(t, e.emitRuntime())
	if len(samples) == 0 {
		t.Fatal("expected runtime samples")
	}
	for _, s := range samples {
		if s.Kind == domain.SampleIncrement {
			t.Fatalf("first sample must not emit deltas without a baseline: %+v", s)
		}
	}
}

func TestEmitRuntime_SecondSampleEmitsIncrements(t *testing.T) {
	e := New()
	e.emitRuntime()

	// Force some allocations between samples.
	sink := make([][]byte, 0, 64)
	for i := 0; i < 64; i++ {
		sink = append(sink, make([]byte, 1024))
	}
	_ = sink

	samples := decodeAll(t, e.emitRuntime())
	byName := map[string]domain.Sample{}
	for _, s := range samples {
		byName[s.Name] = s
	}

	inc, ok := byName["mallocs"]
	if !ok || inc.Kind != domain.SampleIncrement {
		t.Fatalf("expected mallocs increment, got %+v", byName)
	}
	if inc.Value < 0 {
		t.Fatalf("malloc delta must be non-negative, got %v", inc.Value)
	}
	if g, ok := byName["goroutines"]; !ok || g.Kind != domain.SampleMean || g.Value < 1 {
		t.Fatalf("expected goroutines mean >= 1, got %+v", g)
	}
}

func TestRegister_AnnouncesBothSources(t *testing.T) {
	hub := eventpipe.NewHub()
	defer hub.Close()

	if err := New().Register(hub); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := New().Register(hub); err == nil {
		t.Fatal("second registration must collide on source names")
	}
}
