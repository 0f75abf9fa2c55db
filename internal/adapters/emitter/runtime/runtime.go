// Package runtime exposes Go runtime stats and host CPU/RAM usage as counter
// event sources on an eventpipe hub.
package runtime

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/vshulcz/Countra/internal/adapters/eventpipe"
	"github.com/vshulcz/Countra/internal/domain"
)

// Source names announced to the hub.
const (
	SourceRuntime = "go.runtime"
	SourceHost    = "host.system"
)

// Emitter samples process and host statistics on demand. Aggregates are
// reported as means; monotonically growing MemStats fields are reported as
// increments against the previous sample.
type Emitter struct {
	mu     sync.Mutex
	seeded bool
	prev   struct {
		mallocs uint64
		frees   uint64
		pauseNs uint64
		numGC   uint32
	}
}

// New returns an Emitter with no baseline; the first runtime sample seeds the
// deltas and emits means only.
func New() *Emitter {
	return &Emitter{}
}

// Register announces both sources on the hub.
func (e *Emitter) Register(hub *eventpipe.Hub) error {
	if err := hub.RegisterSource(SourceRuntime, eventpipe.Source{Emit: e.emitRuntime}); err != nil {
		return err
	}
	return hub.RegisterSource(SourceHost, eventpipe.Source{Emit: e.emitHost})
}

func mean(name, display string, v float64) map[string]any {
	return map[string]any{
		domain.FieldName:        name,
		domain.FieldDisplayName: display,
		domain.FieldMean:        v,
	}
}

func increment(name, display string, v float64) map[string]any {
	return map[string]any{
		domain.FieldName:        name,
		domain.FieldDisplayName: display,
		domain.FieldIncrement:   v,
	}
}

func (e *Emitter) emitRuntime() []any {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	items := []any{
		mean("heap-alloc", "Heap Alloc (bytes)", float64(ms.HeapAlloc)),
		mean("heap-sys", "Heap Sys (bytes)", float64(ms.HeapSys)),
		mean("heap-objects", "Heap Objects", float64(ms.HeapObjects)),
		mean("stack-inuse", "Stack In Use (bytes)", float64(ms.StackInuse)),
		mean("gc-cpu-fraction", "GC CPU Fraction", ms.GCCPUFraction),
		mean("next-gc", "Next GC Target (bytes)", float64(ms.NextGC)),
		mean("goroutines", "Goroutines", float64(runtime.NumGoroutine())),
	}

	e.mu.Lock()
	if e.seeded {
		items = append(items,
			increment("mallocs", "Mallocs", float64(ms.Mallocs-e.prev.mallocs)),
			increment("frees", "Frees", float64(ms.Frees-e.prev.frees)),
			increment("gc-count", "GC Runs", float64(ms.NumGC-e.prev.numGC)),
			increment("gc-pause-ns", "GC Pause (ns)", float64(ms.PauseTotalNs-e.prev.pauseNs)),
		)
	}
	e.prev.mallocs = ms.Mallocs
	e.prev.frees = ms.Frees
	e.prev.pauseNs = ms.PauseTotalNs
	e.prev.numGC = ms.NumGC
	e.seeded = true
	e.mu.Unlock()

	return items
}

func (e *Emitter) emitHost() []any {
	var items []any
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		items = append(items,
			mean("mem-total", "Total Memory (bytes)", float64(vm.Total)),
			mean("mem-free", "Free Memory (bytes)", float64(vm.Free)),
			mean("mem-used-percent", "Memory Used (%)", vm.UsedPercent),
		)
	}
	if pct, err := cpu.Percent(0, true); err == nil {
		for i, p := range pct {
			items = append(items, mean(
				fmt.Sprintf("cpu-utilization-%d", i+1),
				fmt.Sprintf("CPU %d (%%)", i+1),
				p,
			))
		}
	}
	return items
}
