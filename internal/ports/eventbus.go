package ports

import (
	"time"

	"github.com/vshulcz/Countra/internal/domain"
)

// TelemetryListener receives callbacks from the instrumentation system.
// Both callbacks run on the system's own dispatch goroutines and may be
// invoked concurrently. SourceCreated can fire while Subscribe is still in
// progress: the system replays sources it already knows about before the
// subscriber holds its cancel handle.
type TelemetryListener interface {
	SourceCreated(name string)
	EventWritten(evt domain.Event)
}

// EventBus is the instrumentation system the bridge listens to.
type EventBus interface {
	// Subscribe registers the listener and returns a function that detaches
	// it. Already-known sources are announced synchronously before Subscribe
	// returns.
	Subscribe(l TelemetryListener) (cancel func(), err error)

	// Enable starts structured counter emission on the named source at the
	// given interval. The underlying API occasionally fails or panics;
	// callers must contain that.
	Enable(source string, settings domain.SourceSettings, interval time.Duration) error
}
