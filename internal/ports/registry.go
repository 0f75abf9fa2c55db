package ports

// Counter accumulates deltas into a running total.
type Counter interface {
	Add(v float64)
}

// Gauge holds the most recently observed value.
type Gauge interface {
	Set(v float64)
}

// SeriesRegistry resolves label tuples to live series instances.
// Resolution is create-if-absent, fetch-if-present, and must be safe for
// concurrent use; it is the only serialization point on the publish path.
// Label order (source, name, display name) is fixed and significant.
type SeriesRegistry interface {
	Counter(source, name, displayName string) Counter
	Gauge(source, name, displayName string) Gauge
}
