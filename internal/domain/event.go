// Package domain defines the telemetry event model shared by the bridge and its adapters.
package domain

// KindCounters is the event kind tag carried by structured counter payloads.
// Events with any other kind are not counter telemetry and are ignored.
const KindCounters = "EventCounters"

// Payload field names used by counter items.
const (
	FieldName        = "Name"
	FieldDisplayName = "DisplayName"
	FieldIncrement   = "Increment"
	FieldMean        = "Mean"
)

// Event is a single raw telemetry record emitted by an enabled source.
// Payload items are loosely shaped; DecodeSample decides what is usable.
type Event struct {
	Source  string
	Kind    string
	Payload []any
}

// SampleKind tells how a decoded counter value must be republished.
type SampleKind int

const (
	// SampleIncrement is a delta since the last emission; accumulated by the registry.
	SampleIncrement SampleKind = iota
	// SampleMean is a point-in-time aggregate; overwrites the previous value.
	SampleMean
)

// Sample is a fully decoded counter payload item.
type Sample struct {
	Name        string
	DisplayName string
	Kind        SampleKind
	Value       float64
}

// DecodeSample probes one payload item and returns its decoded form.
// Items that are not field mappings, lack a string Name, or carry no float64
// Increment/Mean value are rejected. Increment takes precedence over Mean.
func DecodeSample(item any) (Sample, bool) {
	fields, ok := item.(map[string]any)
	if !ok {
		return Sample{}, false
	}

	name, ok := fields[FieldName].(string)
	if !ok {
		return Sample{}, false
	}

	display, _ := fields[FieldDisplayName].(string)

	if raw, present := fields[FieldIncrement]; present {
		v, ok := raw.(float64)
		if !ok {
			return Sample{}, false
		}
		return Sample{Name: name, DisplayName: display, Kind: SampleIncrement, Value: v}, true
	}
	if raw, present := fields[FieldMean]; present {
		v, ok := raw.(float64)
		if !ok {
			return Sample{}, false
		}
		return Sample{Name: name, DisplayName: display, Kind: SampleMean, Value: v}, true
	}
	return Sample{}, false
}
