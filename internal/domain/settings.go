package domain

// Level is the minimum verbosity a source is asked to emit at.
type Level int

// Levels mirror the instrumentation system's verbosity scale, most severe first.
const (
	LevelCritical Level = iota + 1
	LevelError
	LevelWarning
	LevelInfo
	LevelVerbose
)

// SourceSettings carries the per-source options applied when a source is enabled.
type SourceSettings struct {
	MinLevel Level
	Keywords []string
}

// DefaultSettings enables everything: most verbose level, no keyword filter.
func DefaultSettings() SourceSettings {
	return SourceSettings{MinLevel: LevelVerbose}
}
