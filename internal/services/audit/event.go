// Package audit records source lifecycle transitions for diagnostic purposes.
// The journal is advisory: a lost or failed audit write never affects the
// bridge itself.
package audit

// Action names a lifecycle transition of a telemetry source.
type Action string

const (
	// ActionDiscovered is recorded when the instrumentation system announces a source.
	ActionDiscovered Action = "discovered"
	// ActionEnabled is recorded when counter emission starts on a source.
	ActionEnabled Action = "enabled"
	// ActionEnableFailed is recorded when enabling a source fails; Detail carries the reason.
	ActionEnableFailed Action = "enable_failed"
)

// Event describes one lifecycle transition of a named source.
type Event struct {
	Timestamp int64  `json:"ts"`
	Source    string `json:"source"`
	Action    Action `json:"action"`
	Detail    string `json:"detail,omitempty"`
}
