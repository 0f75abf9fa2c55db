package domain

import "errors"

var (
	// ErrUnknownSource is returned when enabling a source the instrumentation system never announced.
	ErrUnknownSource = errors.New("unknown source")
	// ErrSourceEnabled indicates the source already has counter emission running.
	ErrSourceEnabled = errors.New("source already enabled")
)
