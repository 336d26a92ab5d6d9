package remap

import "log"

// Output receives shaped axis values once per polling tick. The real
// implementation binds a virtual output device; that wiring lives
// outside this package.
type Output interface {
	SetAxis(target string, value float64)
}

// Discard ignores all values, for running without an output device.
type Discard struct{}

func (Discard) SetAxis(string, float64) {}

// LogOutput prints each update, for debugging a profile without a
// virtual device attached. Very noisy at polling rate.
type LogOutput struct{}

func (LogOutput) SetAxis(target string, value float64) {
	log.Printf("[OUT] %s = %+.4f", target, value)
}
