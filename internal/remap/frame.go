package remap

import "math"

// AxisValue is one shaped axis sample as forwarded to the output
// device and to monitoring clients.
type AxisValue struct {
	Name   string  `json:"name"`
	Target string  `json:"target"`
	Raw    float64 `json:"raw"`
	Value  float64 `json:"value"`
}

// Frame is the complete remapper state at one polling tick.
type Frame struct {
	Connected bool        `json:"connected"`
	Device    string      `json:"device"`
	Axes      []AxisValue `json:"axes"`
}

// DeltaChanges carries only the fields that changed between frames.
type DeltaChanges struct {
	Connected *bool       `json:"connected,omitempty"`
	Device    *string     `json:"device,omitempty"`
	Axes      []AxisValue `json:"axes,omitempty"`
}

func (d *DeltaChanges) IsEmpty() bool {
	return d.Connected == nil && d.Device == nil && len(d.Axes) == 0
}

// Analog values jitter below this threshold; treat them as unchanged.
const analogThreshold = 0.001

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < analogThreshold
}

// ComputeDelta compares two frames and returns the changed fields.
// Axes are matched by position; the reader always emits them in
// profile order.
func ComputeDelta(old, new_ Frame) *DeltaChanges {
	d := &DeltaChanges{}

	if old.Connected != new_.Connected {
		d.Connected = &new_.Connected
	}
	if old.Device != new_.Device {
		d.Device = &new_.Device
	}

	for i, ax := range new_.Axes {
		if i >= len(old.Axes) ||
			old.Axes[i].Name != ax.Name ||
			!floatEqual(old.Axes[i].Raw, ax.Raw) ||
			!floatEqual(old.Axes[i].Value, ax.Value) {
			d.Axes = append(d.Axes, ax)
		}
	}
	return d
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1 {
		v = -1
	}
	return v
}
