// Package curve implements the axis response-curve engine: the
// parameter model, the shaping math, the interactive editing session
// and the snapshot publisher that lets the polling loop evaluate a
// curve while it is being edited.
package curve

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Shape selects how the normalized input magnitude is mapped to the
// output magnitude.
type Shape int

const (
	Linear Shape = iota
	SCurve
	Exponential
	FreeForm
)

var shapeNames = [...]string{
	Linear:      "linear",
	SCurve:      "scurve",
	Exponential: "exponential",
	FreeForm:    "freeform",
}

func (s Shape) String() string {
	if s < Linear || s > FreeForm {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShape converts a shape name as stored in profiles and editor
// messages back to its Shape value.
func ParseShape(name string) (Shape, error) {
	for s, n := range shapeNames {
		if n == name {
			return Shape(s), nil
		}
	}
	return Linear, fmt.Errorf("unknown curve shape %q", name)
}

func (s Shape) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Shape) UnmarshalJSON(p []byte) error {
	var name string
	if err := json.Unmarshal(p, &name); err != nil {
		return err
	}
	parsed, err := ParseShape(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Point is a free-form control point in curve space, both coordinates
// in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

const (
	// MinGateSeparation is the smallest allowed distance between
	// deadzone and saturation, so the active range never degenerates.
	MinGateSeparation = 0.1

	// MinPointGap is the smallest allowed x distance between adjacent
	// control points, preventing vertical segments.
	MinPointGap = 0.02

	// MaxDeadzone and MinSaturation keep the gate bounds inside their
	// valid ranges (deadzone below 0.5, saturation above 0.5) with the
	// separation still satisfiable at either extreme.
	MaxDeadzone   = 0.45
	MinSaturation = 0.55
)

// validation needs a little slack for accumulated float error in
// values the session clamped to an exact bound.
const eps = 1e-9

// Parameters describes one axis response curve. A value handed to
// Publisher.Publish is treated as immutable from then on; the editing
// session mutates only its own working copy.
type Parameters struct {
	Shape      Shape   `json:"shape"`
	Curvature  float64 `json:"curvature"`
	Deadzone   float64 `json:"deadzone"`
	Saturation float64 `json:"saturation"`
	Points     []Point `json:"points"`
}

// Default returns the curve a freshly created mapping starts with:
// identity response, no deadzone, full saturation, endpoint-only
// control points.
func Default() Parameters {
	return Parameters{
		Shape:      Linear,
		Saturation: 1,
		Points:     []Point{{0, 0}, {1, 1}},
	}
}

// Clone returns a copy that shares no state with p.
func (p Parameters) Clone() Parameters {
	p.Points = slices.Clone(p.Points)
	return p
}

// Validate reports the first violated structural invariant, or nil.
// Every snapshot produced by a Session satisfies these by
// construction; Publish re-checks them defensively.
func (p Parameters) Validate() error {
	if p.Shape < Linear || p.Shape > FreeForm {
		return fmt.Errorf("invalid shape %d", int(p.Shape))
	}
	if p.Curvature < 0 || p.Curvature > 1 {
		return fmt.Errorf("curvature %v outside [0,1]", p.Curvature)
	}
	if p.Deadzone < 0 || p.Deadzone >= 0.5 {
		return fmt.Errorf("deadzone %v outside [0,0.5)", p.Deadzone)
	}
	if p.Saturation <= 0.5 || p.Saturation > 1 {
		return fmt.Errorf("saturation %v outside (0.5,1]", p.Saturation)
	}
	if p.Deadzone+MinGateSeparation > p.Saturation+eps {
		return fmt.Errorf("deadzone %v too close to saturation %v", p.Deadzone, p.Saturation)
	}
	if len(p.Points) < 2 {
		return fmt.Errorf("%d control points, need at least 2", len(p.Points))
	}
	if p.Points[0].X != 0 {
		return fmt.Errorf("first control point at x=%v, must be 0", p.Points[0].X)
	}
	if last := p.Points[len(p.Points)-1]; last.X != 1 {
		return fmt.Errorf("last control point at x=%v, must be 1", last.X)
	}
	for i, pt := range p.Points {
		if pt.Y < 0 || pt.Y > 1 {
			return fmt.Errorf("control point %d y=%v outside [0,1]", i, pt.Y)
		}
		if i > 0 && pt.X-p.Points[i-1].X < MinPointGap-eps {
			return fmt.Errorf("control points %d and %d closer than %v in x", i-1, i, MinPointGap)
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
