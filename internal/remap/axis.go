// Package remap ties raw joystick axes to shaped output channels: a
// Rig of axes, each pairing the live curve snapshot consumed by the
// polling loop with the editing session driven by the UI, plus the
// SDL reader that evaluates the rig against hardware.
package remap

import (
	"fmt"
	"sync"

	"github.com/soar/axisremap/internal/curve"
)

// Axis is one raw-axis-to-output binding with its response curve.
type Axis struct {
	Name   string // profile key, e.g. "pitch"
	Index  int32  // raw SDL axis index
	Target string // output channel name
	Invert bool

	pub *curve.Publisher

	// The session is single-actor by contract; edits arriving from
	// multiple websocket clients serialize on this mutex.
	mu      sync.Mutex
	session *curve.Session
}

// NewAxis creates a binding whose curve starts from params.
func NewAxis(name string, index int32, target string, invert bool, params curve.Parameters) (*Axis, error) {
	pub := curve.NewPublisher()
	if err := pub.Publish(params); err != nil {
		return nil, fmt.Errorf("axis %s: %w", name, err)
	}
	return &Axis{
		Name:    name,
		Index:   index,
		Target:  target,
		Invert:  invert,
		pub:     pub,
		session: curve.NewSession(pub),
	}, nil
}

// Evaluate shapes a raw sample through the published curve. Called
// from the polling loop; safe concurrently with edits.
func (a *Axis) Evaluate(raw float64) float64 {
	if a.Invert {
		raw = -raw
	}
	return a.pub.Evaluate(raw)
}

// Curve returns the current working-copy projection for rendering.
func (a *Axis) Curve() curve.Parameters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Params()
}

// EditOp is one editor command decoded from the websocket layer.
type EditOp struct {
	Op    string  `json:"op"`
	Shape string  `json:"shape,omitempty"`
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
}

// ApplyEdit runs one editor operation against the axis curve and
// returns the updated projection. Rejected operations leave the curve
// unchanged and report curve.ErrInvalidOperation.
func (a *Axis) ApplyEdit(op EditOp) (curve.Parameters, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	switch op.Op {
	case "select_shape":
		var shape curve.Shape
		if shape, err = curve.ParseShape(op.Shape); err == nil {
			err = a.session.SelectShape(shape)
		}
	case "set_curvature":
		a.session.SetCurvature(op.Value)
	case "set_deadzone":
		a.session.SetDeadzone(op.Value)
	case "set_saturation":
		a.session.SetSaturation(op.Value)
	case "move_point":
		err = a.session.MovePoint(op.Index, op.X, op.Y)
	case "insert_point":
		_, err = a.session.InsertPoint(op.X, op.Y)
	case "remove_point":
		err = a.session.RemovePoint(op.Index)
	case "begin_point_drag":
		err = a.session.BeginPointDrag(op.Index)
	case "begin_deadzone_drag":
		a.session.BeginDeadzoneDrag()
	case "begin_saturation_drag":
		a.session.BeginSaturationDrag()
	case "drag":
		err = a.session.DragTo(op.X, op.Y)
	case "end_drag":
		a.session.EndDrag()
	default:
		err = fmt.Errorf("unknown edit op %q", op.Op)
	}
	if err != nil {
		return curve.Parameters{}, err
	}
	return a.session.Params(), nil
}

// Rig is the full set of axis bindings for the active profile.
type Rig struct {
	axes   []*Axis
	byName map[string]*Axis
}

// NewRig assembles a rig, rejecting duplicate axis names.
func NewRig(axes ...*Axis) (*Rig, error) {
	r := &Rig{axes: axes, byName: make(map[string]*Axis, len(axes))}
	for _, a := range axes {
		if _, dup := r.byName[a.Name]; dup {
			return nil, fmt.Errorf("duplicate axis %q", a.Name)
		}
		r.byName[a.Name] = a
	}
	return r, nil
}

// Axes returns the bindings in profile order.
func (r *Rig) Axes() []*Axis {
	return r.axes
}

// Axis looks up a binding by profile name.
func (r *Rig) Axis(name string) (*Axis, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// ApplyEdit dispatches an editor command to the named axis.
func (r *Rig) ApplyEdit(axisName string, op EditOp) (curve.Parameters, error) {
	a, ok := r.byName[axisName]
	if !ok {
		return curve.Parameters{}, fmt.Errorf("unknown axis %q", axisName)
	}
	return a.ApplyEdit(op)
}
