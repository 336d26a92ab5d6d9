package curve

import (
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"sort"
)

// ErrInvalidOperation reports a structural edit the session rejected.
// The working copy is left unchanged.
var ErrInvalidOperation = errors.New("invalid curve operation")

// DragState tracks which curve handle a pointer drag is attached to.
type DragState int

const (
	Idle DragState = iota
	DraggingPoint
	DraggingDeadzone
	DraggingSaturation
)

// presetSampleXs are the positions a parametric preset is sampled at
// when regenerating control points, so a later switch to free-form
// starts from a faithful approximation of the preset.
var presetSampleXs = [...]float64{0, 0.25, 0.5, 0.75, 1}

// Session is the interactive authoring state for one axis curve. It
// mutates a private working copy and publishes it after every
// operation; each operation clamps its inputs so the copy satisfies
// the structural invariants at all times, including mid-drag.
//
// A Session is driven by a single editor goroutine and is not safe
// for concurrent use. Concurrent evaluation goes through the
// Publisher, never through the session.
type Session struct {
	working   Parameters
	pub       *Publisher
	state     DragState
	dragIndex int
}

// NewSession starts editing from the publisher's current snapshot.
func NewSession(pub *Publisher) *Session {
	return &Session{working: pub.Snapshot().Clone(), pub: pub}
}

// Params returns a copy of the working curve for rendering.
func (s *Session) Params() Parameters {
	return s.working.Clone()
}

// State returns the current drag state.
func (s *Session) State() DragState {
	return s.state
}

// SelectShape switches to a preset shape. Parametric presets get a
// default curvature and the control points are resampled from the
// preset; selecting FreeForm keeps the existing points.
func (s *Session) SelectShape(kind Shape) error {
	if kind < Linear || kind > FreeForm {
		return fmt.Errorf("%w: unknown shape %d", ErrInvalidOperation, int(kind))
	}
	s.working.Shape = kind
	switch kind {
	case SCurve:
		s.working.Curvature = 0.5
	case Exponential:
		s.working.Curvature = 0.3
	case Linear:
		s.working.Curvature = 0
	case FreeForm:
		s.publish()
		return nil
	}
	s.resamplePoints()
	s.publish()
	return nil
}

// SetCurvature adjusts the parametric curvature, clamped to [0,1].
// The control points follow the new shape so they stay a faithful
// approximation of it.
func (s *Session) SetCurvature(v float64) {
	s.working.Curvature = clamp(v, 0, 1)
	if s.working.Shape == SCurve || s.working.Shape == Exponential {
		s.resamplePoints()
	}
	s.publish()
}

func (s *Session) resamplePoints() {
	pts := make([]Point, len(presetSampleXs))
	for i, x := range presetSampleXs {
		pts[i] = Point{X: x, Y: s.working.ShapeAt(x)}
	}
	s.working.Points = pts
}

// MovePoint drags a control point to a new position. Endpoint x
// positions are pinned to 0 and 1, interior points keep the minimum
// gap to both neighbours, y is clamped to [0,1], and any move makes
// the curve free-form.
func (s *Session) MovePoint(index int, x, y float64) error {
	pts := s.working.Points
	if index < 0 || index >= len(pts) {
		return fmt.Errorf("%w: no control point %d", ErrInvalidOperation, index)
	}
	switch index {
	case 0:
		x = 0
	case len(pts) - 1:
		x = 1
	default:
		x = clamp(x, pts[index-1].X+MinPointGap, pts[index+1].X-MinPointGap)
	}
	pts[index] = Point{X: x, Y: clamp(y, 0, 1)}
	s.working.Shape = FreeForm
	s.publish()
	return nil
}

// InsertPoint adds a control point, keeping the points ordered in x.
// The x position is snapped to keep the minimum gap to both
// neighbours; the insert fails only when the surrounding gap has no
// room for another point. Returns the index of the new point.
func (s *Session) InsertPoint(x, y float64) (int, error) {
	x = clamp(x, MinPointGap, 1-MinPointGap)
	pts := s.working.Points
	idx := sort.Search(len(pts), func(i int) bool { return pts[i].X > x })
	prev, next := pts[idx-1], pts[idx]
	if next.X-prev.X < 2*MinPointGap-eps {
		return 0, fmt.Errorf("%w: no room for a control point between x=%.3f and x=%.3f",
			ErrInvalidOperation, prev.X, next.X)
	}
	x = clamp(x, prev.X+MinPointGap, next.X-MinPointGap)
	s.working.Points = slices.Insert(pts, idx, Point{X: x, Y: clamp(y, 0, 1)})
	s.working.Shape = FreeForm
	s.publish()
	return idx, nil
}

// RemovePoint deletes an interior control point. Endpoints can never
// be removed, and the removal is rejected while only three points
// exist so at least one interior point always remains available.
func (s *Session) RemovePoint(index int) error {
	pts := s.working.Points
	if index <= 0 || index >= len(pts)-1 {
		return fmt.Errorf("%w: control point %d is an endpoint", ErrInvalidOperation, index)
	}
	if len(pts) <= 3 {
		return fmt.Errorf("%w: cannot remove the last interior control point", ErrInvalidOperation)
	}
	s.working.Points = slices.Delete(pts, index, index+1)
	s.working.Shape = FreeForm
	s.publish()
	return nil
}

// SetDeadzone clamps the deadzone so it stays in range and keeps the
// minimum separation below the current saturation.
func (s *Session) SetDeadzone(v float64) {
	hi := math.Min(MaxDeadzone, s.working.Saturation-MinGateSeparation)
	s.working.Deadzone = clamp(v, 0, hi)
	s.publish()
}

// SetSaturation clamps the saturation so it stays in range and keeps
// the minimum separation above the current deadzone.
func (s *Session) SetSaturation(v float64) {
	lo := math.Max(MinSaturation, s.working.Deadzone+MinGateSeparation)
	s.working.Saturation = clamp(v, lo, 1)
	s.publish()
}

// BeginPointDrag attaches the pointer to a control point.
func (s *Session) BeginPointDrag(index int) error {
	if index < 0 || index >= len(s.working.Points) {
		return fmt.Errorf("%w: no control point %d", ErrInvalidOperation, index)
	}
	s.state = DraggingPoint
	s.dragIndex = index
	return nil
}

// BeginDeadzoneDrag attaches the pointer to the deadzone handle.
func (s *Session) BeginDeadzoneDrag() {
	s.state = DraggingDeadzone
}

// BeginSaturationDrag attaches the pointer to the saturation handle.
func (s *Session) BeginSaturationDrag() {
	s.state = DraggingSaturation
}

// DragTo applies the active drag at a curve-space position. Deadzone
// and saturation drags use only the x coordinate.
func (s *Session) DragTo(x, y float64) error {
	switch s.state {
	case DraggingPoint:
		return s.MovePoint(s.dragIndex, x, y)
	case DraggingDeadzone:
		s.SetDeadzone(x)
		return nil
	case DraggingSaturation:
		s.SetSaturation(x)
		return nil
	default:
		return fmt.Errorf("%w: no drag in progress", ErrInvalidOperation)
	}
}

// EndDrag returns the session to Idle. Every drag step already
// published a valid snapshot, so there is nothing left to commit.
func (s *Session) EndDrag() {
	s.state = Idle
	s.dragIndex = 0
}

func (s *Session) publish() {
	if err := s.pub.Publish(s.working); err != nil {
		// Unreachable while the operations above hold their clamps;
		// the previous snapshot stays live for the polling loop.
		log.Printf("curve: %v", err)
	}
}
