package curve

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newTestSession(t *testing.T) (*Session, *Publisher) {
	t.Helper()
	pub := NewPublisher()
	return NewSession(pub), pub
}

func TestSelectShapeResamplesPreset(t *testing.T) {
	for _, tt := range []struct {
		shape     Shape
		curvature float64
	}{
		{SCurve, 0.5},
		{Exponential, 0.3},
		{Linear, 0},
	} {
		t.Run(tt.shape.String(), func(t *testing.T) {
			s, _ := newTestSession(t)
			if err := s.SelectShape(tt.shape); err != nil {
				t.Fatalf("SelectShape: %v", err)
			}
			p := s.Params()
			if p.Shape != tt.shape {
				t.Errorf("shape = %v, want %v", p.Shape, tt.shape)
			}
			if p.Curvature != tt.curvature {
				t.Errorf("curvature = %v, want %v", p.Curvature, tt.curvature)
			}

			want := make([]Point, len(presetSampleXs))
			for i, x := range presetSampleXs {
				want[i] = Point{X: x, Y: p.ShapeAt(x)}
			}
			if diff := cmp.Diff(want, p.Points, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("resampled points mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectFreeFormKeepsPoints(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.SelectShape(SCurve); err != nil {
		t.Fatalf("SelectShape: %v", err)
	}
	before := s.Params().Points

	if err := s.SelectShape(FreeForm); err != nil {
		t.Fatalf("SelectShape: %v", err)
	}
	p := s.Params()
	if p.Shape != FreeForm {
		t.Errorf("shape = %v, want %v", p.Shape, FreeForm)
	}
	if diff := cmp.Diff(before, p.Points); diff != "" {
		t.Errorf("points changed on FreeForm switch (-want +got):\n%s", diff)
	}
}

func TestMovePointClamping(t *testing.T) {
	s, _ := newTestSession(t)
	// Build points at x = 0, 0.6, 1 with an interior point to drag.
	if _, err := s.InsertPoint(0.6, 0.5); err != nil {
		t.Fatalf("InsertPoint: %v", err)
	}
	if _, err := s.InsertPoint(0.3, 0.3); err != nil {
		t.Fatalf("InsertPoint: %v", err)
	}
	// Points now: (0,0) (0.3,0.3) (0.6,0.5) (1,1). Drag index 1 toward
	// its right neighbour at 0.6; it must stop one gap short.
	if err := s.MovePoint(1, 0.65, 0.3); err != nil {
		t.Fatalf("MovePoint: %v", err)
	}
	p := s.Params()
	if want := 0.6 - MinPointGap; math.Abs(p.Points[1].X-want) > 1e-12 {
		t.Errorf("moved x = %v, want %v", p.Points[1].X, want)
	}
	if p.Shape != FreeForm {
		t.Errorf("shape = %v, want %v", p.Shape, FreeForm)
	}
}

func TestMovePointPinsEndpoints(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.MovePoint(0, 0.4, 0.25); err != nil {
		t.Fatalf("MovePoint: %v", err)
	}
	if err := s.MovePoint(1, 0.4, 2); err != nil {
		t.Fatalf("MovePoint: %v", err)
	}
	p := s.Params()
	if p.Points[0].X != 0 {
		t.Errorf("first point x = %v, want 0", p.Points[0].X)
	}
	if p.Points[0].Y != 0.25 {
		t.Errorf("first point y = %v, want 0.25", p.Points[0].Y)
	}
	if p.Points[1].X != 1 {
		t.Errorf("last point x = %v, want 1", p.Points[1].X)
	}
	if p.Points[1].Y != 1 {
		t.Errorf("last point y = %v, want clamped to 1", p.Points[1].Y)
	}
}

func TestMovePointBadIndex(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.MovePoint(5, 0.5, 0.5); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("MovePoint(5) = %v, want ErrInvalidOperation", err)
	}
}

func TestInsertPointOrderingAndSnap(t *testing.T) {
	s, _ := newTestSession(t)
	idx, err := s.InsertPoint(0.5, 0.4)
	if err != nil {
		t.Fatalf("InsertPoint: %v", err)
	}
	if idx != 1 {
		t.Errorf("insert index = %d, want 1", idx)
	}

	// Inserting on top of the existing point must snap away from it.
	idx, err = s.InsertPoint(0.5, 0.6)
	if err != nil {
		t.Fatalf("InsertPoint: %v", err)
	}
	p := s.Params()
	if got, want := p.Points[idx].X, 0.5+MinPointGap; math.Abs(got-want) > 1e-12 {
		t.Errorf("snapped x = %v, want %v", got, want)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("params invalid after snapped insert: %v", err)
	}
}

func TestInsertPointNoRoom(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.InsertPoint(0.5, 0.5); err != nil {
		t.Fatalf("InsertPoint: %v", err)
	}
	if _, err := s.InsertPoint(0.52, 0.5); err != nil {
		t.Fatalf("InsertPoint: %v", err)
	}
	// The gap between 0.5 and 0.52 cannot fit another point.
	before := s.Params()
	if _, err := s.InsertPoint(0.51, 0.5); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("InsertPoint in full gap = %v, want ErrInvalidOperation", err)
	}
	if diff := cmp.Diff(before, s.Params()); diff != "" {
		t.Errorf("rejected insert changed state (-want +got):\n%s", diff)
	}
}

func TestRemovePointRules(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.InsertPoint(0.5, 0.4); err != nil {
		t.Fatalf("InsertPoint: %v", err)
	}
	// Three points: endpoints plus one interior.

	t.Run("EndpointRejected", func(t *testing.T) {
		if err := s.RemovePoint(0); !errors.Is(err, ErrInvalidOperation) {
			t.Errorf("RemovePoint(0) = %v, want ErrInvalidOperation", err)
		}
		if err := s.RemovePoint(2); !errors.Is(err, ErrInvalidOperation) {
			t.Errorf("RemovePoint(2) = %v, want ErrInvalidOperation", err)
		}
	})

	t.Run("LastInteriorRejected", func(t *testing.T) {
		before := s.Params()
		if err := s.RemovePoint(1); !errors.Is(err, ErrInvalidOperation) {
			t.Errorf("RemovePoint(1) with 3 points = %v, want ErrInvalidOperation", err)
		}
		if diff := cmp.Diff(before, s.Params()); diff != "" {
			t.Errorf("rejected remove changed state (-want +got):\n%s", diff)
		}
	})

	t.Run("InteriorRemovedWithFourPoints", func(t *testing.T) {
		if _, err := s.InsertPoint(0.7, 0.8); err != nil {
			t.Fatalf("InsertPoint: %v", err)
		}
		if err := s.RemovePoint(1); err != nil {
			t.Fatalf("RemovePoint: %v", err)
		}
		p := s.Params()
		if len(p.Points) != 3 {
			t.Errorf("point count = %d, want 3", len(p.Points))
		}
		if p.Shape != FreeForm {
			t.Errorf("shape = %v, want %v", p.Shape, FreeForm)
		}
	})
}

func TestGateClampInterplay(t *testing.T) {
	s, _ := newTestSession(t)

	s.SetDeadzone(0.3)
	s.SetSaturation(0.35) // must stop at the saturation floor
	p := s.Params()
	if want := math.Max(MinSaturation, 0.3+MinGateSeparation); p.Saturation != want {
		t.Errorf("saturation = %v, want %v", p.Saturation, want)
	}

	s.SetDeadzone(0.9) // capped by the deadzone ceiling and saturation
	p = s.Params()
	if want := math.Min(MaxDeadzone, p.Saturation-MinGateSeparation); p.Deadzone != want {
		t.Errorf("deadzone = %v, want %v", p.Deadzone, want)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("params invalid after gate clamps: %v", err)
	}

	s.SetSaturation(2)
	if p = s.Params(); p.Saturation != 1 {
		t.Errorf("saturation = %v, want 1", p.Saturation)
	}
	s.SetDeadzone(-1)
	if p = s.Params(); p.Deadzone != 0 {
		t.Errorf("deadzone = %v, want 0", p.Deadzone)
	}
}

func TestDragStateMachine(t *testing.T) {
	s, _ := newTestSession(t)

	if err := s.DragTo(0.5, 0.5); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("DragTo while Idle = %v, want ErrInvalidOperation", err)
	}

	if err := s.BeginPointDrag(1); err != nil {
		t.Fatalf("BeginPointDrag: %v", err)
	}
	if s.State() != DraggingPoint {
		t.Errorf("state = %v, want DraggingPoint", s.State())
	}
	if err := s.DragTo(0.4, 0.7); err != nil {
		t.Fatalf("DragTo: %v", err)
	}
	if got := s.Params().Points[1].Y; got != 0.7 {
		t.Errorf("dragged y = %v, want 0.7", got)
	}
	s.EndDrag()
	if s.State() != Idle {
		t.Errorf("state = %v, want Idle", s.State())
	}

	s.BeginDeadzoneDrag()
	if err := s.DragTo(0.2, 0); err != nil {
		t.Fatalf("DragTo: %v", err)
	}
	if got := s.Params().Deadzone; got != 0.2 {
		t.Errorf("deadzone = %v, want 0.2", got)
	}
	s.EndDrag()

	s.BeginSaturationDrag()
	if err := s.DragTo(0.8, 0); err != nil {
		t.Fatalf("DragTo: %v", err)
	}
	if got := s.Params().Saturation; got != 0.8 {
		t.Errorf("saturation = %v, want 0.8", got)
	}
	s.EndDrag()

	if err := s.BeginPointDrag(99); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("BeginPointDrag(99) = %v, want ErrInvalidOperation", err)
	}
}

// Every mutation must leave the working copy valid and published, not
// just the final state of an edit sequence.
func TestInvariantsHoldUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, pub := newTestSession(t)

	shapes := []Shape{Linear, SCurve, Exponential, FreeForm}
	for i := 0; i < 2000; i++ {
		switch rng.Intn(7) {
		case 0:
			_ = s.SelectShape(shapes[rng.Intn(len(shapes))])
		case 1:
			s.SetCurvature(rng.Float64()*2 - 0.5)
		case 2:
			s.SetDeadzone(rng.Float64())
		case 3:
			s.SetSaturation(rng.Float64())
		case 4:
			_, _ = s.InsertPoint(rng.Float64(), rng.Float64())
		case 5:
			p := s.Params()
			_ = s.MovePoint(rng.Intn(len(p.Points)), rng.Float64()*1.2-0.1, rng.Float64()*1.2-0.1)
		case 6:
			p := s.Params()
			_ = s.RemovePoint(rng.Intn(len(p.Points) + 1))
		}

		if err := s.Params().Validate(); err != nil {
			t.Fatalf("op %d left working copy invalid: %v", i, err)
		}
		if err := pub.Snapshot().Validate(); err != nil {
			t.Fatalf("op %d left published snapshot invalid: %v", i, err)
		}
	}
}

// Switching to a parametric preset then reading the generated control
// points must reproduce the preset at the sampled positions.
func TestPresetFreeFormRoundTrip(t *testing.T) {
	for _, shape := range []Shape{Linear, SCurve, Exponential} {
		s, _ := newTestSession(t)
		if err := s.SelectShape(shape); err != nil {
			t.Fatalf("SelectShape: %v", err)
		}
		parametric := s.Params()

		if err := s.SelectShape(FreeForm); err != nil {
			t.Fatalf("SelectShape: %v", err)
		}
		ff := s.Params()

		for _, x := range presetSampleXs {
			want := parametric.ShapeAt(x)
			got := ff.ShapeAt(x)
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("%v: freeform ShapeAt(%v) = %v, want %v", shape, x, got, want)
			}
		}
	}
}
