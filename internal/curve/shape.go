package curve

import "math"

// ShapeAt maps a normalized input magnitude n in [0,1] to the shaped
// output magnitude in [0,1] using the active shape. Pure; the gate
// stage in Evaluate guarantees n is already in range.
func (p Parameters) ShapeAt(n float64) float64 {
	switch p.Shape {
	case SCurve:
		return sCurve(n, p.Curvature)
	case Exponential:
		return math.Pow(n, 1+2*p.Curvature)
	case FreeForm:
		return interpolate(p.Points, n)
	default:
		return n
	}
}

// sCurve blends the identity with smoothstep. Curvature 0 is linear,
// curvature 1 gives the steepest midpoint slope. Strictly increasing
// on [0,1] with s(0)=0, s(0.5)=0.5, s(1)=1 for every curvature.
func sCurve(n, curvature float64) float64 {
	smooth := n * n * (3 - 2*n)
	return (1-curvature)*n + curvature*smooth
}

// interpolate evaluates the piecewise-linear curve through points.
// The control-point invariants make the containing segment unique;
// n exactly on a point returns that point's y with no averaging.
func interpolate(points []Point, n float64) float64 {
	if n <= points[0].X {
		return points[0].Y
	}
	for i := 1; i < len(points); i++ {
		b := points[i]
		if n > b.X {
			continue
		}
		if n == b.X {
			return b.Y
		}
		a := points[i-1]
		t := (n - a.X) / (b.X - a.X)
		return a.Y + t*(b.Y-a.Y)
	}
	return points[len(points)-1].Y
}
