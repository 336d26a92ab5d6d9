package curve

import "math"

// Evaluate transforms a raw signed axis sample into the shaped signed
// output. Samples outside [-1,1] are clamped, magnitudes below the
// deadzone collapse to exactly 0, magnitudes at or above saturation
// pin to full scale, and the remaining band is renormalized before
// shaping. The sign of the input is always preserved.
func (p Parameters) Evaluate(raw float64) float64 {
	raw = clamp(raw, -1, 1)
	sign := 1.0
	if raw < 0 {
		sign = -1
	}
	m := math.Abs(raw)

	var n float64
	switch {
	case m < p.Deadzone:
		return 0
	case m >= p.Saturation:
		n = 1
	default:
		// saturation > deadzone is a structural invariant
		n = (m - p.Deadzone) / (p.Saturation - p.Deadzone)
	}
	return sign * p.ShapeAt(n)
}
