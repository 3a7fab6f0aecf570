package hair

import "math"

// ShapeParams configure strand cross-section geometry for one draw. They are
// immutable for the duration of a draw invocation.
type ShapeParams struct {
	// ThicknessSubdivisions is the number of output vertices per centerline
	// point: 1 draws single-pixel lines, 2 a flat ribbon, 3 and up an
	// approximated tube.
	ThicknessSubdivisions int

	RadiusRoot float32
	RadiusTip  float32

	// RadiusShape controls the concavity of the taper curve, in (-1,1).
	// 0 is a linear taper.
	RadiusShape float32

	// CloseTip forces zero thickness over the last 1% of the strand so tips
	// do not end in a visible flat cut.
	CloseTip bool
}

// DefaultShapeParams returns ribbon geometry with a gentle convex taper.
func DefaultShapeParams() ShapeParams {
	return ShapeParams{
		ThicknessSubdivisions: 2,
		RadiusRoot:            0.01,
		RadiusTip:             0.0,
		RadiusShape:           0.5,
		CloseTip:              true,
	}
}

// ShapeRadius maps normalized strand time to a thickness via the power taper
// curve. It returns RadiusRoot at time 0 and RadiusTip at time 1.
func ShapeRadius(p ShapeParams, time float32) float32 {
	radius := 1 - time
	if p.RadiusShape < 0 {
		radius = float32(math.Pow(float64(radius), float64(1+p.RadiusShape)))
	} else {
		radius = float32(math.Pow(float64(radius), 1/float64(1-p.RadiusShape)))
	}
	if p.CloseTip && time > 0.99 {
		return 0
	}
	return radius*(p.RadiusRoot-p.RadiusTip) + p.RadiusTip
}
