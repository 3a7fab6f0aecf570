package hair

// Subdivision stage: every invocation produces exactly one interpolated
// control point of a densified point buffer, as a pure function of the
// invocation index and the read-only buffers. Layout planning (the expanded
// records and index map) is done once by Subdivide in pipeline.go.

// catmullRomWeights returns the uniform Catmull-Rom basis weights at t.
// The blend reduces to the segment's first point at t=0 and its second point
// at t=1, so densifying never moves the original samples.
func catmullRomWeights(t float32) (w0, w1, w2, w3 float32) {
	t2 := t * t
	t3 := t2 * t
	w0 = 0.5 * (-t3 + 2*t2 - t)
	w1 = 0.5 * (3*t3 - 5*t2 + 2)
	w2 = 0.5 * (-3*t3 + 4*t2 + t)
	w3 = 0.5 * (t3 - t2)
	return
}

func catmullRom(p0, p1, p2, p3 ControlPoint, t float32) ControlPoint {
	w0, w1, w2, w3 := catmullRomWeights(t)
	return ControlPoint{
		Position: p0.Position.Mul(w0).
			Add(p1.Position.Mul(w1)).
			Add(p2.Position.Mul(w2)).
			Add(p3.Position.Mul(w3)),
		Time: p0.Time*w0 + p1.Time*w1 + p2.Time*w2 + p3.Time*w3,
	}
}

// mirrorPoint linearly extrapolates past a, away from b. Used to synthesize
// the missing neighbor at strand roots and tips.
func mirrorPoint(a, b ControlPoint) ControlPoint {
	return ControlPoint{
		Position: a.Position.Mul(2).Sub(b.Position),
		Time:     2*a.Time - b.Time,
	}
}

// SubdividePoint computes the expanded buffer's control point at vertexIndex.
// src supplies the sparse points and source-layout records; dst supplies the
// expanded layout (records and per-point index map, dst.Points is not read).
//
// Callers must uphold the strand contract: every record has a non-zero
// segment count and an in-range point span. Violations panic on the slice
// bounds check or produce NaN, they are not reported.
func SubdividePoint(src, dst StrandBuffers, vertexIndex int) ControlPoint {
	strand := dst.StrandAt(vertexIndex)
	dstOffset, dstSegments := dst.StrandData(strand)
	srcOffset, srcSegments := src.StrandData(strand)

	localTime := float32(vertexIndex-int(dstOffset)) / float32(dstSegments)

	ratio := localTime * float32(srcSegments)
	seg := int(ratio) // floor; localTime is never negative for in-contract input
	t := ratio - float32(seg)
	if seg >= int(srcSegments) {
		// Exact tip. Evaluating the last segment at t=1 yields the same
		// point without reading past the strand's span.
		seg = int(srcSegments) - 1
		t = 1
	}

	base := int(srcOffset) + seg
	p1 := src.Points[base]
	p2 := src.Points[base+1]

	var p0 ControlPoint
	if seg <= 0 {
		p0 = mirrorPoint(p1, p2) // root: no predecessor to read
	} else {
		p0 = src.Points[base-1]
	}

	var p3 ControlPoint
	if seg+1 >= int(srcSegments) {
		p3 = mirrorPoint(p2, p1) // tip: no successor to read
	} else {
		p3 = src.Points[base+2]
	}

	return catmullRom(p0, p1, p2, p3, t)
}
