package hair

import "github.com/go-gl/mathgl/mgl32"

// Camera carries the per-draw view inputs of the drawing stage.
type Camera struct {
	Position mgl32.Vec3
	// Forward is the normalized view axis, consulted only under
	// orthographic projection.
	Forward      mgl32.Vec3
	Orthographic bool
}

// StrandVertex is the full attribute set of one drawing-stage output vertex.
type StrandVertex struct {
	Position mgl32.Vec3
	Tangent  mgl32.Vec3
	Binormal mgl32.Vec3
	Time     float32
	// Thickness is the centerline radius at Time; ThickTime is the signed
	// cross-section offset already scaled by Thickness (zero for the
	// centerline vertex and for single-vertex lines).
	Thickness float32
	ThickTime float32
}

// DrawVertex synthesizes the rendering attributes of one output vertex.
// points is the (possibly subdivided) control-point buffer; the caller
// issues ThicknessSubdivisions consecutive vertex indices per centerline
// point, and this function fans them out across the cross-section so that
// ribbons always face the camera.
//
// All inputs are assumed valid per the strand buffer contract; there is no
// error path.
func DrawVertex(points []ControlPoint, shape ShapeParams, cam Camera, vertexIndex int) StrandVertex {
	n := shape.ThicknessSubdivisions
	baseID := vertexIndex / n
	pt := points[baseID]
	wpos := pt.Position
	time := pt.Time

	var wtan mgl32.Vec3
	if time == 0 {
		// Strand root: no predecessor, difference forward instead.
		wtan = points[baseID+1].Position.Sub(wpos)
	} else {
		wtan = wpos.Sub(points[baseID-1].Position)
	}

	var cameraVec mgl32.Vec3
	if cam.Orthographic {
		cameraVec = cam.Forward.Mul(-1)
	} else {
		cameraVec = wpos.Sub(cam.Position)
	}
	wbinor := cameraVec.Cross(wtan).Normalize()

	thickness := ShapeRadius(shape, time)

	v := StrandVertex{
		Position:  wpos,
		Tangent:   wtan,
		Binormal:  wbinor,
		Time:      time,
		Thickness: thickness,
	}
	if n > 1 {
		thickTime := float32(vertexIndex%n) / float32(n-1)
		thickTime = thickness * (thickTime*2 - 1)
		v.ThickTime = thickTime
		v.Position = wpos.Add(wbinor.Mul(thickTime))
	}
	return v
}
