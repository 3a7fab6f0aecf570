package hair

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func testPoints() []ControlPoint {
	return []ControlPoint{
		{Position: mgl32.Vec3{0, 0, 0}, Time: 0},
		{Position: mgl32.Vec3{0, 1, 0}, Time: 0.5},
		{Position: mgl32.Vec3{0, 2, 0.5}, Time: 1},
	}
}

func testCamera() Camera {
	return Camera{Position: mgl32.Vec3{5, 0, 0}}
}

func TestDrawVertex_TangentAtRoot(t *testing.T) {
	points := testPoints()
	shape := ShapeParams{ThicknessSubdivisions: 1, RadiusRoot: 0.01}

	v := DrawVertex(points, shape, testCamera(), 0)
	want := points[1].Position.Sub(points[0].Position)
	assert.Equal(t, want, v.Tangent, "root tangent is the forward difference")
}

func TestDrawVertex_TangentInterior(t *testing.T) {
	points := testPoints()
	shape := ShapeParams{ThicknessSubdivisions: 1, RadiusRoot: 0.01}

	v := DrawVertex(points, shape, testCamera(), 1)
	want := points[1].Position.Sub(points[0].Position)
	assert.Equal(t, want, v.Tangent, "interior tangent is the backward difference")

	tip := DrawVertex(points, shape, testCamera(), 2)
	wantTip := points[2].Position.Sub(points[1].Position)
	assert.Equal(t, wantTip, tip.Tangent)
}

func TestDrawVertex_BinormalFacesCamera(t *testing.T) {
	points := testPoints()
	shape := ShapeParams{ThicknessSubdivisions: 1, RadiusRoot: 0.01}
	cam := testCamera()

	v := DrawVertex(points, shape, cam, 1)
	assert.InDelta(t, 1, v.Binormal.Len(), 1e-5, "binormal is normalized")
	assert.InDelta(t, 0, v.Binormal.Dot(v.Tangent), 1e-5, "binormal is perpendicular to the tangent")
	cameraVec := v.Position.Sub(cam.Position)
	assert.InDelta(t, 0, v.Binormal.Dot(cameraVec), 1e-5, "binormal is perpendicular to the view vector")
}

func TestDrawVertex_OrthographicCamera(t *testing.T) {
	points := testPoints()
	shape := ShapeParams{ThicknessSubdivisions: 1, RadiusRoot: 0.01}

	camA := Camera{Position: mgl32.Vec3{5, 0, 0}, Forward: mgl32.Vec3{-1, 0, 0}, Orthographic: true}
	camB := Camera{Position: mgl32.Vec3{50, 3, -9}, Forward: mgl32.Vec3{-1, 0, 0}, Orthographic: true}

	// Under orthographic projection only the view axis matters.
	va := DrawVertex(points, shape, camA, 1)
	vb := DrawVertex(points, shape, camB, 1)
	assert.Equal(t, va.Binormal, vb.Binormal)
}

func TestDrawVertex_ThicknessFanOut(t *testing.T) {
	points := testPoints()
	shape := ShapeParams{ThicknessSubdivisions: 3, RadiusRoot: 0.2, RadiusTip: 0.2}
	cam := testCamera()

	// Three vertices fan across the cross-section of centerline point 1:
	// remapped thick times {-1, 0, 1} scaled by the thickness.
	left := DrawVertex(points, shape, cam, 3)
	mid := DrawVertex(points, shape, cam, 4)
	right := DrawVertex(points, shape, cam, 5)

	thickness := mid.Thickness
	assert.InDelta(t, -thickness, left.ThickTime, 1e-6)
	assert.InDelta(t, 0, mid.ThickTime, 1e-6)
	assert.InDelta(t, thickness, right.ThickTime, 1e-6)

	// The middle vertex stays on the centerline.
	assert.Equal(t, points[1].Position, mid.Position)

	// The outer vertices sit symmetrically along the binormal.
	wantLeft := points[1].Position.Add(mid.Binormal.Mul(-thickness))
	wantRight := points[1].Position.Add(mid.Binormal.Mul(thickness))
	assert.InDelta(t, wantLeft.X(), left.Position.X(), 1e-6)
	assert.InDelta(t, wantRight.X(), right.Position.X(), 1e-6)
	assert.InDelta(t, wantLeft.Z(), left.Position.Z(), 1e-6)
	assert.InDelta(t, wantRight.Z(), right.Position.Z(), 1e-6)
}

func TestDrawVertex_SingleSubdivisionKeepsCenterline(t *testing.T) {
	points := testPoints()
	shape := ShapeParams{ThicknessSubdivisions: 1, RadiusRoot: 0.2}

	for i := range points {
		v := DrawVertex(points, shape, testCamera(), i)
		assert.Equal(t, points[i].Position, v.Position, "vertex %d", i)
		assert.Equal(t, float32(0), v.ThickTime)
	}
}
