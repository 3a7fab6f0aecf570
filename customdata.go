package hair

import "github.com/go-gl/mathgl/mgl32"

// CustomDatum is the set of component widths an auxiliary channel can carry.
type CustomDatum interface {
	mgl32.Vec2 | mgl32.Vec3 | mgl32.Vec4
}

// CustomDataBuffer is one named per-strand auxiliary attribute channel
// (surface UV, color, ...). Records are indexed by strand id, never by
// point, and are returned unmodified: a pure lookup with no interpolation.
type CustomDataBuffer[T CustomDatum] struct {
	Name   string
	Values []T
}

// ForPoint returns the record of the strand owning the given
// control-point-space vertex id.
func (c CustomDataBuffer[T]) ForPoint(buffers StrandBuffers, pointIndex int) T {
	return c.Values[buffers.StrandAt(pointIndex)]
}

// ForVertex resolves a drawing-stage (thick) vertex index by collapsing it
// to its base point first.
func (c CustomDataBuffer[T]) ForVertex(buffers StrandBuffers, shape ShapeParams, vertexIndex int) T {
	return c.ForPoint(buffers, vertexIndex/shape.ThicknessSubdivisions)
}
