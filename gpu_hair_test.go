package hair

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferBytes_ControlPoints(t *testing.T) {
	points := []ControlPoint{
		{Position: mgl32.Vec3{1, 2, 3}, Time: 0.5},
		{Position: mgl32.Vec3{-1, 0, 4}, Time: 1},
	}
	data := BufferBytes(points)
	// One vec4<f32> per point, little-endian.
	require.Len(t, data, len(points)*16)

	got := math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, float32(1), got)
	got = math.Float32frombits(binary.LittleEndian.Uint32(data[12:16]))
	assert.Equal(t, float32(0.5), got)
	got = math.Float32frombits(binary.LittleEndian.Uint32(data[16:20]))
	assert.Equal(t, float32(-1), got)
	got = math.Float32frombits(binary.LittleEndian.Uint32(data[28:32]))
	assert.Equal(t, float32(1), got)
}

func TestBufferBytes_RecordWords(t *testing.T) {
	records := []uint32{PackStrandRecord(0x00ABCDEF, 0x12), 7}
	data := BufferBytes(records)
	require.Len(t, data, 8)
	assert.Equal(t, uint32(0x12ABCDEF), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(data[4:8]))
}

func TestBufferBytes_ViewUniformSize(t *testing.T) {
	uniform := NewStrandViewUniform(mgl32.Ident4(), Camera{}, DefaultShapeParams())
	data := BufferBytes(uniform)
	// mat4 + 3 vec4<f32> + vec4<u32>, tightly packed.
	assert.Len(t, data, 64+16*4)
}

func TestNewStrandViewUniform_Flags(t *testing.T) {
	shape := ShapeParams{
		ThicknessSubdivisions: 3,
		RadiusRoot:            0.02,
		RadiusTip:             0.005,
		RadiusShape:           -0.3,
		CloseTip:              true,
	}

	persp := NewStrandViewUniform(mgl32.Ident4(), Camera{Position: mgl32.Vec3{1, 2, 3}}, shape)
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, persp.CameraPos)
	assert.Equal(t, mgl32.Vec4{0.02, 0.005, -0.3, 1}, persp.Shape)
	assert.Equal(t, uint32(3), persp.Res[0])

	shape.CloseTip = false
	ortho := NewStrandViewUniform(mgl32.Ident4(), Camera{Forward: mgl32.Vec3{0, 0, -1}, Orthographic: true}, shape)
	assert.Equal(t, float32(0), ortho.CameraPos.W(), "orthographic flag")
	assert.Equal(t, mgl32.Vec4{0, 0, -1, 0}, ortho.CameraForward)
	assert.Equal(t, float32(0), ortho.Shape.W(), "open tip flag")
}
