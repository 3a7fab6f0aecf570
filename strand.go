package hair

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ControlPoint is one sample along a strand: a world-space position plus the
// sample's normalized parametric time (0 at the root, 1 at the tip).
// The layout matches one RGBA32F texel on the GPU side (16 bytes).
type ControlPoint struct {
	Position mgl32.Vec3
	Time     float32
}

// Strand records pack a 24-bit first-point offset and an 8-bit segment count
// into one 32-bit word. The mask and shift are shared with the WGSL decoder
// (see strand_data in StrandRefineWGSL); both sides must agree exactly.
const (
	strandOffsetMask   = 0x00FFFFFF
	strandSegmentShift = 24

	// MaxStrandOffset and MaxStrandSegments are the codec range limits.
	MaxStrandOffset   = strandOffsetMask
	MaxStrandSegments = 0xFF
)

// PackStrandRecord encodes a strand's first-point offset and segment count.
// Panics when either value does not fit the 24/8 split; packing happens on
// the host during buffer construction, so out-of-range input is a
// programming error rather than a runtime condition.
func PackStrandRecord(offset, segments uint32) uint32 {
	if offset > MaxStrandOffset {
		panic(fmt.Sprintf("hair: strand offset %d exceeds 24-bit range", offset))
	}
	if segments > MaxStrandSegments {
		panic(fmt.Sprintf("hair: strand segment count %d exceeds 8-bit range", segments))
	}
	return offset | segments<<strandSegmentShift
}

// UnpackStrandRecord decodes a packed strand record. No validation: a
// malformed word silently yields an out-of-range offset, same as the paired
// GPU decoder.
func UnpackStrandRecord(word uint32) (offset, segments uint32) {
	return word & strandOffsetMask, word >> strandSegmentShift
}

// StrandBuffers are the host-owned inputs of both passes. The library only
// reads them.
//
// Points holds every strand's control points back to back; strand i owns
// Points[offset : offset+segments+1] per its decoded record. Records[i] is
// the packed record of strand i. IndexMap maps a control-point-space vertex
// id to its owning strand's record index; drawing-stage (thick) vertex
// indices collapse to point space via ShapeParams.ThicknessSubdivisions
// before resolving.
type StrandBuffers struct {
	Points   []ControlPoint
	Records  []uint32
	IndexMap []uint32
}

// StrandAt resolves the strand owning a control-point-space vertex id.
// Out-of-range ids are a caller contract violation; the slice bounds check
// is the only guard.
func (b StrandBuffers) StrandAt(vertexIndex int) uint32 {
	return b.IndexMap[vertexIndex]
}

// StrandData returns the decoded record of one strand.
func (b StrandBuffers) StrandData(strandID uint32) (offset, segments uint32) {
	return UnpackStrandRecord(b.Records[strandID])
}

// StrandCount returns the number of strand records.
func (b StrandBuffers) StrandCount() int {
	return len(b.Records)
}
