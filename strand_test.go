package hair

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestStrandRecord_RoundTrip(t *testing.T) {
	cases := []struct {
		offset   uint32
		segments uint32
	}{
		{0, 1},
		{1, 1},
		{12345, 7},
		{MaxStrandOffset, MaxStrandSegments},
		{MaxStrandOffset, 0},
		{0, MaxStrandSegments},
	}
	for _, c := range cases {
		word := PackStrandRecord(c.offset, c.segments)
		offset, segments := UnpackStrandRecord(word)
		if offset != c.offset || segments != c.segments {
			t.Errorf("round trip (%d,%d) -> %#08x -> (%d,%d)",
				c.offset, c.segments, word, offset, segments)
		}
	}
}

func TestStrandRecord_BitLayout(t *testing.T) {
	// The 24/8 split is a wire format shared with the GPU decoder; pin the
	// exact mask and shift.
	word := PackStrandRecord(0x00ABCDEF, 0x12)
	if word != 0x12ABCDEF {
		t.Errorf("expected 0x12ABCDEF, got %#08x", word)
	}
	offset, segments := UnpackStrandRecord(0xFF000001)
	if offset != 1 || segments != 0xFF {
		t.Errorf("decode 0xFF000001 -> (%d,%d)", offset, segments)
	}
}

func TestStrandRecord_PackRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for 25-bit offset")
		}
	}()
	PackStrandRecord(MaxStrandOffset+1, 1)
}

func TestStrandBuffers_Resolver(t *testing.T) {
	buf := StrandBuffers{
		Points: []ControlPoint{
			{Position: mgl32.Vec3{0, 0, 0}, Time: 0},
			{Position: mgl32.Vec3{1, 0, 0}, Time: 1},
			{Position: mgl32.Vec3{0, 1, 0}, Time: 0},
			{Position: mgl32.Vec3{0, 2, 0}, Time: 0.5},
			{Position: mgl32.Vec3{0, 3, 0}, Time: 1},
		},
		Records: []uint32{
			PackStrandRecord(0, 1),
			PackStrandRecord(2, 2),
		},
		IndexMap: []uint32{0, 0, 1, 1, 1},
	}

	if got := buf.StrandAt(1); got != 0 {
		t.Errorf("StrandAt(1) = %d, want 0", got)
	}
	if got := buf.StrandAt(4); got != 1 {
		t.Errorf("StrandAt(4) = %d, want 1", got)
	}
	offset, segments := buf.StrandData(1)
	if offset != 2 || segments != 2 {
		t.Errorf("StrandData(1) = (%d,%d), want (2,2)", offset, segments)
	}
	if buf.StrandCount() != 2 {
		t.Errorf("StrandCount() = %d, want 2", buf.StrandCount())
	}
}
