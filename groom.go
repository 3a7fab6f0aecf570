package hair

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type GroomID string

func makeGroomID() GroomID {
	return GroomID(uuid.NewString())
}

// GroomAsset couples strand buffers with the shape configuration and the
// per-strand auxiliary channels of one groom.
type GroomAsset struct {
	Buffers StrandBuffers
	Shape   ShapeParams
	UVs     CustomDataBuffer[mgl32.Vec2]
	Colors  CustomDataBuffer[mgl32.Vec4]
}

// GroomServer holds registered grooms by id.
type GroomServer struct {
	grooms map[GroomID]GroomAsset
}

func NewGroomServer() *GroomServer {
	return &GroomServer{grooms: map[GroomID]GroomAsset{}}
}

func (s *GroomServer) Register(asset GroomAsset) GroomID {
	id := makeGroomID()
	s.grooms[id] = asset
	return id
}

func (s *GroomServer) Groom(id GroomID) (GroomAsset, bool) {
	asset, ok := s.grooms[id]
	return asset, ok
}

// GroomBuilder assembles host-side strand buffers. Strands are laid out in
// insertion order, which keeps record offsets monotonically non-decreasing
// and point spans disjoint by construction.
type GroomBuilder struct {
	points   []ControlPoint
	records  []uint32
	indexMap []uint32
	uvs      []mgl32.Vec2
	colors   []mgl32.Vec4
}

func NewGroomBuilder() *GroomBuilder {
	return &GroomBuilder{}
}

// AddStrand appends one strand and returns its record index. Point times are
// spread uniformly from root to tip. Panics on fewer than two points or when
// the buffer outgrows the record codec's 24/8-bit ranges.
func (g *GroomBuilder) AddStrand(points ...mgl32.Vec3) uint32 {
	if len(points) < 2 {
		panic("hair: a strand needs at least two control points")
	}
	segments := uint32(len(points) - 1)
	offset := uint32(len(g.points))
	strand := uint32(len(g.records))
	g.records = append(g.records, PackStrandRecord(offset, segments))
	g.uvs = append(g.uvs, mgl32.Vec2{})
	g.colors = append(g.colors, mgl32.Vec4{})
	for i, p := range points {
		g.points = append(g.points, ControlPoint{
			Position: p,
			Time:     float32(i) / float32(segments),
		})
		g.indexMap = append(g.indexMap, strand)
	}
	return strand
}

// SetUV assigns the surface UV of a strand added earlier.
func (g *GroomBuilder) SetUV(strand uint32, uv mgl32.Vec2) {
	g.uvs[strand] = uv
}

// SetColor assigns the auxiliary color of a strand added earlier.
func (g *GroomBuilder) SetColor(strand uint32, color mgl32.Vec4) {
	g.colors[strand] = color
}

// Build wraps the accumulated buffers into an asset. The slices are shared,
// not copied; keep building only if the returned asset is discarded.
func (g *GroomBuilder) Build(shape ShapeParams) GroomAsset {
	return GroomAsset{
		Buffers: StrandBuffers{
			Points:   g.points,
			Records:  g.records,
			IndexMap: g.indexMap,
		},
		Shape:  shape,
		UVs:    CustomDataBuffer[mgl32.Vec2]{Name: "uv", Values: g.uvs},
		Colors: CustomDataBuffer[mgl32.Vec4]{Name: "color", Values: g.colors},
	}
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// CreateFurPatchGroom scatters strandsX*strandsZ strands over an XZ patch
// centered at the origin, growing along +Y with jittered length and a
// quadratic lean in a random direction per strand. Strand UVs span the patch.
func (s *GroomServer) CreateFurPatchGroom(width, depth float32, strandsX, strandsZ, pointsPerStrand int, lengthMin, lengthMax, lean float32) GroomID {
	if pointsPerStrand < 2 {
		pointsPerStrand = 2
	}
	b := NewGroomBuilder()
	cellX := width / float32(strandsX)
	cellZ := depth / float32(strandsZ)

	for ix := 0; ix < strandsX; ix++ {
		for iz := 0; iz < strandsZ; iz++ {
			u := (float32(ix) + 0.5) / float32(strandsX)
			v := (float32(iz) + 0.5) / float32(strandsZ)
			root := mgl32.Vec3{
				(u-0.5)*width + (rand.Float32()-0.5)*cellX,
				0,
				(v-0.5)*depth + (rand.Float32()-0.5)*cellZ,
			}

			length := lerp(lengthMin, lengthMax, rand.Float32())
			phi := 2 * math.Pi * rand.Float64()
			leanDir := mgl32.Vec3{float32(math.Cos(phi)), 0, float32(math.Sin(phi))}

			pts := make([]mgl32.Vec3, pointsPerStrand)
			for i := range pts {
				t := float32(i) / float32(pointsPerStrand-1)
				pts[i] = root.
					Add(mgl32.Vec3{0, t * length, 0}).
					Add(leanDir.Mul(lean * t * t * length))
			}

			strand := b.AddStrand(pts...)
			b.SetUV(strand, mgl32.Vec2{u, v})
		}
	}
	return s.Register(b.Build(DefaultShapeParams()))
}

// CreateSphereGroom grows strands outward along the normals of a sphere,
// uniformly distributed over its surface, with a slight downward droop
// toward the tips.
func (s *GroomServer) CreateSphereGroom(radius float32, strands, pointsPerStrand int, length, droop float32) GroomID {
	if pointsPerStrand < 2 {
		pointsPerStrand = 2
	}
	b := NewGroomBuilder()

	for i := 0; i < strands; i++ {
		cosTheta := rand.Float32()*2 - 1
		sinTheta := float32(math.Sqrt(float64(1 - cosTheta*cosTheta)))
		phi := 2 * math.Pi * rand.Float64()
		normal := mgl32.Vec3{
			sinTheta * float32(math.Cos(phi)),
			cosTheta,
			sinTheta * float32(math.Sin(phi)),
		}
		root := normal.Mul(radius)

		pts := make([]mgl32.Vec3, pointsPerStrand)
		for j := range pts {
			t := float32(j) / float32(pointsPerStrand-1)
			pts[j] = root.
				Add(normal.Mul(t * length)).
				Add(mgl32.Vec3{0, -droop * t * t * length, 0})
		}

		strand := b.AddStrand(pts...)
		b.SetUV(strand, mgl32.Vec2{
			float32(phi / (2 * math.Pi)),
			(cosTheta + 1) * 0.5,
		})
	}
	return s.Register(b.Build(DefaultShapeParams()))
}
