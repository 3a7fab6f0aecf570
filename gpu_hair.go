package hair

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// GPU mirror of the two hair passes. The subdivision stage runs as a compute
// pipeline; the drawing stage runs inside the ribbon vertex shader, pulling
// control points straight from a storage buffer so no per-vertex data ever
// crosses the bus. Both WGSL sources implement the same math as interp.go,
// shape.go and draw.go and share the 24/8 record layout with strand.go.

type GpuState struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue

	log Logger
}

// NewHeadlessGpuState acquires a device without a window surface, for
// compute-only use (offline refinement, tests on machines with a GPU).
// Panics when no adapter or device is available.
func NewHeadlessGpuState(logger Logger) *GpuState {
	if logger == nil {
		logger = NewNopLogger()
	}
	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Hair Device",
	})
	if err != nil {
		panic(err)
	}
	logger.Debugf("acquired headless wgpu device")
	return &GpuState{
		Instance: instance,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
		log:      logger,
	}
}

// NewGpuStateFor wraps externally created wgpu objects (typically a windowed
// swapchain setup) so the hair passes can share the device. The caller keeps
// ownership of the wrapped objects.
func NewGpuStateFor(instance *wgpu.Instance, adapter *wgpu.Adapter, device *wgpu.Device, logger Logger) *GpuState {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &GpuState{
		Instance: instance,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
		log:      logger,
	}
}

// Release frees the held wgpu objects. Only call on headless states; wrapped
// states are released by their owner.
func (g *GpuState) Release() {
	g.Device.Release()
	g.Adapter.Release()
	g.Instance.Release()
}

// CreateBuffer uploads data (a struct, slice or array of scalars/structs)
// as a little-endian packed device buffer.
func (g *GpuState) CreateBuffer(name string, data any, usage wgpu.BufferUsage) *wgpu.Buffer {
	buffer, err := g.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    name,
		Contents: BufferBytes(data),
		Usage:    usage,
	})
	if err != nil {
		panic(err)
	}
	return buffer
}

// StrandGpuBuffers mirror one groom's strand buffers on the device.
type StrandGpuBuffers struct {
	Points     *wgpu.Buffer
	Records    *wgpu.Buffer
	IndexMap   *wgpu.Buffer
	PointCount int
}

// UploadStrandBuffers copies the host buffers into storage buffers.
func (g *GpuState) UploadStrandBuffers(buf StrandBuffers) *StrandGpuBuffers {
	return &StrandGpuBuffers{
		Points:     g.CreateBuffer("hair_points", buf.Points, wgpu.BufferUsageStorage),
		Records:    g.CreateBuffer("hair_records", buf.Records, wgpu.BufferUsageStorage),
		IndexMap:   g.CreateBuffer("hair_index_map", buf.IndexMap, wgpu.BufferUsageStorage),
		PointCount: len(buf.Points),
	}
}

func (b *StrandGpuBuffers) Release() {
	b.Points.Release()
	b.Records.Release()
	b.IndexMap.Release()
}

type refineParams struct {
	PointCount uint32
	Pad        [3]uint32
}

// RefineStrands runs the subdivision stage on the GPU and reads the
// densified points back. Layout planning (expanded records, index map) stays
// on the CPU; only the per-point interpolation is dispatched. The result is
// identical to Subdivide up to floating-point evaluation order.
func (g *GpuState) RefineStrands(src StrandBuffers, factor int) StrandBuffers {
	dst := subdividedLayout(src, factor)
	n := len(dst.IndexMap)
	dst.Points = make([]ControlPoint, n)
	if n == 0 {
		return dst
	}

	srcGpu := g.UploadStrandBuffers(src)
	defer srcGpu.Release()
	dstRecordsBuf := g.CreateBuffer("hair_dst_records", dst.Records, wgpu.BufferUsageStorage)
	defer dstRecordsBuf.Release()
	indexMapBuf := g.CreateBuffer("hair_dst_index_map", dst.IndexMap, wgpu.BufferUsageStorage)
	defer indexMapBuf.Release()
	paramsBuf := g.CreateBuffer("hair_refine_params", refineParams{PointCount: uint32(n)}, wgpu.BufferUsageUniform)
	defer paramsBuf.Release()

	outSize := uint64(n) * 16 // one vec4<f32> per point
	dstPointsBuf, err := g.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "hair_dst_points",
		Size:  outSize,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		panic(err)
	}
	defer dstPointsBuf.Release()
	staging, err := g.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "hair_refine_readback",
		Size:  outSize,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	defer staging.Release()

	shader, err := g.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "hair_refine",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: StrandRefineWGSL},
	})
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	pipeline, err := g.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: "cs_main",
		},
	})
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	layout := pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	bindGroup, err := g.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: srcGpu.Points, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: srcGpu.Records, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: dstRecordsBuf, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: indexMapBuf, Size: wgpu.WholeSize},
			{Binding: 4, Buffer: dstPointsBuf, Size: wgpu.WholeSize},
			{Binding: 5, Buffer: paramsBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(err)
	}
	defer bindGroup.Release()

	encoder, err := g.Device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	defer encoder.Release()

	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups((uint32(n)+63)/64, 1, 1)
	if err := computePass.End(); err != nil {
		panic(err)
	}
	if err := encoder.CopyBufferToBuffer(dstPointsBuf, 0, staging, 0, outSize); err != nil {
		panic(err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	defer cmdBuffer.Release()
	g.Queue.Submit(cmdBuffer)

	err = staging.MapAsync(wgpu.MapModeRead, 0, outSize, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			panic(fmt.Sprintf("hair: refine readback map failed: %v", status))
		}
	})
	if err != nil {
		panic(err)
	}
	g.Device.Poll(true, nil)

	data := staging.GetMappedRange(0, uint(outSize))
	floats := make([]float32, n*4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, floats); err != nil {
		panic(err)
	}
	staging.Unmap()

	for i := range dst.Points {
		dst.Points[i] = ControlPoint{
			Position: mgl32.Vec3{floats[i*4], floats[i*4+1], floats[i*4+2]},
			Time:     floats[i*4+3],
		}
	}
	g.log.Debugf("refined %d strands into %d points (factor %d)", len(src.Records), n, factor)
	return dst
}

// CreateStrandRenderPipeline builds the ribbon render pipeline. The vertex
// stage pulls control points from the bound storage buffer and performs the
// drawing-stage synthesis; strands draw as one triangle strip each,
// ThicknessSubdivisions vertices per point, unculled (ribbons are two-sided).
func CreateStrandRenderPipeline(device *wgpu.Device, format wgpu.TextureFormat) *wgpu.RenderPipeline {
	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "hair_draw",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: StrandDrawWGSL},
	})
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					Blend:     nil,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleStrip,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		panic(err)
	}
	return pipeline
}

// StrandViewUniform matches the ViewParams uniform of StrandDrawWGSL.
// CameraPos.W selects the projection mode (1 perspective, 0 orthographic);
// Shape packs (root, tip, shape, closeTip); Res.X is ThicknessSubdivisions.
type StrandViewUniform struct {
	ViewProjMx    mgl32.Mat4
	CameraPos     mgl32.Vec4
	CameraForward mgl32.Vec4
	Shape         mgl32.Vec4
	Res           [4]uint32
}

// NewStrandViewUniform assembles the draw uniform from the CPU-side types.
func NewStrandViewUniform(viewProj mgl32.Mat4, cam Camera, shape ShapeParams) StrandViewUniform {
	persp := float32(1)
	if cam.Orthographic {
		persp = 0
	}
	closeTip := float32(0)
	if shape.CloseTip {
		closeTip = 1
	}
	return StrandViewUniform{
		ViewProjMx:    viewProj,
		CameraPos:     mgl32.Vec4{cam.Position.X(), cam.Position.Y(), cam.Position.Z(), persp},
		CameraForward: mgl32.Vec4{cam.Forward.X(), cam.Forward.Y(), cam.Forward.Z(), 0},
		Shape:         mgl32.Vec4{shape.RadiusRoot, shape.RadiusTip, shape.RadiusShape, closeTip},
		Res:           [4]uint32{uint32(shape.ThicknessSubdivisions), 0, 0, 0},
	}
}

// BufferBytes packs a struct, slice or array into little-endian bytes the
// way the device expects. Nested structs and arrays are flattened in field
// order; only 32-bit-compatible scalar kinds are allowed.
func BufferBytes(data any) []byte {
	val := reflect.ValueOf(data)
	buf := new(bytes.Buffer)
	readBufferBytes(val, buf)
	return buf.Bytes()
}

func readBufferBytes(field reflect.Value, buf *bytes.Buffer) {
	switch field.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < field.Len(); i++ {
			elem := field.Index(i)
			if elem.Kind() == reflect.Ptr {
				elem = elem.Elem()
			}
			if elem.Kind() == reflect.Struct {
				readBufferBytes(elem, buf)
			} else {
				if err := binary.Write(buf, binary.LittleEndian, elem.Interface()); err != nil {
					panic(fmt.Errorf("failed to write slice element: %w", err))
				}
			}
		}

	case reflect.Struct:
		for i := 0; i < field.NumField(); i++ {
			readBufferBytes(field.Field(i), buf)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Float32:
		if err := binary.Write(buf, binary.LittleEndian, field.Interface()); err != nil {
			panic(fmt.Errorf("failed to write scalar field: %w", err))
		}

	default:
		panic(fmt.Errorf("unsupported buffer field type: %v", field))
	}
}

// StrandRefineWGSL is the subdivision stage. One invocation writes one point
// of the densified buffer; the record decode must match UnpackStrandRecord.
const StrandRefineWGSL = `
struct RefineParams {
    point_count : u32,
    pad0 : u32,
    pad1 : u32,
    pad2 : u32,
};

@group(0) @binding(0) var<storage, read> src_points : array<vec4<f32>>;
@group(0) @binding(1) var<storage, read> src_records : array<u32>;
@group(0) @binding(2) var<storage, read> dst_records : array<u32>;
@group(0) @binding(3) var<storage, read> dst_index_map : array<u32>;
@group(0) @binding(4) var<storage, read_write> dst_points : array<vec4<f32>>;
@group(0) @binding(5) var<uniform> params : RefineParams;

fn strand_data(word : u32) -> vec2<u32> {
    return vec2<u32>(word & 0x00FFFFFFu, word >> 24u);
}

fn catmull_rom(p0 : vec4<f32>, p1 : vec4<f32>, p2 : vec4<f32>, p3 : vec4<f32>, t : f32) -> vec4<f32> {
    let t2 = t * t;
    let t3 = t2 * t;
    let w0 = 0.5 * (-t3 + 2.0 * t2 - t);
    let w1 = 0.5 * (3.0 * t3 - 5.0 * t2 + 2.0);
    let w2 = 0.5 * (-3.0 * t3 + 4.0 * t2 + t);
    let w3 = 0.5 * (t3 - t2);
    return p0 * w0 + p1 * w1 + p2 * w2 + p3 * w3;
}

@compute @workgroup_size(64)
fn cs_main(@builtin(global_invocation_id) gid : vec3<u32>) {
    let i = gid.x;
    if (i >= params.point_count) {
        return;
    }

    let strand = dst_index_map[i];
    let out_rec = strand_data(dst_records[strand]);
    let src_rec = strand_data(src_records[strand]);

    let local_time = f32(i - out_rec.x) / f32(out_rec.y);
    let ratio = local_time * f32(src_rec.y);
    var seg = u32(ratio);
    var t = ratio - f32(seg);
    if (seg >= src_rec.y) {
        seg = src_rec.y - 1u;
        t = 1.0;
    }

    let base = src_rec.x + seg;
    let p1 = src_points[base];
    let p2 = src_points[base + 1u];

    var p0 = p1 * 2.0 - p2;
    if (seg > 0u) {
        p0 = src_points[base - 1u];
    }
    var p3 = p2 * 2.0 - p1;
    if (seg + 1u < src_rec.y) {
        p3 = src_points[base + 2u];
    }

    dst_points[i] = catmull_rom(p0, p1, p2, p3, t);
}
`

// StrandDrawWGSL is the drawing stage: vertex pulling from the point storage
// buffer plus the taper curve, mirroring draw.go and shape.go.
const StrandDrawWGSL = `
struct ViewParams {
    view_proj : mat4x4<f32>,
    camera_pos : vec4<f32>,     // w: 1 = perspective, 0 = orthographic
    camera_forward : vec4<f32>,
    shape : vec4<f32>,          // root, tip, shape, close_tip
    res : vec4<u32>,            // x = thickness subdivisions
};

@group(0) @binding(0) var<uniform> view : ViewParams;
@group(0) @binding(1) var<storage, read> points : array<vec4<f32>>;

fn shape_radius(time : f32) -> f32 {
    var radius = 1.0 - time;
    if (view.shape.z < 0.0) {
        radius = pow(radius, 1.0 + view.shape.z);
    } else {
        radius = pow(radius, 1.0 / (1.0 - view.shape.z));
    }
    if (view.shape.w != 0.0 && time > 0.99) {
        return 0.0;
    }
    return radius * (view.shape.x - view.shape.y) + view.shape.y;
}

struct VertexOut {
    @builtin(position) position : vec4<f32>,
    @location(0) time : f32,
    @location(1) thick_time : f32,
};

@vertex
fn vs_main(@builtin(vertex_index) vid : u32) -> VertexOut {
    let n = view.res.x;
    let base_id = vid / n;
    let data = points[base_id];
    var wpos = data.xyz;
    let time = data.w;

    var wtan : vec3<f32>;
    if (time == 0.0) {
        wtan = points[base_id + 1u].xyz - wpos;
    } else {
        wtan = wpos - points[base_id - 1u].xyz;
    }

    var camera_vec = wpos - view.camera_pos.xyz;
    if (view.camera_pos.w == 0.0) {
        camera_vec = -view.camera_forward.xyz;
    }
    let wbinor = normalize(cross(camera_vec, wtan));

    let thickness = shape_radius(time);
    var thick_time = 0.0;
    if (n > 1u) {
        thick_time = f32(vid % n) / f32(n - 1u);
        thick_time = thickness * (thick_time * 2.0 - 1.0);
        wpos = wpos + wbinor * thick_time;
    }

    var out : VertexOut;
    out.position = view.view_proj * vec4<f32>(wpos, 1.0);
    out.time = time;
    out.thick_time = thick_time;
    return out;
}

@fragment
fn fs_main(in : VertexOut) -> @location(0) vec4<f32> {
    let root = vec3<f32>(0.26, 0.16, 0.06);
    let tip = vec3<f32>(0.78, 0.62, 0.38);
    return vec4<f32>(mix(root, tip, in.time), 1.0);
}
`
