package main

import (
	"flag"
	"math"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/strandgeom/hair"
)

func main() {
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 720, "window height")
	strands := flag.Int("strands", 48, "strands per patch side")
	factor := flag.Int("subdiv", 4, "output segments per source segment")
	gpuRefine := flag.Bool("gpu-refine", false, "run the subdivision stage on the GPU")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := hair.NewDefaultLogger("hairview", *debug)

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // wgpu drives the surface, no GL context
	glfw.WindowHint(glfw.Resizable, glfw.False)

	win, err := glfw.CreateWindow(*width, *height, "hairview", nil, nil)
	if err != nil {
		panic(err)
	}

	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(*width),
		Height:      uint32(*height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	gpu := hair.NewGpuStateFor(instance, adapter, device, logger)

	server := hair.NewGroomServer()
	id := server.CreateFurPatchGroom(1.0, 1.0, *strands, *strands, 5, 0.25, 0.45, 0.35)
	groom, _ := server.Groom(id)
	shape := groom.Shape

	var refined hair.StrandBuffers
	if *gpuRefine {
		refined = gpu.RefineStrands(groom.Buffers, *factor)
	} else {
		refined = hair.Subdivide(groom.Buffers, *factor)
	}
	logger.Infof("groom: %d strands, %d control points -> %d refined points",
		groom.Buffers.StrandCount(), len(groom.Buffers.Points), len(refined.Points))

	pipeline := hair.CreateStrandRenderPipeline(device, surfaceConfig.Format)
	defer pipeline.Release()

	pointsBuf := gpu.CreateBuffer("hair_points", refined.Points, wgpu.BufferUsageStorage)
	defer pointsBuf.Release()
	viewBuf := gpu.CreateBuffer("hair_view",
		hair.NewStrandViewUniform(mgl32.Ident4(), hair.Camera{}, shape),
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	defer viewBuf.Release()

	layout := pipeline.GetBindGroupLayout(0)
	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: viewBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: pointsBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(err)
	}
	layout.Release()
	defer bindGroup.Release()

	aspect := float32(*width) / float32(*height)
	proj := mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.01, 100)
	start := glfw.GetTime()

	for !win.ShouldClose() {
		glfw.PollEvents()

		// Slow orbit around the patch.
		t := float32(glfw.GetTime() - start)
		camPos := mgl32.Vec3{
			1.4 * float32(math.Cos(float64(t*0.4))),
			0.7,
			1.4 * float32(math.Sin(float64(t*0.4))),
		}
		lookAt := mgl32.Vec3{0, 0.2, 0}
		viewMx := mgl32.LookAtV(camPos, lookAt, mgl32.Vec3{0, 1, 0})
		cam := hair.Camera{
			Position: camPos,
			Forward:  lookAt.Sub(camPos).Normalize(),
		}

		uniform := hair.NewStrandViewUniform(proj.Mul4(viewMx), cam, shape)
		if err := queue.WriteBuffer(viewBuf, 0, hair.BufferBytes(uniform)); err != nil {
			panic(err)
		}

		nextTexture, err := surface.GetCurrentTexture()
		if err != nil {
			panic(err)
		}
		frameView, err := nextTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}

		encoder, err := device.CreateCommandEncoder(nil)
		if err != nil {
			panic(err)
		}

		renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{
					View:       frameView,
					LoadOp:     wgpu.LoadOpClear,
					StoreOp:    wgpu.StoreOpStore,
					ClearValue: wgpu.Color{R: 0.07, G: 0.08, B: 0.09, A: 1.0},
				},
			},
		})
		renderPass.SetPipeline(pipeline)
		renderPass.SetBindGroup(0, bindGroup, nil)

		// One triangle strip per strand.
		n := uint32(shape.ThicknessSubdivisions)
		for s := 0; s < refined.StrandCount(); s++ {
			offset, segments := refined.StrandData(uint32(s))
			renderPass.Draw((segments+1)*n, 1, offset*n, 0)
		}
		if err := renderPass.End(); err != nil {
			panic(err)
		}
		renderPass.Release()

		cmdBuffer, err := encoder.Finish(nil)
		if err != nil {
			panic(err)
		}
		queue.Submit(cmdBuffer)
		surface.Present()

		cmdBuffer.Release()
		encoder.Release()
		frameView.Release()
	}
}
