package hair

import (
	"runtime"
	"sync"
)

// Pass drivers. Each output element is an independent pure function of its
// index and the read-only inputs, so the drivers fan the index range out
// across goroutines. The subdivision output is returned only once fully
// materialized; the drawing pass must never read a partially written buffer.

// subdividedLayout plans the expanded buffer: records re-encoded with
// factor-times the segments and cumulative offsets, plus a per-point index
// map. Points are left for the CPU or GPU interpolator to fill.
func subdividedLayout(src StrandBuffers, factor int) StrandBuffers {
	if factor < 1 {
		panic("hair: subdivision factor must be >= 1")
	}
	records := make([]uint32, 0, len(src.Records))
	indexMap := make([]uint32, 0, len(src.IndexMap)*factor)
	offset := uint32(0)
	for i, word := range src.Records {
		_, segments := UnpackStrandRecord(word)
		outSegments := segments * uint32(factor)
		records = append(records, PackStrandRecord(offset, outSegments))
		for j := uint32(0); j <= outSegments; j++ {
			indexMap = append(indexMap, uint32(i))
		}
		offset += outSegments + 1
	}
	return StrandBuffers{Records: records, IndexMap: indexMap}
}

// Subdivide materializes the densified control-point buffer consumed by the
// drawing pass. factor is the number of output segments per source segment;
// factor 1 reproduces the source points through the interpolator unchanged.
// The source buffers are not mutated.
func Subdivide(src StrandBuffers, factor int) StrandBuffers {
	dst := subdividedLayout(src, factor)
	dst.Points = make([]ControlPoint, len(dst.IndexMap))
	parallelFor(len(dst.Points), func(i int) {
		dst.Points[i] = SubdividePoint(src, dst, i)
	})
	return dst
}

// DrawStrands synthesizes the full per-vertex attribute buffer:
// ThicknessSubdivisions vertices per control point, in point order.
func DrawStrands(points []ControlPoint, shape ShapeParams, cam Camera) []StrandVertex {
	verts := make([]StrandVertex, len(points)*shape.ThicknessSubdivisions)
	parallelFor(len(verts), func(i int) {
		verts[i] = DrawVertex(points, shape, cam, i)
	})
	return verts
}

// parallelFor runs fn over [0,n) split into contiguous chunks, one goroutine
// per CPU. Every fn(i) writes only index i of its output, so no
// synchronization beyond the final wait is needed.
func parallelFor(n int, fn func(i int)) {
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
