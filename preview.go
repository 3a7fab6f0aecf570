package hair

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/vector"
)

// RenderPreview rasterizes the drawing-stage output to an image without a
// GPU: every strand segment becomes one screen-space quad spanned by the
// ribbon's edge vertices. Meant for debugging grooms and for inspection in
// tests.
func RenderPreview(buffers StrandBuffers, shape ShapeParams, cam Camera, viewProj mgl32.Mat4, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{18, 20, 24, 255}), image.Point{}, draw.Src)

	if shape.ThicknessSubdivisions < 2 {
		// Rasterizing needs a ribbon cross-section.
		shape.ThicknessSubdivisions = 2
	}
	n := shape.ThicknessSubdivisions

	project := func(p mgl32.Vec3) (float32, float32, bool) {
		clip := viewProj.Mul4x1(mgl32.Vec4{p.X(), p.Y(), p.Z(), 1})
		if clip.W() <= 0 {
			return 0, 0, false
		}
		ndcX := clip.X() / clip.W()
		ndcY := clip.Y() / clip.W()
		return (ndcX + 1) * 0.5 * float32(width), (1 - ndcY) * 0.5 * float32(height), true
	}

	z := vector.NewRasterizer(width, height)
	for strand := 0; strand < buffers.StrandCount(); strand++ {
		offset, segments := buffers.StrandData(uint32(strand))
		for seg := uint32(0); seg < segments; seg++ {
			base := int(offset+seg) * n

			// Edge vertices of the ribbon at both ends of the segment.
			l0 := DrawVertex(buffers.Points, shape, cam, base)
			r0 := DrawVertex(buffers.Points, shape, cam, base+n-1)
			l1 := DrawVertex(buffers.Points, shape, cam, base+n)
			r1 := DrawVertex(buffers.Points, shape, cam, base+2*n-1)

			x0, y0, ok0 := project(l0.Position)
			x1, y1, ok1 := project(r0.Position)
			x2, y2, ok2 := project(r1.Position)
			x3, y3, ok3 := project(l1.Position)
			if !(ok0 && ok1 && ok2 && ok3) {
				continue
			}

			z.MoveTo(x0, y0)
			z.LineTo(x1, y1)
			z.LineTo(x2, y2)
			z.LineTo(x3, y3)
			z.ClosePath()
		}
	}
	z.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{176, 138, 84, 255}), image.Point{})
	return img
}

// SavePreviewPNG writes an image produced by RenderPreview.
func SavePreviewPNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}
