// Package preview draws a top-down picture of a spline network: every
// spline as a polyline over the XZ plane with a marker on each anchor.
// X runs to the right and Z up the image.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/chazu/tangent/pkg/geom"
	"github.com/chazu/tangent/pkg/network"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Options configures rendering.
type Options struct {
	Width   int
	Height  int
	Padding int
	// LineWidth and MarkerSize are in output pixels.
	LineWidth  float64
	MarkerSize float64
	// Samples is the number of polyline steps per curve segment.
	Samples int
	// Supersample renders at this multiple of the output size and scales
	// down.
	Supersample int

	Background color.Color
	Curve      color.Color
	Anchor     color.Color
	Junction   color.Color
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		Width:       800,
		Height:      600,
		Padding:     40,
		LineWidth:   2,
		MarkerSize:  6,
		Samples:     32,
		Supersample: 4,
		Background:  color.RGBA{255, 255, 255, 255},
		Curve:       color.RGBA{51, 51, 51, 255},
		Anchor:      color.RGBA{21, 101, 192, 255},
		Junction:    color.RGBA{230, 81, 0, 255},
	}
}

// point is a position in image space.
type point struct{ x, y float64 }

// projection maps the XZ plane into an image, keeping aspect ratio.
type projection struct {
	scale        float64
	cx, cz       float64
	halfW, halfH float64
}

func (p projection) apply(v geom.Vec3) point {
	return point{
		x: p.halfW + (v.X-p.cx)*p.scale,
		y: p.halfH - (v.Z-p.cz)*p.scale,
	}
}

// fit returns the projection that frames pts within w×h minus pad.
func fit(pts []geom.Vec3, w, h, pad float64) projection {
	p := projection{scale: 1, halfW: w / 2, halfH: h / 2}
	if len(pts) == 0 {
		return p
	}
	minX, maxX := pts[0].X, pts[0].X
	minZ, maxZ := pts[0].Z, pts[0].Z
	for _, v := range pts[1:] {
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minZ, maxZ = math.Min(minZ, v.Z), math.Max(maxZ, v.Z)
	}
	p.cx, p.cz = (minX+maxX)/2, (minZ+maxZ)/2

	availW, availH := math.Max(w-2*pad, 1), math.Max(h-2*pad, 1)
	sx, sz := math.Inf(1), math.Inf(1)
	if dx := maxX - minX; dx > 0 {
		sx = availW / dx
	}
	if dz := maxZ - minZ; dz > 0 {
		sz = availH / dz
	}
	if s := math.Min(sx, sz); !math.IsInf(s, 1) {
		p.scale = s
	}
	return p
}

// polylines samples every spline of n.
func polylines(n *network.Network, samples int) [][]geom.Vec3 {
	if samples < 1 {
		samples = 1
	}
	lines := make([][]geom.Vec3, 0, n.Len())
	for _, s := range n.Splines() {
		steps := s.SegmentCount() * samples
		line := make([]geom.Vec3, 0, steps+1)
		for i := 0; i <= steps; i++ {
			line = append(line, s.PointAt(float64(i)/float64(steps)))
		}
		lines = append(lines, line)
	}
	return lines
}

// Render draws n with opts.
func Render(n *network.Network, opts Options) *image.RGBA {
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}
	w, h := opts.Width*ss, opts.Height*ss
	big := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(big, big.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	if n != nil && n.Len() > 0 {
		lines := polylines(n, opts.Samples)
		var all []geom.Vec3
		for _, l := range lines {
			all = append(all, l...)
		}
		proj := fit(all, float64(w), float64(h), float64(opts.Padding*ss))

		r := vector.NewRasterizer(w, h)
		for _, l := range lines {
			for i := 1; i < len(l); i++ {
				segment(r, proj.apply(l[i-1]), proj.apply(l[i]), opts.LineWidth*float64(ss))
			}
		}
		fill(big, r, opts.Curve)

		plain := vector.NewRasterizer(w, h)
		joined := vector.NewRasterizer(w, h)
		size := opts.MarkerSize * float64(ss)
		for _, s := range n.Splines() {
			for _, p := range s.Points() {
				c := proj.apply(p.Anchor())
				if p.Junction() >= 0 {
					square(joined, c, size*1.5)
				} else {
					square(plain, c, size)
				}
			}
		}
		fill(big, plain, opts.Anchor)
		fill(big, joined, opts.Junction)
	}

	if ss == 1 {
		return big
	}
	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), draw.Src, nil)
	return out
}

// WritePNG renders n and encodes it as PNG.
func WritePNG(w io.Writer, n *network.Network, opts Options) error {
	if err := png.Encode(w, Render(n, opts)); err != nil {
		return fmt.Errorf("preview: encode: %w", err)
	}
	return nil
}

func fill(dst *image.RGBA, r *vector.Rasterizer, c color.Color) {
	r.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// segment adds a quad of the given width from a to b.
func segment(r *vector.Rasterizer, a, b point, width float64) {
	dx, dy := b.x-a.x, b.y-a.y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	r.MoveTo(float32(a.x+nx), float32(a.y+ny))
	r.LineTo(float32(b.x+nx), float32(b.y+ny))
	r.LineTo(float32(b.x-nx), float32(b.y-ny))
	r.LineTo(float32(a.x-nx), float32(a.y-ny))
	r.ClosePath()
}

func square(r *vector.Rasterizer, c point, size float64) {
	h := size / 2
	r.MoveTo(float32(c.x-h), float32(c.y-h))
	r.LineTo(float32(c.x+h), float32(c.y-h))
	r.LineTo(float32(c.x+h), float32(c.y+h))
	r.LineTo(float32(c.x-h), float32(c.y+h))
	r.ClosePath()
}
