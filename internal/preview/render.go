// Package preview rasterizes parcel features into a small WebP thumbnail.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/woozymasta/lotexport/internal/export"
	"github.com/woozymasta/lotexport/internal/geo"

	"github.com/chai2010/webp"
	"github.com/paulmach/orb"
	"golang.org/x/image/vector"
)

// MIMEType of Render output.
const MIMEType = "image/webp"

// Options sets the canvas.
type Options struct {
	Width      int
	Height     int
	Padding    int
	Background string
}

func (o Options) normalize() Options {
	if o.Width <= 0 {
		o.Width = 512
	}
	if o.Height <= 0 {
		o.Height = 512
	}
	if o.Padding < 0 || 2*o.Padding >= min(o.Width, o.Height) {
		o.Padding = 0
	}
	if o.Background == "" {
		o.Background = "#FFFFFF"
	}
	return o
}

// Render draws every polygon of features, fitted into the canvas, and
// returns a lossless WebP image.
func Render(features []geo.Feature, style export.Style, opts Options) ([]byte, error) {
	img := Rasterize(features, style, opts)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}

	return buf.Bytes(), nil
}

// Rasterize is Render without the encoding step.
func Rasterize(features []geo.Feature, style export.Style, opts Options) *image.RGBA {
	opts = opts.normalize()

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	bg := image.NewUniform(export.NRGBA(opts.Background, 1))
	draw.Draw(img, img.Bounds(), bg, image.Point{}, draw.Src)

	bounds := geo.ComputeBounds(features)
	if bounds.Empty() {
		return img
	}

	p := newProjection(bounds.Bound(), opts)
	fill := image.NewUniform(export.NRGBA(style.FillColor, style.FillOpacity))
	outline := image.NewUniform(export.NRGBA(style.OutlineColor, 1))
	z := vector.NewRasterizer(opts.Width, opts.Height)

	for _, f := range features {
		for _, part := range geo.ExtractParts(f.Geometry) {
			// opposite windings let the rasterizer cut holes
			z.Reset(opts.Width, opts.Height)
			p.ring(z, geo.Orient(part.Outer, orb.CCW))
			for _, hole := range part.Holes {
				p.ring(z, geo.Orient(hole, orb.CW))
			}
			z.Draw(img, img.Bounds(), fill, image.Point{})

			if style.OutlineWidth <= 0 {
				continue
			}
			z.Reset(opts.Width, opts.Height)
			for _, ring := range part.Rings() {
				p.stroke(z, ring, float32(style.OutlineWidth))
			}
			z.Draw(img, img.Bounds(), outline, image.Point{})
		}
	}

	return img
}

// projection maps lon/lat onto canvas pixels with an equirectangular
// projection scaled at the middle latitude.
type projection struct {
	bound orb.Bound
	kx    float64
	scale float64
	offX  float64
	offY  float64
}

func newProjection(b orb.Bound, opts Options) projection {
	kx := math.Cos((b.Min.Lat() + b.Max.Lat()) / 2 * math.Pi / 180)
	spanX := (b.Max.Lon() - b.Min.Lon()) * kx
	spanY := b.Max.Lat() - b.Min.Lat()

	innerW := float64(opts.Width - 2*opts.Padding)
	innerH := float64(opts.Height - 2*opts.Padding)

	scale := math.Inf(1)
	if spanX > 0 {
		scale = math.Min(scale, innerW/spanX)
	}
	if spanY > 0 {
		scale = math.Min(scale, innerH/spanY)
	}
	if math.IsInf(scale, 1) {
		scale = 0
	}

	return projection{
		bound: b,
		kx:    kx,
		scale: scale,
		offX:  float64(opts.Padding) + (innerW-spanX*scale)/2,
		offY:  float64(opts.Padding) + (innerH-spanY*scale)/2,
	}
}

func (p projection) point(pt orb.Point) (float32, float32) {
	x := p.offX + (pt.Lon()-p.bound.Min.Lon())*p.kx*p.scale
	y := p.offY + (p.bound.Max.Lat()-pt.Lat())*p.scale
	return float32(x), float32(y)
}

func (p projection) ring(z *vector.Rasterizer, ring geo.Ring) {
	if len(ring) < 3 {
		return
	}
	for i, pt := range ring {
		x, y := p.point(pt)
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
}

// stroke adds one square-capped quad per ring segment.
func (p projection) stroke(z *vector.Rasterizer, ring geo.Ring, width float32) {
	ring = geo.CloseRing(ring)
	hw := float64(width) / 2

	for i := 1; i < len(ring); i++ {
		ax, ay := p.point(ring[i-1])
		bx, by := p.point(ring[i])

		dx, dy := float64(bx-ax), float64(by-ay)
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		dx, dy = dx/l*hw, dy/l*hw
		nx, ny := -dy, dx

		x0, y0 := float64(ax)-dx, float64(ay)-dy
		x1, y1 := float64(bx)+dx, float64(by)+dy

		z.MoveTo(float32(x0+nx), float32(y0+ny))
		z.LineTo(float32(x1+nx), float32(y1+ny))
		z.LineTo(float32(x1-nx), float32(y1-ny))
		z.LineTo(float32(x0-nx), float32(y0-ny))
		z.ClosePath()
	}
}
