// Package raster2d implements the 2D drawing surface the Built-in Glyph
// Generator and glyph rasterization draw into: an image.RGBA-backed pixel
// buffer with begin/end-style session bookkeeping (the atlas's "Ready ->
// Drawing" state, spec §4.9), adapted from the teacher's Pixmap.
package raster2d

import (
	"image"
	"image/color"
	"image/draw"
)

// Color is a straight-alpha 8-bit RGBA color used while rasterizing into
// a Surface. It is distinct from the root package's packed termatlas.Color
// since this package must not import the root package (avoids an import
// cycle: root imports internal/raster2d, not the reverse).
type Color struct {
	R, G, B, A uint8
}

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int32
}

// Rect is an axis-aligned pixel rectangle, mirroring the root package's
// Rect for the same reason Color does.
type Rect struct {
	MinX, MinY, MaxX, MaxY int32
}

// Width returns MaxX - MinX.
func (r Rect) Width() int32 { return r.MaxX - r.MinX }

// Height returns MaxY - MinY.
func (r Rect) Height() int32 { return r.MaxY - r.MinY }

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool { return r.MinX >= r.MaxX || r.MinY >= r.MaxY }

// Surface is a rectangular pixel buffer backed by image.RGBA, used as the
// atlas texture's CPU-side staging surface and as BGG's draw target.
type Surface struct {
	img      *image.RGBA
	drawing  bool
}

// NewSurface allocates a Surface of the given pixel dimensions.
func NewSurface(width, height int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Image returns the backing image.RGBA for upload to the graphics backend.
func (s *Surface) Image() *image.RGBA { return s.img }

// Width returns the surface's pixel width.
func (s *Surface) Width() int { return s.img.Rect.Dx() }

// Height returns the surface's pixel height.
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// BeginDraw starts a drawing session, mirroring the atlas's Ready->Drawing
// transition (spec §4.9): a 2D drawing session on the atlas texture.
// Calling BeginDraw while already drawing is a caller bug and panics, the
// same way the teacher's session-guarded APIs do for misuse rather than
// silently tolerating it.
func (s *Surface) BeginDraw() {
	if s.drawing {
		panic("raster2d: BeginDraw called while a drawing session is already open")
	}
	s.drawing = true
}

// EndDraw ends the current drawing session (`_d2d_end_drawing()`,
// spec §4.9), required before the instance buffer is flushed.
func (s *Surface) EndDraw() {
	s.drawing = false
}

// IsDrawing reports whether a drawing session is currently open.
func (s *Surface) IsDrawing() bool { return s.drawing }

// Clear fills the whole surface with c.
func (s *Surface) Clear(c Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(toNRGBA(c)), image.Point{}, draw.Src)
}

// FillRect fills rect (clamped to the surface bounds) with the solid
// color c, matching the GB-consumed "geometry fill" primitive (spec §6).
func (s *Surface) FillRect(rect Rect, c Color) {
	clamped := rect.Intersect(Rect{MaxX: int32(s.Width()), MaxY: int32(s.Height())})
	if clamped.Empty() {
		return
	}
	img := image.Rect(int(clamped.MinX), int(clamped.MinY), int(clamped.MaxX), int(clamped.MaxY))
	draw.Draw(s.img, img, image.NewUniform(toNRGBA(c)), image.Point{}, draw.Over)
}

// Intersect returns the overlapping region of r and o.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		MinX: maxI32(r.MinX, o.MinX),
		MinY: maxI32(r.MinY, o.MinY),
		MaxX: minI32(r.MaxX, o.MaxX),
		MaxY: minI32(r.MaxY, o.MaxY),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// FillTriangle fills the triangle p0,p1,p2 with a solid color using a
// simple scanline rasterizer (adequate for the handful of Powerline/
// box-drawing glyphs BGG draws; not a general path rasterizer).
func (s *Surface) FillTriangle(p0, p1, p2 Point, c Color) {
	minY := minI32(p0.Y, minI32(p1.Y, p2.Y))
	maxY := maxI32(p0.Y, maxI32(p1.Y, p2.Y))
	if minY < 0 {
		minY = 0
	}
	if maxY > int32(s.Height()) {
		maxY = int32(s.Height())
	}
	for y := minY; y < maxY; y++ {
		xs := make([]int32, 0, 2)
		for _, edge := range [][2]Point{{p0, p1}, {p1, p2}, {p2, p0}} {
			a, b := edge[0], edge[1]
			if a.Y == b.Y {
				continue
			}
			if (y >= a.Y && y < b.Y) || (y >= b.Y && y < a.Y) {
				t := float64(y-a.Y) / float64(b.Y-a.Y)
				xs = append(xs, a.X+int32(t*float64(b.X-a.X)))
			}
		}
		if len(xs) < 2 {
			continue
		}
		x0, x1 := xs[0], xs[1]
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		s.FillRect(Rect{MinX: x0, MinY: y, MaxX: x1 + 1, MaxY: y + 1}, c)
	}
}

// WorldBounds computes the tight non-transparent pixel bounding box within
// rect, used as a CPU-rasterized-glyph substitute for SS's
// get_glyph_run_world_bounds when BGG/soft-font glyphs need a black box.
func (s *Surface) WorldBounds(rect Rect) Rect {
	clamped := rect.Intersect(Rect{MaxX: int32(s.Width()), MaxY: int32(s.Height())})
	if clamped.Empty() {
		return Rect{}
	}
	minX, minY := clamped.MaxX, clamped.MaxY
	maxX, maxY := clamped.MinX, clamped.MinY
	for y := clamped.MinY; y < clamped.MaxY; y++ {
		for x := clamped.MinX; x < clamped.MaxX; x++ {
			_, _, _, a := s.img.At(int(x), int(y)).RGBA()
			if a == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x+1 > maxX {
				maxX = x + 1
			}
			if y+1 > maxY {
				maxY = y + 1
			}
		}
	}
	if minX >= maxX || minY >= maxY {
		return Rect{}
	}
	return Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// CopyInto blits src (already rasterized at its own size) into this
// surface at dst's top-left, clipped to dst's extent — used to place a
// glyph rasterized into a scratch Surface into its reserved atlas rect.
func (s *Surface) CopyInto(dst Rect, src *Surface) {
	if dst.Empty() {
		return
	}
	r := image.Rect(int(dst.MinX), int(dst.MinY), int(dst.MinX)+src.Width(), int(dst.MinY)+src.Height())
	r = r.Intersect(image.Rect(int(dst.MinX), int(dst.MinY), int(dst.MaxX), int(dst.MaxY)))
	draw.Draw(s.img, r, src.img, image.Point{}, draw.Over)
}

// DrawAlphaMask blits mask (a coverage-only alpha image) into the
// surface at dst's top-left corner, treating its alpha as coverage over
// solid white — the atlas's stored form for a monochrome rasterized
// glyph, which the pixel shader later tints per-instance by the glyph's
// foreground color (spec §4.7 step 4: "draw the monochrome glyph with a
// white brush").
func (s *Surface) DrawAlphaMask(dst Rect, mask *image.Alpha) {
	if dst.Empty() {
		return
	}
	b := mask.Bounds()
	r := image.Rect(int(dst.MinX), int(dst.MinY), int(dst.MinX)+b.Dx(), int(dst.MinY)+b.Dy())
	draw.DrawMask(s.img, r, image.NewUniform(color.White), image.Point{}, mask, b.Min, draw.Over)
}

func toNRGBA(c Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
