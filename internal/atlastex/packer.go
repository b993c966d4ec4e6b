package atlastex

import "sync"

// Region is an allocated rectangular area within the packer's bounds.
type Region struct {
	X, Y, Width, Height int
}

// IsValid reports whether the region has positive dimensions.
func (r Region) IsValid() bool { return r.Width > 0 && r.Height > 0 }

// shelf is one horizontal shelf in the shelf-packing algorithm: the
// packer divides the atlas into shelves, placing each new glyph rect on
// whichever open shelf wastes the least vertical space, or opening a new
// shelf below when none fits (spec §4.2).
type shelf struct {
	y      int
	height int
	nextX  int
}

// Packer implements best-fit shelf packing over a fixed-size rectangular
// area, reserving glyph rectangles for the Atlas's packed texture (spec
// §4.2). Glyph rects packed here come from every LineRendition the atlas
// caches (SingleWidth, DoubleWidth, and the top/bottom halves of a
// DoubleHeightTop/Bottom split) sharing one Packer per Atlas, so shelf
// heights vary far more than in a uniform sprite atlas: a first-fit shelf
// choice would let a handful of tall entries (box-drawing glyphs, wide
// emoji) waste height on every short shelf opened after them. Allocate
// instead scans all open shelves and places the rect on whichever fits
// with the least wasted height, only opening a new shelf when none does.
//
// Packer is safe for concurrent use; it has its own mutex independent of
// the Atlas that owns it.
type Packer struct {
	mu sync.Mutex

	width, height int
	shelves       []*shelf
	padding       int

	allocCount int
	usedArea   int
}

// NewPacker returns a Packer covering a width x height area with padding
// pixels of separation between packed glyph rects. padding is floored at
// 1: unlike a generic 2D sprite packer, the atlas texture is sampled with
// bilinear/subpixel filtering per glyph quad, so a zero-pixel gap between
// adjacent glyph bitmaps would bleed neighboring glyphs' edge texels into
// each other at render time.
func NewPacker(width, height, padding int) *Packer {
	if padding < 1 {
		padding = 1
	}
	return &Packer{width: width, height: height, padding: padding}
}

// Allocate reserves a width x height glyph rect, returning an invalid
// Region if it does not fit anywhere in the packer's bounds.
func (p *Packer) Allocate(width, height int) Region {
	p.mu.Lock()
	defer p.mu.Unlock()

	if width <= 0 || height <= 0 {
		return Region{}
	}
	paddedW, paddedH := width+p.padding, height+p.padding
	if paddedW > p.width || paddedH > p.height {
		return Region{}
	}

	if idx, ok := p.bestShelfFor(paddedW, paddedH); ok {
		return p.allocateOnShelf(idx, width, height, paddedW)
	}
	return p.allocateNewShelf(width, height, paddedW, paddedH)
}

// bestShelfFor scans every open shelf that can fit a paddedW x paddedH
// rect and returns the index of the one that wastes the least vertical
// space (paddedH closest to the shelf's existing height), or ok=false if
// none fit.
func (p *Packer) bestShelfFor(paddedW, paddedH int) (idx int, ok bool) {
	bestWaste := -1
	for i, s := range p.shelves {
		if !p.fitsOnShelf(s, paddedW, paddedH) {
			continue
		}
		waste := s.height - paddedH
		if waste < 0 {
			waste = 0
		}
		if bestWaste == -1 || waste < bestWaste {
			bestWaste = waste
			idx = i
			ok = true
		}
	}
	return idx, ok
}

func (p *Packer) fitsOnShelf(s *shelf, paddedW, paddedH int) bool {
	if s.nextX+paddedW > p.width {
		return false
	}
	if paddedH > s.height && s.nextX > 0 {
		return false
	}
	return true
}

func (p *Packer) allocateOnShelf(idx, width, height, paddedW int) Region {
	s := p.shelves[idx]
	region := Region{X: s.nextX, Y: s.y, Width: width, Height: height}
	s.nextX += paddedW
	if height+p.padding > s.height {
		s.height = height + p.padding
	}
	p.allocCount++
	p.usedArea += width * height
	return region
}

func (p *Packer) allocateNewShelf(width, height, paddedW, paddedH int) Region {
	newY := 0
	if n := len(p.shelves); n > 0 {
		last := p.shelves[n-1]
		newY = last.y + last.height
	}
	if newY+paddedH > p.height {
		return Region{}
	}
	s := &shelf{y: newY, height: paddedH, nextX: paddedW}
	p.shelves = append(p.shelves, s)
	p.allocCount++
	p.usedArea += width * height
	return Region{X: 0, Y: newY, Width: width, Height: height}
}

// Reset clears all allocations, making the entire area available again,
// optionally resizing the packer's bounds (width/height <= 0 keeps the
// current bounds). Every shelf is discarded rather than preserved across
// growth since the atlas's Reset always invalidates every cached glyph
// entry alongside it (spec §4.2 "Overflow protocol").
func (p *Packer) Reset(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if width > 0 {
		p.width = width
	}
	if height > 0 {
		p.height = height
	}
	p.shelves = p.shelves[:0]
	p.allocCount = 0
	p.usedArea = 0
}

// Utilization returns the fraction of area used (0.0 to 1.0).
func (p *Packer) Utilization() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := p.width * p.height
	if total == 0 {
		return 0
	}
	return float64(p.usedArea) / float64(total)
}

// Dimensions returns the packer's current (width, height).
func (p *Packer) Dimensions() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}
