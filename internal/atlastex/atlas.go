package atlastex

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sync"
)

// ErrAtlasFull is returned by Insert when the packer cannot fit the
// requested rectangle. Insert does not reset or grow the atlas itself;
// Overflow does that.
var ErrAtlasFull = errors.New("atlastex: atlas full")

// ErrNotReady is returned by Reset when the atlas is mid-drawing-session
// (spec §4.9: "Atlas reset requires Ready").
var ErrNotReady = errors.New("atlastex: reset requires the atlas to be in the Ready state")

// ShadingKind mirrors the root package's termatlas.ShadingKind numerically
// (same iota-free literal values) without importing it, since the root
// package imports this package and not the reverse.
type ShadingKind uint16

// ShadingDefault marks a quad that should not be drawn (whitespace glyphs,
// or a double-height half with zero extent).
const ShadingDefault ShadingKind = 0

// LineRendition mirrors termatlas.LineRendition's four variants in the
// same order, for the same import-direction reason as ShadingKind.
type LineRendition int

const (
	SingleWidth LineRendition = iota
	DoubleWidth
	DoubleHeightTop
	DoubleHeightBottom
)

// FontFaceID identifies a shaped font face for glyph-map keying.
type FontFaceID uint32

// GlyphEntry is one rasterized-and-packed glyph variant (spec §4.2's
// AtlasGlyphEntry).
type GlyphEntry struct {
	ShadingKind  ShadingKind
	OverlapSplit bool
	OffsetX      int16
	OffsetY      int16
	SizeX        uint16
	SizeY        uint16
	TexcoordX    uint16
	TexcoordY    uint16
}

// faceKey keys the per-face glyph map by (font face, line rendition): a
// double-width row's glyphs are cached separately from a single-width
// row's even for the same font face, since their rasterized scale and
// resulting packer rect differ.
type faceKey struct {
	face      FontFaceID
	rendition LineRendition
}

// minAreaPx/maxAreaPx bound the sizing formula (spec §4.2); min_area and
// max_area are left as constants here since the spec does not name host
// configuration for them.
const (
	minAreaPx = 256 * 256
	maxAreaPx = 16384 * 16384
)

// Atlas owns one texture-sized rectangle packer and the per-(font,
// line-rendition) glyph maps mapping glyph index to packed placement
// (spec §4.2). It does not own GPU texture memory itself — that is the
// graphics backend's job (internal/gfxbackend) — only the CPU-side
// bookkeeping of where each glyph variant lives.
type Atlas struct {
	mu sync.Mutex

	packer *Packer
	width  int
	height int
	ready  bool // true = Ready, false = Drawing (spec §4.9 atlas state machine)

	faces map[faceKey]map[uint32]GlyphEntry

	cellAreaPx int
}

// NewAtlas sizes and allocates a new Atlas for the given cell area in
// pixels (cell_width_px * cell_height_px), per the spec §4.2 sizing
// formula with a zero previous size.
func NewAtlas(cellAreaPx int) *Atlas {
	w, h := sizeFor(cellAreaPx, 0, 0)
	return &Atlas{
		packer:     NewPacker(w, h, 1),
		width:      w,
		height:     h,
		ready:      true,
		faces:      make(map[faceKey]map[uint32]GlyphEntry),
		cellAreaPx: cellAreaPx,
	}
}

// sizeFor implements the spec §4.2 sizing formula: target area
// a = clamp(max(cell_area*95, prev_w*prev_h*2), min_area, max_area);
// index = floor(log2(a-1)); u = 1<<((index+2)/2); v = 1<<((index+1)/2).
func sizeFor(cellAreaPx, prevWidth, prevHeight int) (int, int) {
	a := cellAreaPx * 95
	if prevArea := prevWidth * prevHeight * 2; prevArea > a {
		a = prevArea
	}
	if a < minAreaPx {
		a = minAreaPx
	}
	if a > maxAreaPx {
		a = maxAreaPx
	}
	index := 0
	if a > 1 {
		index = bits.Len(uint(a-1)) - 1
	}
	u := 1 << ((index + 2) / 2)
	v := 1 << ((index + 1) / 2)
	return u, v
}

// Dimensions returns the atlas texture's current (width, height) in
// pixels.
func (at *Atlas) Dimensions() (int, int) {
	at.mu.Lock()
	defer at.mu.Unlock()
	return at.width, at.height
}

// Find looks up a previously inserted glyph entry.
func (at *Atlas) Find(face FontFaceID, rendition LineRendition, glyphIndex uint32) (GlyphEntry, bool) {
	at.mu.Lock()
	defer at.mu.Unlock()
	m, ok := at.faces[faceKey{face, rendition}]
	if !ok {
		return GlyphEntry{}, false
	}
	e, ok := m[glyphIndex]
	return e, ok
}

// Insert reserves a widthPx x heightPx rectangle in the packer and
// records entry (with TexcoordX/Y filled in from the reservation) under
// (face, rendition, glyphIndex). Returns ErrAtlasFull if the packer has
// no room; the caller is expected to run the overflow protocol (Reset,
// retry once) per spec §4.2.
func (at *Atlas) Insert(face FontFaceID, rendition LineRendition, glyphIndex uint32, widthPx, heightPx int, entry GlyphEntry) (GlyphEntry, error) {
	at.mu.Lock()
	defer at.mu.Unlock()

	if widthPx <= 0 || heightPx <= 0 {
		entry.ShadingKind = ShadingDefault
		at.store(face, rendition, glyphIndex, entry)
		return entry, nil
	}

	region := at.packer.Allocate(widthPx, heightPx)
	if !region.IsValid() {
		return GlyphEntry{}, ErrAtlasFull
	}
	entry.TexcoordX = uint16(region.X)
	entry.TexcoordY = uint16(region.Y)
	entry.SizeX = uint16(widthPx)
	entry.SizeY = uint16(heightPx)
	at.store(face, rendition, glyphIndex, entry)
	return entry, nil
}

// StoreDerived records entry verbatim under (face, rendition, glyphIndex)
// without reserving new packer space, for a rendition entry whose pixels
// are a crop of an already-inserted entry at a different rendition (spec
// §4.2 double-height splitting derives top/bottom from one full
// rasterization rather than rasterizing and packing twice).
func (at *Atlas) StoreDerived(face FontFaceID, rendition LineRendition, glyphIndex uint32, entry GlyphEntry) {
	at.mu.Lock()
	defer at.mu.Unlock()
	at.store(face, rendition, glyphIndex, entry)
}

func (at *Atlas) store(face FontFaceID, rendition LineRendition, glyphIndex uint32, entry GlyphEntry) {
	key := faceKey{face, rendition}
	m, ok := at.faces[key]
	if !ok {
		m = make(map[uint32]GlyphEntry)
		at.faces[key] = m
	}
	m[glyphIndex] = entry
}

// BeginDrawing transitions Ready -> Drawing (spec §4.9), called when any
// glyph rasterization begins a 2D drawing session on the atlas texture.
func (at *Atlas) BeginDrawing() {
	at.mu.Lock()
	defer at.mu.Unlock()
	at.ready = false
}

// EndDrawing transitions Drawing -> Ready, required before the instance
// buffer is flushed to the GPU.
func (at *Atlas) EndDrawing() {
	at.mu.Lock()
	defer at.mu.Unlock()
	at.ready = true
}

// Reset clears all glyph maps and reinitializes the packer, growing the
// texture per the sizing formula using the current dimensions as the
// "previous" size (spec §4.2's Reset/Sizing). Requires the atlas be
// Ready; returns ErrNotReady otherwise (call EndDrawing first).
func (at *Atlas) Reset() error {
	at.mu.Lock()
	defer at.mu.Unlock()
	if !at.ready {
		return ErrNotReady
	}
	w, h := sizeFor(at.cellAreaPx, at.width, at.height)
	at.width, at.height = w, h
	at.packer.Reset(w, h)
	at.faces = make(map[faceKey]map[uint32]GlyphEntry)
	return nil
}

// Utilization returns the packer's current fill fraction, for diagnostic
// logging around atlas growth.
func (at *Atlas) Utilization() float64 {
	return at.packer.Utilization()
}

// ClampBoxSize converts a (left, top, right, bottom) float bounding box to
// an integer pixel size and top-left offset using the spec's ceil/floor convention
// (ceil(right)-floor(left), ceil(bottom)-floor(top)), used by callers
// computing the packer-rect size for a rasterized glyph (spec §4.7
// step 3).
func ClampBoxSize(left, top, right, bottom float64) (width, height int, offsetX, offsetY int32) {
	fl := math.Floor(left)
	ft := math.Floor(top)
	width = int(math.Ceil(right) - fl)
	height = int(math.Ceil(bottom) - ft)
	offsetX = int32(fl)
	offsetY = int32(ft)
	return
}

// SplitDoubleHeight produces the top and bottom atlas entries for a
// glyph rasterized full-height under a DoubleHeightTop/Bottom line
// rendition (spec §4.2 "Double-height splitting"). full is the entry
// produced by a normal single-height rasterization pass; baselinePx is
// the offset from the full rasterization's top edge to the row's
// baseline, used as the top/bottom clip boundary. A half with zero
// height gets ShadingKind = ShadingDefault so its quad is skipped.
func SplitDoubleHeight(full GlyphEntry, baselinePx int16) (top, bottom GlyphEntry) {
	top = full
	bottom = full

	splitAt := baselinePx - full.OffsetY
	if splitAt < 0 {
		splitAt = 0
	}
	if int(splitAt) > int(full.SizeY) {
		splitAt = int16(full.SizeY)
	}

	top.SizeY = uint16(splitAt)
	if top.SizeY == 0 {
		top.ShadingKind = ShadingDefault
	}

	bottom.OffsetY = full.OffsetY + splitAt
	bottom.TexcoordY = full.TexcoordY + uint16(splitAt)
	bottom.SizeY = full.SizeY - uint16(splitAt)
	if bottom.SizeY == 0 {
		bottom.ShadingKind = ShadingDefault
	}
	return top, bottom
}

// ComputeOverlapSplit implements the spec §4.7 step 6 predicate:
// overlap_split = size.x >= cellWidthPx*scaleX && (offset.x <=
// -cellWidthPx/2 || offset.x+size.x >= cellWidthPx+cellWidthPx/2).
// ligaturesEnabled false forces the result to always be false.
func ComputeOverlapSplit(sizeX uint16, offsetX int16, cellWidthPx int32, scaleX uint8, ligaturesEnabled bool) bool {
	if !ligaturesEnabled {
		return false
	}
	scaledCell := cellWidthPx * int32(scaleX)
	if int32(sizeX) < scaledCell {
		return false
	}
	left := int32(offsetX)
	right := left + int32(sizeX)
	return left <= -cellWidthPx/2 || right >= cellWidthPx+cellWidthPx/2
}

// Overflow runs the atlas overflow protocol (spec §4.2 "Overflow
// protocol"): the caller must have already ended any in-progress
// drawing session and flushed queued quads before calling Reset; this
// helper performs steps 3-4 (reset, then retry insert once). A second
// failure is returned wrapped with a "still does not fit" message; it is
// not converted to a deadlock error.
func (at *Atlas) Overflow(retry func() (GlyphEntry, error)) (GlyphEntry, error) {
	if err := at.Reset(); err != nil {
		return GlyphEntry{}, fmt.Errorf("atlastex: overflow reset: %w", err)
	}
	entry, err := retry()
	if err != nil {
		return GlyphEntry{}, fmt.Errorf("atlastex: glyph still does not fit after atlas reset: %w", err)
	}
	return entry, nil
}
