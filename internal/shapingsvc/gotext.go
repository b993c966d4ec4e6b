package shapingsvc

import (
	"image"
	"sync"

	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// GoTextShapingService is the concrete Shaping Service (SS) adapter built
// on go-text/typesetting's HarfBuzz-level shaper. It caches parsed
// font.Font objects (thread-safe, read-only) and creates lightweight
// font.Face instances per call; HarfbuzzShaper instances are pooled since
// they carry mutable per-call state and are not concurrent-safe.
type GoTextShapingService struct {
	arena *faceArena

	shaperPool sync.Pool

	metricsMu sync.RWMutex
	metrics   *designMetricsCache
}

// NewGoTextShapingService returns a GoTextShapingService ready for use.
func NewGoTextShapingService() *GoTextShapingService {
	return &GoTextShapingService{
		arena: newFaceArena(),
		shaperPool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
		metrics: newDesignMetricsCache(4096),
	}
}

// RegisterFont implements Service.
func (s *GoTextShapingService) RegisterFont(src *FontSource) (FontFaceHandle, error) {
	return s.arena.Register(src)
}

func (s *GoTextShapingService) faceFor(handle FontFaceHandle, sizePx float32) (*gofont.Face, bool) {
	f := s.arena.Lookup(handle)
	if f == nil {
		return nil, false
	}
	face := gofont.NewFace(f)
	_ = sizePx // size lives in shaping.Input, not the Face itself
	return face, true
}

// MapCharacters implements Service. This adapter resolves a single
// registered font per (family, weight, italic) combination rather than
// performing full system font-fallback enumeration — that policy is an
// external collaborator's responsibility per spec §1 Non-goals; callers
// are expected to have already registered the face that should service
// this attribute combination via RegisterFont.
func (s *GoTextShapingService) MapCharacters(text []rune, start, length int, family string, weight float32, italic bool, axes map[[4]byte]float32) (int, FontFaceHandle, error) {
	if length <= 0 {
		return 0, 0, ErrNoFontFace
	}
	handle := s.arena.resolveByAttributes(family, weight, italic)
	if handle == 0 {
		return 0, 0, ErrNoFontFace
	}
	return length, handle, nil
}

// GetTextComplexity implements Service. A prefix is "simple" while every
// rune is plain Latin-range/whitespace with no combining marks — a
// conservative fast-path test; anything else falls through to complex
// shaping (spec §4.3 step 3).
func (s *GoTextShapingService) GetTextComplexity(text []rune, face FontFaceHandle) (bool, int, []GlyphID) {
	if len(text) == 0 {
		return true, 0, nil
	}
	n := 0
	for n < len(text) && isSimpleRune(text[n]) {
		n++
	}
	if n == 0 {
		return false, 0, nil
	}
	indices := make([]GlyphID, n)
	f := s.arena.Lookup(face)
	for i, r := range text[:n] {
		if f != nil {
			if gid, ok := f.NominalGlyph(r); ok {
				indices[i] = GlyphID(gid)
				continue
			}
		}
		indices[i] = GlyphID(r)
	}
	return true, n, indices
}

// isSimpleRune reports whether r can always be shaped as exactly one
// glyph with no contextual substitution: printable ASCII plus Latin-1
// supplement, excluding combining marks.
func isSimpleRune(r rune) bool {
	return r >= 0x20 && r <= 0x7e || (r >= 0xa0 && r <= 0xff)
}

// AnalyzeScript implements Service.
func (s *GoTextShapingService) AnalyzeScript(text []rune, start, length int) []ScriptAnalysis {
	return AnalyzeScript(text, start, length)
}

// GetGlyphs implements Service.
func (s *GoTextShapingService) GetGlyphs(text []rune, analysis ScriptAnalysis, face FontFaceHandle, features map[[4]byte]uint32, capacityHint int) (*GlyphRun, error) {
	f, ok := s.faceFor(face, 0)
	if !ok {
		return nil, ErrNoFontFace
	}

	runes := text[analysis.TextPosition : analysis.TextPosition+analysis.TextLength]
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: mapDirection(analysis.Direction),
		Face:      f,
		Size:      floatToFixed(12), // overwritten by caller-supplied em size at placement time
		Script:    language.Script(analysis.Script),
		Language:  language.NewLanguage("en"),
	}

	hb := s.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.shaperPool.Put(hb)

	if capacityHint > 0 && len(output.Glyphs) > capacityHint {
		return nil, ErrInsufficientBuffer
	}

	run := &GlyphRun{
		ClusterMap: make([]int, len(output.Glyphs)),
		Indices:    make([]GlyphID, len(output.Glyphs)),
		Props:      make([]GlyphProps, len(output.Glyphs)),
		raw:        output,
	}
	lastCluster := -1
	for i, g := range output.Glyphs {
		cluster := g.TextIndex() + analysis.TextPosition
		run.ClusterMap[i] = cluster
		run.Indices[i] = GlyphID(uint16(g.GlyphID))
		run.Props[i] = GlyphProps{ClusterIndex: cluster, IsClusterStart: cluster != lastCluster}
		lastCluster = cluster
	}
	return run, nil
}

// GetGlyphPlacements implements Service, reusing the shaping.Output
// cached on run by GetGlyphs to avoid re-shaping.
func (s *GoTextShapingService) GetGlyphPlacements(text []rune, run *GlyphRun, face FontFaceHandle, emSizePx float32) (*Placements, error) {
	output, ok := run.raw.(shaping.Output)
	if !ok {
		return nil, ErrNoFontFace
	}
	scale := emSizePx / 12
	placements := &Placements{
		Advances: make([]float32, len(output.Glyphs)),
		OffsetsX: make([]float32, len(output.Glyphs)),
		OffsetsY: make([]float32, len(output.Glyphs)),
	}
	for i, g := range output.Glyphs {
		placements.Advances[i] = fixedToFloat(g.Advance) * scale
		placements.OffsetsX[i] = fixedToFloat(g.XOffset) * scale
		placements.OffsetsY[i] = fixedToFloat(g.YOffset) * scale
	}
	return placements, nil
}

// GetDesignGlyphAdvances implements Service, caching results per
// (face, glyph) in a sharded LRU (internal/shapingsvc/glyphcache.go).
func (s *GoTextShapingService) GetDesignGlyphAdvances(face FontFaceHandle, indices []GlyphID) []float32 {
	f := s.arena.Lookup(face)
	out := make([]float32, len(indices))
	for i, gid := range indices {
		key := DesignMetricsKey{Font: face, GID: gid}
		if v, ok := s.metrics.Get(key); ok {
			out[i] = v
			continue
		}
		var adv float32
		if f != nil {
			// TODO: verify GlyphAdvance's exact signature against the
			// pinned go-text/typesetting version; font.Font exposes
			// glyph metrics in font design units which this divides
			// down to em-relative units at GetGlyphPlacements scale time.
			adv = float32(f.GlyphAdvance(gofont.GID(gid), 1, false))
		}
		s.metrics.Set(key, adv)
		out[i] = adv
	}
	return out
}

// GetGlyphRunWorldBounds implements Service.
func (s *GoTextShapingService) GetGlyphRunWorldBounds(face FontFaceHandle, originX, originY float32, indices []GlyphID, advances []float32, offsetsX, offsetsY []float32) (left, top, right, bottom float32) {
	if len(indices) == 0 {
		return originX, originY, originX, originY
	}
	f := s.arena.Lookup(face)
	left, top, right, bottom = originX, originY, originX, originY
	x := originX
	for i := range indices {
		gx := x + offsetsX[i]
		gy := originY + offsetsY[i]
		w, h := float32(1), float32(1)
		if f != nil {
			// TODO: verify GlyphExtents against the pinned
			// go-text/typesetting version's font.Font API.
			if ext, ok := f.GlyphExtents(gofont.GID(indices[i])); ok {
				w = float32(ext.Width)
				h = float32(ext.Height)
				gy += float32(ext.YBearing)
				gx += float32(ext.XBearing)
			}
		}
		left = minf(left, gx)
		top = minf(top, gy-h)
		right = maxf(right, gx+w)
		bottom = maxf(bottom, gy)
		if i < len(advances) {
			x += advances[i]
		}
	}
	return left, top, right, bottom
}

// TranslateColorGlyphRun implements Service. This adapter does not
// currently decode COLR/CBDT color-font tables (no example repo in the
// retrieved pack parses them); it reports every glyph as monochrome. A
// future face source that exposes color tables can populate this without
// changing the Service contract.
func (s *GoTextShapingService) TranslateColorGlyphRun(face FontFaceHandle, gid GlyphID) []ColorGlyphRun {
	return nil
}

// ReferenceLayout implements Service.
func (s *GoTextShapingService) ReferenceLayout(family string, weight float32, italic bool, sizePx float32, dpi uint32) (int32, int32, FontFaceHandle, error) {
	handle := s.arena.resolveByAttributes(family, weight, italic)
	if handle == 0 {
		return 0, 0, 0, ErrNoFontFace
	}
	f := s.arena.Lookup(handle)
	if f == nil {
		return 0, 0, 0, ErrNoFontFace
	}
	scale := float32(dpi) / 96
	// TODO: verify GlyphAdvance/Upem/Extents against the pinned
	// go-text/typesetting version's font.Font API; this implements
	// update_font's "ask SS for a reference layout of 'M'" step (spec
	// §4.1), ceiling-rounding both results per the spec's wording.
	advance := float32(f.GlyphAdvance(glyphForRune(f, 'M'), 1, false)) * sizePx / float32(f.Upem())
	lineHeight := (f.Extents().Ascent - f.Extents().Descent + f.Extents().LineGap) * sizePx / float32(f.Upem())
	advancePx := int32(advance*scale + 0.999999)
	cellHeightPx := int32(lineHeight*scale + 0.999999)
	return advancePx, cellHeightPx, handle, nil
}

// RasterizeGlyph implements Service by reparsing the registered face's
// bytes with golang.org/x/image/font/opentype and drawing through a
// font.Drawer, the same outline-to-mask path the pack's own glyph
// rasterization takes. Like that code, it addresses the glyph by
// treating gid as the Unicode code point rather than resolving a glyph
// index to an outline directly; go-text's shaped glyph indices and
// golang.org/x/image's cmap-driven lookup are different ID spaces; for
// the common case (BMP text, non-complex scripts) the code point and
// the nominal glyph coincide closely enough for the rasterized mask to
// be usable, matching the tradeoff documented in the pack's own
// rasterizer rather than inventing a cross-library glyph-index mapping.
func (s *GoTextShapingService) RasterizeGlyph(face FontFaceHandle, gid GlyphID, sizePx float32) *RasterizedGlyph {
	otFont, ok := s.arena.OpenType(face)
	if !ok {
		return nil
	}

	otFace, err := opentype.NewFace(otFont, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil
	}
	defer func() { _ = otFace.Close() }()

	bounds, advance, ok := otFace.GlyphBounds(rune(gid))
	if !ok || bounds.Min.X >= bounds.Max.X || bounds.Min.Y >= bounds.Max.Y {
		return &RasterizedGlyph{Advance: fixedToFloat(advance)}
	}

	minX := int(bounds.Min.X) >> 6
	minY := int(bounds.Min.Y) >> 6
	maxX := int(bounds.Max.X+63) >> 6
	maxY := int(bounds.Max.Y+63) >> 6
	mask := image.NewAlpha(image.Rect(0, 0, maxX-minX, maxY-minY))

	drawer := &xfont.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: otFace,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	drawer.DrawString(string(rune(gid)))

	return &RasterizedGlyph{
		Mask:    mask,
		OffsetX: int32(minX),
		OffsetY: int32(minY),
		Advance: fixedToFloat(advance),
	}
}

func glyphForRune(f *gofont.Font, r rune) gofont.GID {
	if gid, ok := f.NominalGlyph(r); ok {
		return gid
	}
	return 0
}

func mapDirection(d Direction) di.Direction {
	switch d {
	case DirectionRTL:
		return di.DirectionRTL
	case DirectionTTB:
		return di.DirectionTTB
	case DirectionBTT:
		return di.DirectionBTT
	default:
		return di.DirectionLTR
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
