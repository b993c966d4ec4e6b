// Package shapingsvc implements the Shaping Service (SS) capability
// consumed by the core (spec §6): text-complexity classification, font
// fallback mapping, script analysis, and glyph index/advance/offset
// computation for a (font, text, feature set) tuple.
package shapingsvc

import (
	"image"

	"golang.org/x/image/math/fixed"
)

// unknownStr is the string returned for unknown enum values.
const unknownStr = "Unknown"

// GlyphID identifies a glyph within a font face.
type GlyphID uint16

// FontFaceHandle identifies a resolved font face. The zero value is never
// returned by MapCharacters on success; callers treat it as "no face".
type FontFaceHandle uint32

// Direction mirrors go-text/typesetting's di.Direction for the subset the
// core cares about.
type Direction int

const (
	DirectionLTR Direction = iota
	DirectionRTL
	DirectionTTB
	DirectionBTT
)

// IsVertical reports whether the direction advances along the Y axis.
func (d Direction) IsVertical() bool {
	return d == DirectionTTB || d == DirectionBTT
}

// ScriptAnalysis is one (text_position, text_length, script) run returned
// by AnalyzeScript.
type ScriptAnalysis struct {
	TextPosition int
	TextLength   int
	Script       string
	Direction    Direction
}

// GlyphProps carries the per-glyph shaping metadata GetGlyphs returns
// alongside indices, consumed by GetGlyphPlacements.
type GlyphProps struct {
	ClusterIndex int
	IsClusterStart bool
}

// GlyphRun is the result of GetGlyphs: a shaped run with its cluster map.
type GlyphRun struct {
	ClusterMap []int // ClusterMap[i] = source code-unit index of glyph i
	Indices    []GlyphID
	Props      []GlyphProps

	// raw holds the underlying shaper output (a shaping.Output) so a
	// subsequent GetGlyphPlacements call can read advances/offsets
	// without re-shaping. Opaque outside this package.
	raw any
}

// Placements is the result of GetGlyphPlacements.
type Placements struct {
	Advances []float32 // pixels
	OffsetsX []float32
	OffsetsY []float32
}

// ColorGlyphRun is one sub-run (bitmap, SVG, or outline) of a color-font
// glyph, as returned by TranslateColorGlyphRun.
type ColorGlyphRun struct {
	GlyphID  GlyphID
	IsBitmap bool
	Color    uint32 // 0 when the sub-run carries its own per-pixel color
}

// RasterizedGlyph is the alpha-mask result of RasterizeGlyph: a
// monochrome coverage mask plus the pixel offset of its top-left corner
// relative to the glyph origin (the pen position on the baseline).
type RasterizedGlyph struct {
	Mask    *image.Alpha
	OffsetX int32
	OffsetY int32
	Advance float32
}

func floatToFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
