package shapingsvc

// Service is the Shaping Service (SS) capability consumed by the core,
// turned into a Go interface from spec §6's call list. Implementations
// must be safe for sequential use from the producer thread only — the
// core never calls SS concurrently with itself.
type Service interface {
	// MapCharacters maps the longest possible prefix of
	// text[start:start+length] to a single font face under the requested
	// family/weight/style/axes, returning how many runes were consumed
	// and the resolved face. Returns ErrNoFontFace if no face covers even
	// the first rune.
	MapCharacters(text []rune, start, length int, family string, weight float32, italic bool, axes map[[4]byte]float32) (mappedLength int, face FontFaceHandle, err error)

	// GetTextComplexity classifies a prefix of text as "simple" (one
	// glyph per code unit, no reordering or substitution needed) or not,
	// returning how many runes the simple classification covers.
	GetTextComplexity(text []rune, face FontFaceHandle) (isSimple bool, length int, indices []GlyphID)

	// AnalyzeScript returns script-analysis runs over text[start:start+length].
	AnalyzeScript(text []rune, start, length int) []ScriptAnalysis

	// GetGlyphs shapes text[analysis.TextPosition:][:analysis.TextLength]
	// with the given face/features into a glyph run. Returns
	// ErrInsufficientBuffer if the caller-supplied capacity hint was too
	// small; the caller grows its scratch buffers by 1.5x (capped at 8
	// retries) and calls again.
	GetGlyphs(text []rune, analysis ScriptAnalysis, face FontFaceHandle, features map[[4]byte]uint32, capacityHint int) (*GlyphRun, error)

	// GetGlyphPlacements computes advances and offsets (pixels) for a
	// previously-shaped GlyphRun at the given em size.
	GetGlyphPlacements(text []rune, run *GlyphRun, face FontFaceHandle, emSizePx float32) (*Placements, error)

	// GetDesignGlyphAdvances returns font-design-unit advances (unscaled
	// by size) for each glyph index, used by black-box bounds estimation.
	GetDesignGlyphAdvances(face FontFaceHandle, indices []GlyphID) []float32

	// GetGlyphRunWorldBounds returns the tight world-space bounding box
	// (left, top, right, bottom) of a shaped glyph run, the glyph run's
	// "black box" (spec §4.7 step 1).
	GetGlyphRunWorldBounds(face FontFaceHandle, originX, originY float32, indices []GlyphID, advances []float32, offsetsX, offsetsY []float32) (left, top, right, bottom float32)

	// TranslateColorGlyphRun returns the color sub-runs of a glyph if it
	// is a color-font glyph (COLR/CBDT/SVG), or nil if it is monochrome.
	TranslateColorGlyphRun(face FontFaceHandle, gid GlyphID) []ColorGlyphRun

	// ReferenceLayout returns the advance width and recommended cell
	// height (already DPI-scaled, ceiling-rounded) for character 'M'
	// under the given family/weight/style at dpi, used by update_font.
	ReferenceLayout(family string, weight float32, italic bool, sizePx float32, dpi uint32) (advanceWidthPx, cellHeightPx int32, face FontFaceHandle, err error)

	// RegisterFont parses and registers raw font data, returning a stable
	// handle for later MapCharacters/ReferenceLayout face resolution.
	RegisterFont(src *FontSource) (FontFaceHandle, error)

	// RasterizeGlyph rasterizes a single glyph to an alpha coverage mask
	// at the given pixel em size, for AT's glyph-cache-miss path
	// (spec §4.7 steps 3-5). Returns nil if the face is unknown or the
	// glyph has no drawable outline.
	RasterizeGlyph(face FontFaceHandle, gid GlyphID, sizePx float32) *RasterizedGlyph
}
