package termatlas

import (
	"errors"

	"github.com/gogpu/termatlas/internal/builtin"
	"github.com/gogpu/termatlas/internal/shapingsvc"
)

// maxGlyphBufferRetries bounds the InsufficientBuffer growth loop in
// complexShape (spec §4.3 step 4: "capped at 8 retries").
const maxGlyphBufferRetries = 8

// isCustomGlyph reports whether r is drawn by the Built-in Glyph
// Generator or the soft-font decoder rather than shaped by SS (spec
// §4.3 segmentation predicate).
func isCustomGlyph(r rune) bool {
	return builtin.IsBuiltinGlyph(r) || builtin.IsSoftFontChar(r)
}

// flushBufferLineLocked implements flush_buffer_line (spec §4.3):
// segments the scratch buffer_line into maximal custom/regular runs and
// maps each into the active row's glyph/run vectors. Callers must hold
// r.mu.
func (r *Renderer) flushBufferLineLocked() {
	if !r.bufferLine.hasRow {
		return
	}
	defer r.bufferLine.reset()

	text := r.bufferLine.text
	row := r.rows.Row(r.bufferLine.row)

	n := len(text)
	i := 0
	for i < n {
		custom := isCustomGlyph(text[i])
		j := i + 1
		for j < n && isCustomGlyph(text[j]) == custom {
			j++
		}
		if custom {
			r.mapBuiltinGlyphs(row, text[i:j], r.bufferLine.cols[i:j+1])
		} else {
			r.mapRegularText(row, text[i:j], r.bufferLine.cols[i:j+1])
		}
		i = j
	}
}

// mapBuiltinGlyphs emits one glyph per code unit using the code unit
// value as the glyph index, a fixed advance equal to cell_width_px
// scaled by line rendition, zero offset, and the foreground color read
// at the starting column of each code unit (spec §4.3 _map_builtin_glyphs).
func (r *Renderer) mapBuiltinGlyphs(row *ShapedRow, text []rune, cols []int) {
	scaleX, _ := row.LineRendition.RenditionScale()
	advance := float32(r.font.Metrics.CellWidthPx) * float32(scaleX)
	from := row.glyphCount()
	for i, ru := range text {
		col := cols[i]
		color := r.cb.Foreground(r.bufferLine.row, col)
		row.appendGlyph(uint16(ru), advance, 0, 0, color)
	}
	row.appendRun(0, from, row.glyphCount())
}

// mapRegularText implements _map_regular_text (spec §4.3): repeatedly
// asks SS to map the next maximal prefix to a font face, then shapes
// that prefix via the complexity fast path or the complex shaper.
func (r *Renderer) mapRegularText(row *ShapedRow, text []rune, cols []int) {
	pos := 0
	for pos < len(text) {
		mappedLen, face, err := r.shaping.MapCharacters(text, pos, len(text)-pos, r.font.FamilyName, r.resolvedWeight(), r.resolvedItalic(), toAxisMap(r.font.FontAxisValues))
		if err != nil || mappedLen == 0 {
			r.mapReplacementCharacter(row, cols[pos])
			pos++
			continue
		}
		r.shapeMappedRun(row, text[pos:pos+mappedLen], cols[pos:pos+mappedLen+1], face)
		pos += mappedLen
	}
}

// resolvedWeight/resolvedItalic report the base font attributes from the
// currently-active per-attribute axis combination (spec's base_weight/
// base_style inputs to map_characters come from the line's current
// attributes; absent a richer attribute-to-axis plumbing surface, the
// renderer uses the regular (non-bold, non-italic) slot, matching
// update_font's "current weight" default).
func (r *Renderer) resolvedWeight() float32 { return r.font.WeightDesired }
func (r *Renderer) resolvedItalic() bool    { return r.font.StyleDesired == "Italic" }

func toAxisMap(m map[FontTag]float32) map[[4]byte]float32 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[[4]byte]float32, len(m))
	for k, v := range m {
		out[[4]byte(k)] = v
	}
	return out
}

func toFeatureMap(m map[FontTag]uint32) map[[4]byte]uint32 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[[4]byte]uint32, len(m))
	for k, v := range m {
		out[[4]byte(k)] = v
	}
	return out
}

// mapReplacementCharacter draws U+FFFD when SS cannot map even the
// first rune of a regular-text run (spec §4.3 step 1, §4.10).
func (r *Renderer) mapReplacementCharacter(row *ShapedRow, col int) {
	mappedLen, face, err := r.shaping.MapCharacters([]rune{0xfffd}, 0, 1, r.font.FamilyName, r.resolvedWeight(), r.resolvedItalic(), nil)
	if err != nil || mappedLen == 0 {
		r.logWarn("flush_buffer_line: replacement character has no font face, dropping glyph")
		return
	}
	scaleX, _ := row.LineRendition.RenditionScale()
	advance := float32(r.font.Metrics.CellWidthPx) * float32(scaleX)
	color := r.cb.Foreground(r.bufferLine.row, col)
	from := row.glyphCount()
	row.appendGlyph(uint16(0xfffd), advance, 0, 0, color)
	row.appendRun(uint32(face), from, row.glyphCount())
}

// shapeMappedRun shapes a run of text already mapped to one font face,
// taking the complexity fast path per code unit where possible and
// falling back to the complex shaper otherwise (spec §4.3 steps 3-6).
func (r *Renderer) shapeMappedRun(row *ShapedRow, text []rune, cols []int, face shapingsvc.FontFaceHandle) {
	if len(r.font.FontFeatures) == 0 {
		isSimple, simpleLen, indices := r.shaping.GetTextComplexity(text, face)
		if isSimple && simpleLen > 0 {
			from := row.glyphCount()
			for i := 0; i < simpleLen; i++ {
				advance := float32(cols[i+1]-cols[i]) * float32(r.font.Metrics.CellWidthPx)
				color := r.cb.Foreground(r.bufferLine.row, cols[i])
				row.appendGlyph(uint16(indices[i]), advance, 0, 0, color)
			}
			row.appendRun(uint32(face), from, row.glyphCount())
			if simpleLen < len(text) {
				r.complexShape(row, text[simpleLen:], cols[simpleLen:], face)
			}
			return
		}
	}
	r.complexShape(row, text, cols, face)
}

// complexShape runs script analysis then SS's full shaping pipeline for
// each script run, redistributing rounding error onto each cluster's
// last glyph so clusters occupy exactly their cell span (spec §4.3
// step 4).
func (r *Renderer) complexShape(row *ShapedRow, text []rune, cols []int, face shapingsvc.FontFaceHandle) {
	analyses := r.shaping.AnalyzeScript(text, 0, len(text))
	features := toFeatureMap(r.font.FontFeatures)

	for _, analysis := range analyses {
		capacity := analysis.TextLength
		var run *shapingsvc.GlyphRun
		for attempt := 0; attempt < maxGlyphBufferRetries; attempt++ {
			got, err := r.shaping.GetGlyphs(text, analysis, face, features, capacity)
			if err == nil {
				run = got
				break
			}
			if !errors.Is(err, shapingsvc.ErrInsufficientBuffer) {
				r.logWarn("flush_buffer_line: shaping failed", "error", err)
				return
			}
			capacity = capacity * 3 / 2
		}
		if run == nil {
			r.logWarn("flush_buffer_line: shaping exhausted retries, dropping run")
			continue
		}

		placements, err := r.shaping.GetGlyphPlacements(text, run, face, r.font.SizePx)
		if err != nil {
			r.logWarn("flush_buffer_line: glyph placement failed", "error", err)
			continue
		}

		r.appendComplexRun(row, run, placements, cols[analysis.TextPosition:analysis.TextPosition+analysis.TextLength+1], face)
	}
}

// appendComplexRun assigns each output glyph the color of its cluster's
// first code unit, distributes per-cluster advance rounding error onto
// the cluster's last glyph, and appends the result to row (spec §4.3
// step 4-6).
func (r *Renderer) appendComplexRun(row *ShapedRow, run *shapingsvc.GlyphRun, placements *shapingsvc.Placements, cols []int, face shapingsvc.FontFaceHandle) {
	from := row.glyphCount()
	n := len(run.Indices)

	clusterStart := 0
	for clusterStart < n {
		clusterEnd := clusterStart + 1
		cluster := run.ClusterMap[clusterStart]
		for clusterEnd < n && run.ClusterMap[clusterEnd] == cluster {
			clusterEnd++
		}

		expected := float32(0)
		if cluster+1 < len(cols) {
			expected = float32(cols[cluster+1]-cols[cluster]) * float32(r.font.Metrics.CellWidthPx)
		}
		sum := float32(0)
		for i := clusterStart; i < clusterEnd; i++ {
			sum += placements.Advances[i]
		}
		diff := expected - sum

		color := r.cb.Foreground(r.bufferLine.row, cols[cluster])
		for i := clusterStart; i < clusterEnd; i++ {
			advance := placements.Advances[i]
			if i == clusterEnd-1 {
				advance += diff
			}
			row.appendGlyph(uint16(run.Indices[i]), advance, placements.OffsetsX[i], placements.OffsetsY[i], color)
		}
		clusterStart = clusterEnd
	}
	row.appendRun(uint32(face), from, row.glyphCount())
}
