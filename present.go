package termatlas

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/termatlas/internal/atlastex"
	"github.com/gogpu/termatlas/internal/builtin"
	"github.com/gogpu/termatlas/internal/gfxbackend"
	"github.com/gogpu/termatlas/internal/raster2d"
	"github.com/gogpu/termatlas/internal/shapingsvc"
)

// selectionOverlayColor tints the selection-highlight quad (spec §4.5
// step 7); the text underneath keeps its own fg/bg, this is drawn on top
// with straight alpha so both remain legible.
var selectionOverlayColor = NewColor(0x3a, 0x6e, 0xa5, 0x80)

// Present assembles and submits the current frame (spec §4.5). It runs on
// the render thread and must never lock r.mu: the single-producer/single-
// consumer handoff (spec §5) guarantees RS/CB/AT/IS are stable between
// end_paint and the next start_paint.
func (r *Renderer) Present() error {
	if r.backend.DeviceLost() {
		r.releaseDeviceResources()
		return fmt.Errorf("termatlas: present: %w", gfxbackend.ErrDeviceLost)
	}

	if r.font.Metrics.CellArea() <= 0 {
		return nil // no font resolved yet; nothing to draw (spec §4.10)
	}

	r.ensureFontResources()
	if err := r.ensureCBTextures(); err != nil {
		return fmt.Errorf("termatlas: present: color bitmap upload: %w", err)
	}
	if err := r.ensureAtlasTexture(); err != nil {
		return fmt.Errorf("termatlas: present: atlas texture: %w", err)
	}
	if err := r.ensureSwapChain(); err != nil {
		return fmt.Errorf("termatlas: present: swap chain: %w", err)
	}

	r.instances.Reset()

	cellW, cellH := r.font.Metrics.CellWidthPx, r.font.Metrics.CellHeightPx

	r.emitBackground()
	cursorRects := r.emitCursorBackground()

	for i := 0; i < r.rows.Len(); i++ {
		r.emitRowGlyphs(i, r.rows.Row(i), cellW, cellH)
	}

	r.emitGridLines(cellW, cellH)
	r.emitSelectionQuads(cellW, cellH)
	r.emitCursorForeground(cursorRects)

	raw := encodeInstances(r.instances.Instances())
	if err := r.backend.UploadInstances(raw); err != nil {
		return fmt.Errorf("termatlas: present: upload instances: %w", err)
	}

	dirty := image.Rectangle{}
	if d := r.publishedDirtyRect; !d.Empty() {
		dirty = image.Rect(int(d.MinX), int(d.MinY), int(d.MaxX), int(d.MaxY))
	}
	if err := r.backend.Present(dirty); err != nil {
		if errors.Is(err, gfxbackend.ErrDeviceLost) {
			r.releaseDeviceResources()
		}
		return fmt.Errorf("termatlas: present: %w", err)
	}
	if w := r.backend.Waiter(); w != nil {
		w.Wait()
	}
	return nil
}

// ensureFontResources tracks the settings generations font-dependent GPU
// resources were last built from (spec §4.5 step 1); the atlas texture
// itself is resized lazily by ensureAtlasTexture whenever update_font
// swaps in a freshly-sized *atlastex.Atlas.
func (r *Renderer) ensureFontResources() {
	r.lastFontGeneration = r.font.Generation
	r.lastTargetGeneration = r.target.Generation
	r.lastMiscGeneration = r.misc.Generation
}

// ensureAtlasTexture (re)creates the atlas texture and its CPU-side
// staging surface whenever the atlas's pixel dimensions differ from what
// was last uploaded (covers both the initial allocation and every
// Overflow-triggered regrowth, spec §4.2/§4.5 step 2).
func (r *Renderer) ensureAtlasTexture() error {
	w, h := r.atlas.Dimensions()
	if r.atlasTex != nil && r.atlasW == w && r.atlasH == h {
		return nil
	}
	if r.atlasTex != nil {
		r.atlasTex.Release()
	}
	tex, err := r.backend.CreateTexture(gfxbackend.TextureConfig{
		Width: w, Height: h, Format: gfxbackend.TextureFormatRGBA8,
		Label: "termatlas-atlas", Dynamic: true,
	})
	if err != nil {
		return err
	}
	r.atlasTex = tex
	r.atlasSurf = raster2d.NewSurface(w, h)
	r.atlasW, r.atlasH = w, h
	return nil
}

// ensureSwapChain (re)sizes the backend's swap chain whenever the
// viewport's pixel dimensions change, so the backend's Present has a
// correctly-sized render target to draw the frame's quads into (spec
// §4.5 step 1; the software reference backend's compositor in particular
// depends on the swap chain matching the viewport's pixel size exactly
// to map CB-texel coordinates back to screen pixels).
func (r *Renderer) ensureSwapChain() error {
	w := int(r.target.ViewportCols) * int(r.font.Metrics.CellWidthPx)
	h := int(r.target.ViewportRows) * int(r.font.Metrics.CellHeightPx)
	if w <= 0 || h <= 0 || (w == r.swapChainW && h == r.swapChainH) {
		return nil
	}
	if err := r.backend.ResizeSwapChain(w, h); err != nil {
		return err
	}
	r.swapChainW, r.swapChainH = w, h
	return nil
}

// ensureCBTextures uploads the background/foreground color tiles whenever
// their generation counters moved since the last frame, or (re)allocates
// both textures when the viewport's cell dimensions changed (spec §4.5
// step 2).
func (r *Renderer) ensureCBTextures() error {
	w, h := r.cb.Stride(), r.cb.Rows()

	if r.cbBackgroundTex == nil || r.cbBackgroundTex.Width() != w || r.cbBackgroundTex.Height() != h {
		if r.cbBackgroundTex != nil {
			r.cbBackgroundTex.Release()
		}
		tex, err := r.backend.CreateTexture(gfxbackend.TextureConfig{Width: w, Height: h, Format: gfxbackend.TextureFormatRGBA8, Label: "termatlas-cb-background", Dynamic: true})
		if err != nil {
			return err
		}
		r.cbBackgroundTex = tex
		r.lastBackgroundGen = r.cb.BackgroundGeneration() - 1
	}
	if r.cb.BackgroundGeneration() != r.lastBackgroundGen {
		if err := r.cbBackgroundTex.Upload(cbImage(r.cb, true)); err != nil {
			return err
		}
		r.lastBackgroundGen = r.cb.BackgroundGeneration()
	}

	if r.cbForegroundTex == nil || r.cbForegroundTex.Width() != w || r.cbForegroundTex.Height() != h {
		if r.cbForegroundTex != nil {
			r.cbForegroundTex.Release()
		}
		tex, err := r.backend.CreateTexture(gfxbackend.TextureConfig{Width: w, Height: h, Format: gfxbackend.TextureFormatRGBA8, Label: "termatlas-cb-foreground", Dynamic: true})
		if err != nil {
			return err
		}
		r.cbForegroundTex = tex
		r.lastForegroundGen = r.cb.ForegroundGeneration() - 1
	}
	if r.cb.ForegroundGeneration() != r.lastForegroundGen {
		if err := r.cbForegroundTex.Upload(cbImage(r.cb, false)); err != nil {
			return err
		}
		r.lastForegroundGen = r.cb.ForegroundGeneration()
	}
	return nil
}

// cbImage packs one ColorBitmap tile into an image.RGBA byte layout for
// upload. The background tile is premultiplied, the foreground tile is
// straight alpha (see ColorBitmap's doc comment) — image.RGBA is used
// here purely as a convenient four-byte-per-pixel container for the
// upload, not for its usual premultiplied-alpha semantics.
func cbImage(cb *ColorBitmap, background bool) *image.RGBA {
	w, h := cb.Stride(), cb.Rows()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		var row []Color
		if background {
			row = cb.BackgroundRow(y)
		} else {
			row = cb.ForegroundRow(y)
		}
		for x := 0; x < w; x++ {
			c := row[x]
			o := img.PixOffset(x, y)
			img.Pix[o+0] = c.R()
			img.Pix[o+1] = c.G()
			img.Pix[o+2] = c.B()
			img.Pix[o+3] = c.A()
		}
	}
	return img
}

// releaseDeviceResources drops every render-thread-owned GPU handle after
// a detected device loss, so the next Present call rebuilds them from
// scratch against the recreated backend (spec §4.10).
func (r *Renderer) releaseDeviceResources() {
	if r.atlasTex != nil {
		r.atlasTex.Release()
		r.atlasTex = nil
	}
	r.atlasSurf = nil
	r.atlasW, r.atlasH = 0, 0
	if r.cbBackgroundTex != nil {
		r.cbBackgroundTex.Release()
		r.cbBackgroundTex = nil
	}
	if r.cbForegroundTex != nil {
		r.cbForegroundTex.Release()
		r.cbForegroundTex = nil
	}
	r.lastBackgroundGen = 0
	r.lastForegroundGen = 0
	r.swapChainW, r.swapChainH = 0, 0
}

// emitBackground appends the single full-viewport background quad; the
// pixel shader samples the background CB texture per-cell rather than
// this quad carrying a solid color (spec §4.5 step 3).
func (r *Renderer) emitBackground() {
	w := int32(r.target.ViewportCols) * r.font.Metrics.CellWidthPx
	h := int32(r.target.ViewportRows) * r.font.Metrics.CellHeightPx
	if w <= 0 || h <= 0 {
		return
	}
	r.instances.Append(QuadInstance{
		ShadingKind: ShadingBackground,
		RenditionScaleX: 1, RenditionScaleY: 1,
		SizeX: uint16(w), SizeY: uint16(h),
	})
}

// emitRowGlyphs walks one row's FontRuns left to right, resolving each
// glyph's atlas entry (rasterizing on cache miss) and appending its quad,
// splitting any entry the atlas flagged overlap_split across the cells it
// spans (spec §4.5 steps 4-5, §4.7, §4.8).
func (r *Renderer) emitRowGlyphs(rowIdx int, row *ShapedRow, cellW, cellH int32) {
	scaleX, scaleY := row.LineRendition.RenditionScale()
	rendition := atlastex.LineRendition(row.LineRendition)
	rowTop := int32(rowIdx) * cellH
	penX := float32(0)

	for _, run := range row.Runs {
		var atlasFace atlastex.FontFaceID
		var handle shapingsvc.FontFaceHandle
		if run.FontFaceHandle != 0 {
			handle = shapingsvc.FontFaceHandle(run.FontFaceHandle)
			atlasFace = r.faceIDFor(handle)
		}

		for gi := run.GlyphFrom; gi < run.GlyphTo; gi++ {
			advance := row.GlyphAdvances[gi]
			idx := row.GlyphIndices[gi]
			originX := penX + row.GlyphOffsetsX[gi]
			originY := row.GlyphOffsetsY[gi]
			penX += advance

			var codepoint rune
			if atlasFace == 0 {
				codepoint = rune(idx)
			}

			entry, ok := r.resolveGlyphEntry(atlasFace, handle, rendition, idx, codepoint)
			if !ok || entry.ShadingKind == atlastex.ShadingDefault {
				continue
			}

			qidx := r.instances.Append(QuadInstance{
				ShadingKind:     ShadingKind(entry.ShadingKind),
				RenditionScaleX: scaleX,
				RenditionScaleY: scaleY,
				PositionX:       int16(originX) + entry.OffsetX,
				PositionY:       int16(rowTop+int32(originY)) + entry.OffsetY,
				SizeX:           entry.SizeX,
				SizeY:           entry.SizeY,
				TexcoordX:       entry.TexcoordX,
				TexcoordY:       entry.TexcoordY,
				Color:           row.Colors[gi],
			})
			if entry.OverlapSplit {
				r.splitOverlapQuad(qidx, rowIdx, 0, cellW, scaleX)
			}
		}
	}
}

// resolveGlyphEntry returns the cached atlas entry for (atlasFace,
// rendition, idx), rasterizing and inserting it on a cache miss. Double-
// height renditions are derived by cropping a single-height rasterization
// rather than rasterizing twice (spec §4.2, §4.7).
func (r *Renderer) resolveGlyphEntry(atlasFace atlastex.FontFaceID, handle shapingsvc.FontFaceHandle, rendition atlastex.LineRendition, idx uint16, codepoint rune) (atlastex.GlyphEntry, bool) {
	if e, ok := r.atlas.Find(atlasFace, rendition, uint32(idx)); ok {
		return e, true
	}

	if rendition != atlastex.DoubleHeightTop && rendition != atlastex.DoubleHeightBottom {
		entry, ok := r.rasterizeAndInsert(atlasFace, handle, rendition, idx, codepoint)
		return entry, ok
	}

	full, ok := r.rasterizeAndInsert(atlasFace, handle, atlastex.SingleWidth, idx, codepoint)
	if !ok {
		return atlastex.GlyphEntry{}, false
	}
	top, bottom := atlastex.SplitDoubleHeight(full, int16(r.font.Metrics.BaselinePx))
	half := top
	if rendition == atlastex.DoubleHeightBottom {
		half = bottom
	}
	r.atlas.StoreDerived(atlasFace, rendition, uint32(idx), half)
	return half, true
}

// rasterizeAndInsert reserves atlas space for (atlasFace, rendition, idx)
// and draws its pixels, running the atlas overflow protocol (spec §4.2)
// once if the packer is full.
func (r *Renderer) rasterizeAndInsert(atlasFace atlastex.FontFaceID, handle shapingsvc.FontFaceHandle, rendition atlastex.LineRendition, idx uint16, codepoint rune) (atlastex.GlyphEntry, bool) {
	entry, err := r.rasterizeInto(atlasFace, handle, rendition, idx, codepoint)
	if errors.Is(err, atlastex.ErrAtlasFull) {
		entry, err = r.atlas.Overflow(func() (atlastex.GlyphEntry, error) {
			return r.rasterizeInto(atlasFace, handle, rendition, idx, codepoint)
		})
	}
	if err != nil {
		Logger().Warn("present: glyph rasterization dropped", "glyph", idx, "error", err)
		return atlastex.GlyphEntry{}, false
	}
	return entry, true
}

// rasterizeInto dispatches a cache-miss glyph to the built-in generator,
// the soft-font decoder, or the shaping service's outline rasterizer,
// reserves its atlas rectangle, and draws it into the CPU-side atlas
// mirror (spec §4.7).
func (r *Renderer) rasterizeInto(atlasFace atlastex.FontFaceID, handle shapingsvc.FontFaceHandle, rendition atlastex.LineRendition, idx uint16, codepoint rune) (atlastex.GlyphEntry, error) {
	switch {
	case atlasFace == 0 && builtin.IsBuiltinGlyph(codepoint):
		return r.rasterizeBuiltin(atlasFace, rendition, idx, codepoint, false)
	case atlasFace == 0 && builtin.IsSoftFontChar(codepoint):
		return r.rasterizeBuiltin(atlasFace, rendition, idx, codepoint, true)
	default:
		return r.rasterizeFontGlyph(atlasFace, handle, rendition, idx)
	}
}

var glyphWhite = raster2d.Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func (r *Renderer) rasterizeBuiltin(atlasFace atlastex.FontFaceID, rendition atlastex.LineRendition, idx uint16, codepoint rune, softFont bool) (atlastex.GlyphEntry, error) {
	cellW, cellH := r.font.Metrics.CellWidthPx, r.font.Metrics.CellHeightPx
	entry, err := r.atlas.Insert(atlasFace, rendition, uint32(idx), int(cellW), int(cellH), atlastex.GlyphEntry{
		ShadingKind: atlastex.ShadingKind(ShadingTextBuiltinGlyph),
	})
	if err != nil {
		return atlastex.GlyphEntry{}, err
	}
	if err := r.ensureAtlasTexture(); err != nil {
		return atlastex.GlyphEntry{}, err
	}

	dst := raster2d.Rect{
		MinX: int32(entry.TexcoordX), MinY: int32(entry.TexcoordY),
		MaxX: int32(entry.TexcoordX) + int32(entry.SizeX), MaxY: int32(entry.TexcoordY) + int32(entry.SizeY),
	}
	if softFont {
		builtin.DrawSoftFont(r.atlasSurf, dst, codepoint, glyphWhite, r.misc.AntialiasingMode == AntialiasingAliased)
	} else {
		builtin.Draw(r.atlasSurf, dst, codepoint, glyphWhite)
	}
	return entry, nil
}

func (r *Renderer) rasterizeFontGlyph(atlasFace atlastex.FontFaceID, handle shapingsvc.FontFaceHandle, rendition atlastex.LineRendition, idx uint16) (atlastex.GlyphEntry, error) {
	raster := r.shaping.RasterizeGlyph(handle, shapingsvc.GlyphID(idx), r.font.SizePx)
	if raster == nil || raster.Mask == nil {
		return r.atlas.Insert(atlasFace, rendition, uint32(idx), 0, 0, atlastex.GlyphEntry{})
	}

	b := raster.Mask.Bounds()
	overlapSplit := atlastex.ComputeOverlapSplit(uint16(b.Dx()), int16(raster.OffsetX), r.font.Metrics.CellWidthPx, 1, r.opts.ligaturesEnabled)
	entry, err := r.atlas.Insert(atlasFace, rendition, uint32(idx), b.Dx(), b.Dy(), atlastex.GlyphEntry{
		ShadingKind:  atlastex.ShadingKind(r.textShadingKind(handle, shapingsvc.GlyphID(idx))),
		OverlapSplit: overlapSplit,
		OffsetX:      int16(raster.OffsetX),
		OffsetY:      int16(raster.OffsetY),
	})
	if err != nil {
		return atlastex.GlyphEntry{}, err
	}
	if err := r.ensureAtlasTexture(); err != nil {
		return atlastex.GlyphEntry{}, err
	}

	dst := raster2d.Rect{
		MinX: int32(entry.TexcoordX), MinY: int32(entry.TexcoordY),
		MaxX: int32(entry.TexcoordX) + int32(entry.SizeX), MaxY: int32(entry.TexcoordY) + int32(entry.SizeY),
	}
	r.atlasSurf.DrawAlphaMask(dst, raster.Mask)
	return entry, nil
}

// textShadingKind picks the monochrome AA shading (per the configured
// antialiasing mode) unless the glyph carries color sub-runs, in which
// case it is marked for passthrough handling (spec §4.7 color glyphs).
// The rasterizer above only produces a coverage mask, so a color glyph's
// true per-pixel color is not yet captured — it still draws as a
// monochrome silhouette, a known simplification (see DESIGN.md).
func (r *Renderer) textShadingKind(handle shapingsvc.FontFaceHandle, gid shapingsvc.GlyphID) ShadingKind {
	if subs := r.shaping.TranslateColorGlyphRun(handle, gid); len(subs) > 0 {
		return ShadingTextPassthrough
	}
	if r.misc.AntialiasingMode == AntialiasingClearType {
		return ShadingTextClearType
	}
	return ShadingTextGrayscale
}

// emitSelectionQuads appends one quad per contiguous selection column
// span per row, extending the prior row's quad in place when an identical
// span continues onto an adjacent row (spec §4.5 step 7).
func (r *Renderer) emitSelectionQuads(cellW, cellH int32) {
	openIdx := -1
	openFrom, openTo := 0, 0

	for rowIdx := 0; rowIdx < r.rows.Len(); rowIdx++ {
		row := r.rows.Row(rowIdx)
		from, to := row.SelectionFromCol, row.SelectionToCol
		if from >= to {
			openIdx = -1
			continue
		}
		if openIdx >= 0 && from == openFrom && to == openTo {
			q := r.instances.At(openIdx)
			q.SizeY += uint16(cellH)
			r.instances.Set(openIdx, q)
			continue
		}
		idx := r.instances.Append(QuadInstance{
			ShadingKind:     ShadingSelection,
			RenditionScaleX: 1, RenditionScaleY: 1,
			PositionX: int16(int32(from) * cellW),
			PositionY: int16(int32(rowIdx) * cellH),
			SizeX:     uint16(int32(to-from) * cellW),
			SizeY:     uint16(cellH),
			Color:     selectionOverlayColor,
		})
		openIdx, openFrom, openTo = idx, from, to
	}
}

// encodeInstances packs the instance slice into the little-endian byte
// layout the graphics backend's discard-map upload expects.
func encodeInstances(instances []QuadInstance) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(instances) * 20)
	if err := binary.Write(buf, binary.LittleEndian, instances); err != nil {
		Logger().Warn("present: instance buffer encoding failed", "error", err)
	}
	return buf.Bytes()
}
