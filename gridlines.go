package termatlas

// emitGridLines appends one solid/dotted/dashed/curly quad per active
// decoration bit in each row's GridLineRange list, two for a double
// underline (spec §4.5 step 6).
func (r *Renderer) emitGridLines(cellW, cellH int32) {
	metrics := r.font.Metrics
	thickness := metrics.ThinLineWidthPx
	if thickness < 1 {
		thickness = 1
	}

	for rowIdx := 0; rowIdx < r.rows.Len(); rowIdx++ {
		row := r.rows.Row(rowIdx)
		scaleX, scaleY := row.LineRendition.RenditionScale()
		rowTop := int32(rowIdx) * cellH

		for _, g := range row.GridLines {
			left := int32(g.ColFrom) * cellW * int32(scaleX)
			right := int32(g.ColTo) * cellW * int32(scaleX)
			if right <= left {
				continue
			}
			width := uint16(right - left)
			rowHeight := cellH * int32(scaleY)

			hbar := func(y int32, color Color, kind ShadingKind) {
				r.instances.Append(QuadInstance{
					ShadingKind: kind, RenditionScaleX: 1, RenditionScaleY: 1,
					PositionX: int16(left), PositionY: int16(y),
					SizeX: width, SizeY: uint16(thickness), Color: color,
				})
			}
			vbar := func(x int32, color Color) {
				r.instances.Append(QuadInstance{
					ShadingKind: ShadingSolidLine, RenditionScaleX: 1, RenditionScaleY: 1,
					PositionX: int16(x), PositionY: int16(rowTop),
					SizeX: uint16(thickness), SizeY: uint16(rowHeight), Color: color,
				})
			}

			if g.Mask&GridLineTop != 0 {
				hbar(rowTop, g.GridlineColor, ShadingSolidLine)
			}
			if g.Mask&GridLineBottom != 0 {
				hbar(rowTop+rowHeight-thickness, g.GridlineColor, ShadingSolidLine)
			}
			if g.Mask&GridLineLeft != 0 {
				vbar(left, g.GridlineColor)
			}
			if g.Mask&GridLineRight != 0 {
				vbar(right-thickness, g.GridlineColor)
			}
			if g.Mask&GridLineUnderline != 0 {
				hbar(rowTop+metrics.UnderlinePosPx, g.UnderlineColor, ShadingSolidLine)
			}
			if g.Mask&GridLineDoubleUnderline != 0 {
				hbar(rowTop+metrics.DoubleUnderlinePosPx[0], g.UnderlineColor, ShadingSolidLine)
				hbar(rowTop+metrics.DoubleUnderlinePosPx[1], g.UnderlineColor, ShadingSolidLine)
			}
			if g.Mask&GridLineStrikethrough != 0 {
				hbar(rowTop+metrics.StrikethroughPosPx, g.GridlineColor, ShadingSolidLine)
			}
			if g.Mask&GridLineCurly != 0 {
				hbar(rowTop+metrics.UnderlinePosPx, g.UnderlineColor, ShadingCurlyLine)
			}
			if g.Mask&GridLineDashed != 0 {
				hbar(rowTop+metrics.UnderlinePosPx, g.UnderlineColor, ShadingDashedLine)
			}
			if g.Mask&GridLineDotted != 0 {
				hbar(rowTop+metrics.UnderlinePosPx, g.UnderlineColor, ShadingDottedLine)
			}
			if g.Mask&GridLineHyperlink != 0 {
				hbar(rowTop+metrics.UnderlinePosPx, g.UnderlineColor, ShadingDottedLine)
			}
		}
	}
}
