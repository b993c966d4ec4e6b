package termatlas

// ShadingKind selects which pixel-shader path a QuadInstance is drawn
// with. TextDrawingFirst..TextDrawingLast names a contiguous sub-range so
// the present layer can test "is this a text quad" with one comparison
// when locating the text block during cursor cutout processing (4.5
// step 8, 4.8).
type ShadingKind uint16

const (
	// ShadingDefault marks a quad that should not be drawn at all
	// (whitespace glyphs resolve to this).
	ShadingDefault ShadingKind = 0
	// ShadingBackground is the single full-viewport background quad.
	ShadingBackground ShadingKind = 1

	// ShadingTextGrayscale draws a monochrome glyph, regular AA.
	ShadingTextGrayscale ShadingKind = 2
	// ShadingTextClearType draws a monochrome glyph, subpixel AA
	// (requires dual-source blending).
	ShadingTextClearType ShadingKind = 3
	// ShadingTextPassthrough draws a pre-colored glyph run (color emoji).
	ShadingTextPassthrough ShadingKind = 4
	// ShadingTextBuiltinGlyph draws a procedurally-generated glyph (BGG).
	ShadingTextBuiltinGlyph ShadingKind = 5

	// ShadingSolidLine draws a solid gridline/underline/strikethrough run.
	ShadingSolidLine ShadingKind = 6
	// ShadingDottedLine draws a dotted decoration run.
	ShadingDottedLine ShadingKind = 7
	// ShadingDashedLine draws a dashed decoration run.
	ShadingDashedLine ShadingKind = 8
	// ShadingCurlyLine draws a curly-underline decoration run.
	ShadingCurlyLine ShadingKind = 9
	// ShadingCursor draws a cursor background rectangle.
	ShadingCursor ShadingKind = 10
	// ShadingSelection draws a selection-highlight rectangle.
	ShadingSelection ShadingKind = 11

	// TextDrawingFirst is the first shading kind in the contiguous
	// text-drawing sub-range, used by the present layer to test
	// membership with one comparison.
	TextDrawingFirst = ShadingTextGrayscale
	// TextDrawingLast is the last shading kind in the contiguous
	// text-drawing sub-range.
	TextDrawingLast = ShadingTextBuiltinGlyph
)

// IsTextDrawing reports whether k falls in [TextDrawingFirst, TextDrawingLast].
func (k ShadingKind) IsTextDrawing() bool {
	return k >= TextDrawingFirst && k <= TextDrawingLast
}

// String returns the string representation of the shading kind.
func (k ShadingKind) String() string {
	switch k {
	case ShadingDefault:
		return "Default"
	case ShadingBackground:
		return "Background"
	case ShadingTextGrayscale:
		return "TextGrayscale"
	case ShadingTextClearType:
		return "TextClearType"
	case ShadingTextPassthrough:
		return "TextPassthrough"
	case ShadingTextBuiltinGlyph:
		return "TextBuiltinGlyph"
	case ShadingSolidLine:
		return "SolidLine"
	case ShadingDottedLine:
		return "DottedLine"
	case ShadingDashedLine:
		return "DashedLine"
	case ShadingCurlyLine:
		return "CurlyLine"
	case ShadingCursor:
		return "Cursor"
	case ShadingSelection:
		return "Selection"
	default:
		return unknownStr
	}
}

// QuadInstance is one rectangle submitted to the GPU instanced draw call.
// Positions may be negative (e.g. a glyph whose ink extends left of its
// advance origin); sizes are non-negative.
type QuadInstance struct {
	ShadingKind     ShadingKind
	RenditionScaleX uint8
	RenditionScaleY uint8
	PositionX       int16
	PositionY       int16
	SizeX           uint16
	SizeY           uint16
	TexcoordX       uint16
	TexcoordY       uint16
	Color           Color
}

// Rect returns (PositionX, PositionY) as a Rect's top-left corner
// combined with (SizeX, SizeY).
func (q QuadInstance) Rect() Rect {
	return Rect{
		MinX: int32(q.PositionX),
		MinY: int32(q.PositionY),
		MaxX: int32(q.PositionX) + int32(q.SizeX),
		MaxY: int32(q.PositionY) + int32(q.SizeY),
	}
}

// InstanceBuffer is a geometrically-growing array of QuadInstance values,
// cleared (length reset to 0) at the end of each frame while retaining
// its capacity (spec §3 Lifecycle).
type InstanceBuffer struct {
	instances []QuadInstance
}

// NewInstanceBuffer returns an InstanceBuffer with the given initial
// capacity hint.
func NewInstanceBuffer(capacityHint int) *InstanceBuffer {
	return &InstanceBuffer{instances: make([]QuadInstance, 0, capacityHint)}
}

// Append adds q to the buffer and returns its index. The buffer may grow
// geometrically; callers that need to mutate an already-appended instance
// across further Append calls must re-index via that returned index, not
// hold a pointer (spec §4.8, §9 "Instance vector growth").
func (b *InstanceBuffer) Append(q QuadInstance) int {
	b.instances = append(b.instances, q)
	return len(b.instances) - 1
}

// Len returns the number of instances currently buffered.
func (b *InstanceBuffer) Len() int { return len(b.instances) }

// At returns a copy of the instance at index i.
func (b *InstanceBuffer) At(i int) QuadInstance { return b.instances[i] }

// Set overwrites the instance at index i.
func (b *InstanceBuffer) Set(i int, q QuadInstance) { b.instances[i] = q }

// Instances returns the live backing slice, valid until the next Append.
func (b *InstanceBuffer) Instances() []QuadInstance { return b.instances }

// Reset clears the buffer's length while retaining its capacity.
func (b *InstanceBuffer) Reset() {
	b.instances = b.instances[:0]
}
