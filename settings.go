package termatlas

// AntialiasingMode selects the glyph rasterization pipeline.
type AntialiasingMode int

const (
	// AntialiasingClearType renders with subpixel AA (dual-source blend).
	AntialiasingClearType AntialiasingMode = iota
	// AntialiasingGrayscale renders with regular grayscale AA.
	AntialiasingGrayscale
	// AntialiasingAliased disables AA entirely.
	AntialiasingAliased
)

// String returns the string representation of the antialiasing mode.
func (m AntialiasingMode) String() string {
	switch m {
	case AntialiasingClearType:
		return "ClearType"
	case AntialiasingGrayscale:
		return "Grayscale"
	case AntialiasingAliased:
		return "Aliased"
	default:
		return unknownStr
	}
}

// GraphicsAPI selects the backend adapter.
type GraphicsAPI int

const (
	// GraphicsAPIAutomatic lets the backend choose the best available API.
	GraphicsAPIAutomatic GraphicsAPI = iota
	// GraphicsAPID2DOnly forces a Direct2D-equivalent CPU-composited path.
	GraphicsAPID2DOnly
	// GraphicsAPID3D11On12 forces a D3D11-on-12 interop equivalent.
	GraphicsAPID3D11On12
	// GraphicsAPID3D11 forces the D3D11-equivalent native path.
	GraphicsAPID3D11
)

// String returns the string representation of the graphics API selector.
func (a GraphicsAPI) String() string {
	switch a {
	case GraphicsAPIAutomatic:
		return "Automatic"
	case GraphicsAPID2DOnly:
		return "D2DOnly"
	case GraphicsAPID3D11On12:
		return "D3D11On12"
	case GraphicsAPID3D11:
		return "D3D11"
	default:
		return unknownStr
	}
}

// FontTag is a four-byte OpenType feature or axis tag (e.g. "liga", "wght").
type FontTag [4]byte

// FontAxes holds the three named variable-font axes the core tracks
// explicitly per attribute combination: weight, italic (0/1), and slant
// (degrees). Additional arbitrary axes flow through via FontAxisValues.
type FontAxes struct {
	Weight float32
	Italic float32
	Slant  float32
}

// FontSettings is the resolved, generation-tracked font configuration
// produced by update_font. FontAxisSet holds one FontAxes per
// FontAttributes.AttributeIndex() (regular, bold, italic, bold-italic).
type FontSettings struct {
	Generation uint64

	FamilyName string
	WeightDesired float32
	StyleDesired  string
	SizePx        float32

	FontFeatures map[FontTag]uint32
	FontAxisValues map[FontTag]float32

	FontAxisSet [4]FontAxes

	Metrics CellMetrics
}

// recomputeAxisSet derives the four per-attribute axis vectors from the
// resolved base weight, per update_font: any axis the user did not set
// explicitly defaults per attribute combination (weight defaults to the
// current weight, bold toggles it; italic defaults to 1 when italic else
// 0; slant defaults to -12 when italic else 0).
func (f *FontSettings) recomputeAxisSet(boldWeight float32) {
	for idx := 0; idx < 4; idx++ {
		attrs := FontAttributes(idx)
		axes := FontAxes{Weight: f.WeightDesired}
		if attrs&AttrBold != 0 {
			axes.Weight = boldWeight
		}
		if attrs&AttrItalic != 0 {
			axes.Italic = 1
			axes.Slant = -12
		}
		f.FontAxisSet[idx] = axes
	}
}

// TargetSettings holds the viewport/DPI configuration tracked by its own
// generation, separate from FontSettings so update_dpi/update_viewport can
// bump it without recomputing font axis vectors unless the font also
// changed.
type TargetSettings struct {
	Generation uint64

	ViewportCols int
	ViewportRows int
	DPI          uint32
}

// MiscSettings holds the remaining boolean/enum configuration knobs from
// §6's Configuration setters list that are not font- or target-specific.
type MiscSettings struct {
	Generation uint64

	AntialiasingMode     AntialiasingMode
	GraphicsAPI          GraphicsAPI
	HardwareAcceleration bool
	BackgroundOpaque     bool
	IntenseIsBold        bool
}

// CursorKind selects the shape used by cursor background/foreground
// rendering (4.6).
type CursorKind int

const (
	// CursorLegacy draws a bottom-anchored partial-height block.
	CursorLegacy CursorKind = iota
	// CursorVerticalBar draws a thin vertical bar at the cell's left edge.
	CursorVerticalBar
	// CursorUnderscore draws a single underline-height bar.
	CursorUnderscore
	// CursorDoubleUnderscore draws two underline-height bars.
	CursorDoubleUnderscore
	// CursorEmptyBox draws an unfilled rectangle outline.
	CursorEmptyBox
	// CursorFullBox fills the entire cell.
	CursorFullBox
)

// String returns the string representation of the cursor kind.
func (k CursorKind) String() string {
	switch k {
	case CursorLegacy:
		return "Legacy"
	case CursorVerticalBar:
		return "VerticalBar"
	case CursorUnderscore:
		return "Underscore"
	case CursorDoubleUnderscore:
		return "DoubleUnderscore"
	case CursorEmptyBox:
		return "EmptyBox"
	case CursorFullBox:
		return "FullBox"
	default:
		return unknownStr
	}
}

// CursorOptions describes the cursor the host wants drawn this frame.
type CursorOptions struct {
	Col, Row      int
	Kind          CursorKind
	HeightPercent int
	Color         Color
	IsDoubleWidth bool
	IsOn          bool
}

// CursorSettings is the cached, generation-tracked form of CursorOptions
// last passed to paint_cursor.
type CursorSettings struct {
	Generation uint64
	Options    CursorOptions
}
