package termatlas

// options collects every value a RendererOption can set. Configuration
// setters with the following recognized options, per spec §6.
type options struct {
	antialiasingMode     AntialiasingMode
	graphicsAPI          GraphicsAPI
	hardwareAcceleration bool
	backgroundOpaque     bool
	intenseIsBold        bool
	ligaturesEnabled     bool
	fontFeatures         map[FontTag]uint32
	fontAxes             map[FontTag]float32
}

func defaultOptions() options {
	return options{
		antialiasingMode:     AntialiasingClearType,
		graphicsAPI:          GraphicsAPIAutomatic,
		hardwareAcceleration: true,
		backgroundOpaque:     false,
		intenseIsBold:        false,
		ligaturesEnabled:     true,
	}
}

// RendererOption configures a Renderer at construction time.
type RendererOption func(*options)

// WithAntialiasingMode selects the glyph rasterization pipeline.
func WithAntialiasingMode(mode AntialiasingMode) RendererOption {
	return func(o *options) { o.antialiasingMode = mode }
}

// WithGraphicsAPI records the backend adapter choice in
// MiscSettings.GraphicsAPI. NewRenderer picks the backend by name and
// nothing reads this setting.
func WithGraphicsAPI(api GraphicsAPI) RendererOption {
	return func(o *options) { o.graphicsAPI = api }
}

// WithHardwareAcceleration records a WARP (false) vs. hardware (true)
// adapter preference in MiscSettings.HardwareAcceleration. NewRenderer
// picks the backend by name and nothing reads this setting.
func WithHardwareAcceleration(enabled bool) RendererOption {
	return func(o *options) { o.hardwareAcceleration = enabled }
}

// WithBackgroundOpaque selects the background_opaque_mixin value applied
// to every background color during update_drawing_brushes.
func WithBackgroundOpaque(opaque bool) RendererOption {
	return func(o *options) { o.backgroundOpaque = opaque }
}

// WithIntenseIsBold records in MiscSettings.IntenseIsBold whether the
// intense text attribute promotes to bold. Shaping always uses the
// regular weight slot, so nothing reads this setting.
func WithIntenseIsBold(enabled bool) RendererOption {
	return func(o *options) { o.intenseIsBold = enabled }
}

// WithLigaturesEnabled selects whether the ligature overlap split (4.8)
// is ever performed; disabling it forces every glyph quad to draw
// un-split even if its atlas entry geometrically qualifies.
func WithLigaturesEnabled(enabled bool) RendererOption {
	return func(o *options) { o.ligaturesEnabled = enabled }
}

// WithFontFeatures stores a copy of the OpenType feature tags in the
// renderer's options. Shaping uses the feature map passed to UpdateFont;
// this stored copy is not passed to the shaping service.
func WithFontFeatures(features map[FontTag]uint32) RendererOption {
	return func(o *options) {
		o.fontFeatures = make(map[FontTag]uint32, len(features))
		for k, v := range features {
			o.fontFeatures[k] = v
		}
	}
}

// WithFontAxes stores a copy of the variable-font axis values in the
// renderer's options. The per-attribute axis vectors and the axis map
// sent to the shaping service come from UpdateFont's arguments; this
// stored copy is not used by either.
func WithFontAxes(axes map[FontTag]float32) RendererOption {
	return func(o *options) {
		o.fontAxes = make(map[FontTag]float32, len(axes))
		for k, v := range axes {
			o.fontAxes[k] = v
		}
	}
}
