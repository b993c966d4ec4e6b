package termatlas

import (
	"fmt"
	"sync"

	"github.com/gogpu/termatlas/internal/atlastex"
	"github.com/gogpu/termatlas/internal/gfxbackend"
	"github.com/gogpu/termatlas/internal/raster2d"
	"github.com/gogpu/termatlas/internal/shapingsvc"
)

// FrameState is the producer-thread frame state machine (spec §4.9):
// Idle -> Painting on start_paint, Painting -> Idle on end_paint. API
// calls outside Painting only update IS.
type FrameState int

const (
	// FrameIdle is the state between frames; APL calls only touch IS.
	FrameIdle FrameState = iota
	// FramePainting is the state between start_paint and end_paint.
	FramePainting
)

// bufferLineState is the producer thread's scratch accumulator for the
// line currently being assembled by paint_buffer_line, flushed by
// flush_buffer_line (spec §4.3).
type bufferLineState struct {
	row          int
	hasRow       bool
	text         []rune
	cols         []int // len(text)+1, cols[i] = starting column of text[i]
	wrapped      bool
	attrs        FontAttributes
	highlightIdx int
}

func (b *bufferLineState) reset() {
	b.text = b.text[:0]
	b.cols = b.cols[:0]
	b.hasRow = false
	b.wrapped = false
}

// Renderer is the top-level core object gluing IS/RS/CB/AT to the
// Shaping Service and Graphics Backend capability interfaces (spec §2).
// The producer-thread methods (the APL, api.go/shape.go) and the single
// render-thread method (Present, present.go) communicate only through
// the RS/CB/AT/IS state this struct owns, per the single-producer/
// single-consumer contract of spec §5 — Renderer itself does not add
// any additional locking beyond what each owned type already has.
type Renderer struct {
	mu sync.Mutex // guards producer-side mutation only; Present never locks it

	backend gfxbackend.Backend
	shaping shapingsvc.Service
	atlas   *atlastex.Atlas

	rows *RowStore
	cb   *ColorBitmap
	is   *InvalidationState

	instances *InstanceBuffer

	font   FontSettings
	target TargetSettings
	misc   MiscSettings
	cursor CursorSettings

	opts options

	frameState FrameState
	bufferLine bufferLineState

	currentForeground Color
	currentBackground Color

	// faceHandles maps an SS FontFaceHandle to the atlastex.FontFaceID
	// used to key the atlas glyph map; both are populated on first use
	// of a resolved font face.
	faceHandles map[shapingsvc.FontFaceHandle]atlastex.FontFaceID
	nextFaceID  atlastex.FontFaceID
	faceHandlesByID map[atlastex.FontFaceID]shapingsvc.FontFaceHandle

	// Render-thread-owned GPU-bound resources (spec §4.5 step 1-2),
	// rebuilt lazily from CPU-side RS/CB/AT whenever their backing
	// generation counters or dimensions change. Present never locks
	// r.mu, so these fields must only ever be touched from Present.
	atlasTex   gfxbackend.Texture
	atlasSurf  *raster2d.Surface
	atlasW, atlasH int

	cbBackgroundTex gfxbackend.Texture
	cbForegroundTex gfxbackend.Texture
	lastBackgroundGen uint64
	lastForegroundGen uint64

	// swapChainW/H are the pixel dimensions the backend's swap chain was
	// last sized to, compared against the viewport's current pixel size
	// each Present to decide whether ResizeSwapChain must run again.
	swapChainW, swapChainH int

	lastFontGeneration   uint64
	lastTargetGeneration uint64
	lastMiscGeneration   uint64

	// publishedDirtyRect is the frame dirty pixel rect end_paint captured
	// just before resetting IS's accumulator, handed off to Present the
	// way the producer's present-ready notification carries it in the
	// original design (spec §4.5 step 10). Present-thread read-only.
	publishedDirtyRect Rect
}

// NewRenderer constructs a Renderer bound to the named graphics backend
// (see internal/gfxbackend.Available for registered names) and the
// given Shaping Service implementation, sized to cols x rows viewport
// cells. The caller must still call UpdateFont before the first
// StartPaint, since no font is resolved yet (CellMetrics is zero).
func NewRenderer(backendName string, shaping shapingsvc.Service, cols, rows int, opts ...RendererOption) (*Renderer, error) {
	b := gfxbackend.Get(backendName)
	if b == nil {
		return nil, fmt.Errorf("termatlas: %w: %q", gfxbackend.ErrNotAvailable, backendName)
	}
	if err := b.Init(); err != nil {
		return nil, fmt.Errorf("termatlas: init graphics backend %q: %w", backendName, err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{
		backend:     b,
		shaping:     shaping,
		rows:        NewRowStore(rows),
		cb:          NewColorBitmap(cols, rows),
		is:          NewInvalidationState(),
		instances:   NewInstanceBuffer(1024),
		opts:        o,
		faceHandles:     make(map[shapingsvc.FontFaceHandle]atlastex.FontFaceID),
		faceHandlesByID: make(map[atlastex.FontFaceID]shapingsvc.FontFaceHandle),
		misc: MiscSettings{
			AntialiasingMode:     o.antialiasingMode,
			GraphicsAPI:          o.graphicsAPI,
			HardwareAcceleration: o.hardwareAcceleration,
			BackgroundOpaque:     o.backgroundOpaque,
			IntenseIsBold:        o.intenseIsBold,
		},
		target: TargetSettings{ViewportCols: cols, ViewportRows: rows, DPI: 96},
	}
	return r, nil
}

// Close releases the backend's resources.
func (r *Renderer) Close() {
	if r.atlasTex != nil {
		r.atlasTex.Release()
	}
	if r.cbBackgroundTex != nil {
		r.cbBackgroundTex.Release()
	}
	if r.cbForegroundTex != nil {
		r.cbForegroundTex.Release()
	}
	r.backend.Close()
}

// faceIDFor returns the stable atlastex.FontFaceID for an SS font face
// handle, assigning a new one on first use. A null handle (0, the
// built-in-glyph-generator sentinel) always maps to FontFaceID(0).
func (r *Renderer) faceIDFor(h shapingsvc.FontFaceHandle) atlastex.FontFaceID {
	if h == 0 {
		return 0
	}
	if id, ok := r.faceHandles[h]; ok {
		return id
	}
	r.nextFaceID++
	r.faceHandles[h] = r.nextFaceID
	r.faceHandlesByID[r.nextFaceID] = h
	return r.nextFaceID
}

// newAtlasForMetrics allocates a fresh Atlas sized from metrics' cell
// area, called whenever update_font resolves a new font (font-relevant
// atlas entries are keyed partly by rasterized glyph size, which
// changes with the font, so the prior atlas's content is moot).
func newAtlasForMetrics(metrics CellMetrics) *atlastex.Atlas {
	return atlastex.NewAtlas(int(metrics.CellArea()))
}
