package gfxbackend

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/gogpu/termatlas/internal/raster2d"
)

func init() {
	Register("software", func() Backend { return &SoftwareBackend{} })
}

// Texture labels the present layer always creates its render-thread
// resources under (see present.go's ensureAtlasTexture/ensureCBTextures);
// the software backend keys off these to know which uploaded texture to
// sample as the atlas versus the background/foreground color tiles when
// compositing a frame.
const (
	labelAtlas        = "termatlas-atlas"
	labelCBBackground = "termatlas-cb-background"
	labelCBForeground = "termatlas-cb-foreground"
)

// Shading kinds the compositor branches on, mirroring the root package's
// ShadingKind numeric values (see quadInstance's doc comment for why
// this package keeps its own copy instead of importing them).
const (
	shadingBackground      = 1
	shadingTextFirst       = 2
	shadingTextLast        = 5
	shadingTextPassthrough = 4
)

// quadInstance mirrors the root package's QuadInstance wire layout byte
// for byte (see encodeInstances in present.go): same field order and
// sizes, so decoding raw instance bytes via encoding/binary reproduces
// the original quads without this package importing the root package,
// which imports this one.
type quadInstance struct {
	ShadingKind     uint16
	RenditionScaleX uint8
	RenditionScaleY uint8
	PositionX       int16
	PositionY       int16
	SizeX           uint16
	SizeY           uint16
	TexcoordX       uint16
	TexcoordY       uint16
	Color           uint32
}

func (q quadInstance) rect() image.Rectangle {
	return image.Rect(int(q.PositionX), int(q.PositionY), int(q.PositionX)+int(q.SizeX), int(q.PositionY)+int(q.SizeY))
}

// decodeInstances parses raw (as produced by present.go's encodeInstances)
// back into quadInstance values.
func decodeInstances(raw []byte) ([]quadInstance, error) {
	const stride = 20 // matches encodeInstances's buf.Grow(len(instances) * 20)
	if len(raw)%stride != 0 {
		return nil, fmt.Errorf("gfxbackend: instance buffer length %d is not a multiple of %d", len(raw), stride)
	}
	out := make([]quadInstance, len(raw)/stride)
	r := bytes.NewReader(raw)
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// packedColor unpacks a termatlas.Color-layout uint32 (0xRRGGBBAA) into
// its straight-alpha components.
type packedColor struct{ R, G, B, A uint8 }

func unpackColor(c uint32) packedColor {
	return packedColor{R: uint8(c >> 24), G: uint8(c >> 16), B: uint8(c >> 8), A: uint8(c)}
}

// SoftwareBackend is a CPU-only reference Backend: textures are plain
// image.RGBA buffers, and Present composites the instanced draw list
// directly into the swap chain image per quad rather than issuing a GPU
// draw call. It exists for headless rendering and tests where no GPU
// device is available, mirroring the teacher's SoftwareBackend fallback.
type SoftwareBackend struct {
	mu          sync.Mutex
	initialized bool
	swapChain   *image.RGBA
	deviceLost  bool

	atlasTex        *softwareTexture
	cbBackgroundTex *softwareTexture
	cbForegroundTex *softwareTexture

	instances []quadInstance
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string { return "software" }

// Init marks the backend ready; there is no GPU device to acquire.
func (b *SoftwareBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initialized = true
	return nil
}

// Close releases the swap chain image.
func (b *SoftwareBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.swapChain = nil
	b.atlasTex, b.cbBackgroundTex, b.cbForegroundTex = nil, nil, nil
	b.instances = nil
	b.initialized = false
}

// CreateTexture allocates a CPU-backed texture. Textures created under
// one of the present layer's well-known labels are also remembered so
// Present can sample them while compositing (see the label constants
// above).
func (b *SoftwareBackend) CreateTexture(cfg TextureConfig) (Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrNotAvailable
	}
	tex := &softwareTexture{img: image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))}

	switch cfg.Label {
	case labelAtlas:
		b.atlasTex = tex
	case labelCBBackground:
		b.cbBackgroundTex = tex
	case labelCBForeground:
		b.cbForegroundTex = tex
	}
	return tex, nil
}

// OpenDrawingSurface wraps tex's backing image in a raster2d.Surface
// sized drawing session.
func (b *SoftwareBackend) OpenDrawingSurface(tex Texture) (DrawingSurface, error) {
	st, ok := tex.(*softwareTexture)
	if !ok {
		return nil, ErrNotAvailable
	}
	return &softwareDrawingSurface{surf: raster2d.NewSurface(st.img.Bounds().Dx(), st.img.Bounds().Dy()), tex: st}, nil
}

// ResizeSwapChain (re)allocates the composited output image.
func (b *SoftwareBackend) ResizeSwapChain(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width <= 0 || height <= 0 {
		return ErrNotAvailable
	}
	b.swapChain = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// UploadInstances decodes raw into the quad list Present composites from.
func (b *SoftwareBackend) UploadInstances(raw []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return ErrNotInitialized
	}
	instances, err := decodeInstances(raw)
	if err != nil {
		return fmt.Errorf("gfxbackend: upload instances: %w", err)
	}
	b.instances = instances
	return nil
}

// Present composites every uploaded quad into the swap chain image,
// clipped to dirty when it is non-empty (an empty dirty rect means
// "present everything"). This is the CPU reference backend's stand-in
// for a GPU's indexed instanced draw call plus swap-chain present (spec
// §4.5 steps 9-10): background quads tile the background color texture
// per cell, text-drawing quads alpha-blend the atlas's coverage mask
// tinted by the instance color, and every other shading kind (cursor,
// selection, gridline/underline variants) is filled as a flat color
// rect — the CPU backend does not replicate the dashed/dotted/curly
// line stipple patterns a real pixel shader would, since that pattern
// logic belongs to the GPU pipeline this backend stands in for.
func (b *SoftwareBackend) Present(dirty image.Rectangle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return ErrNotInitialized
	}
	if b.deviceLost {
		return ErrDeviceLost
	}
	if b.swapChain == nil {
		return nil // ResizeSwapChain not yet called; nothing to composite into
	}

	clip := b.swapChain.Bounds()
	if !dirty.Empty() {
		clip = clip.Intersect(dirty)
	}
	b.composite(clip)
	return nil
}

// composite draws every buffered quad into the swap chain, each clipped
// to clip.
func (b *SoftwareBackend) composite(clip image.Rectangle) {
	var cellW, cellH int
	if b.cbBackgroundTex != nil {
		if bw := b.cbBackgroundTex.img.Bounds().Dx(); bw > 0 {
			cellW = b.swapChain.Bounds().Dx() / bw
		}
		if bh := b.cbBackgroundTex.img.Bounds().Dy(); bh > 0 {
			cellH = b.swapChain.Bounds().Dy() / bh
		}
	}

	for _, q := range b.instances {
		rect := q.rect().Intersect(clip)
		if rect.Empty() {
			continue
		}
		switch {
		case q.ShadingKind == shadingBackground:
			b.compositeBackground(rect, cellW, cellH)
		case q.ShadingKind >= shadingTextFirst && q.ShadingKind <= shadingTextLast:
			b.compositeGlyph(rect, q)
		default:
			b.compositeSolid(rect, q.Color)
		}
	}
}

// compositeBackground tiles the background color texture (one texel per
// grid cell) across rect by nearest-neighbor upscaling, standing in for
// the per-pixel cell lookup the real pixel shader performs against the
// background CB texture.
func (b *SoftwareBackend) compositeBackground(rect image.Rectangle, cellW, cellH int) {
	if b.cbBackgroundTex == nil || cellW <= 0 || cellH <= 0 {
		return
	}
	src := b.cbBackgroundTex.img
	bounds := src.Bounds()
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		cy := bounds.Min.Y + (y / cellH)
		if cy >= bounds.Max.Y {
			cy = bounds.Max.Y - 1
		}
		for x := rect.Min.X; x < rect.Max.X; x++ {
			cx := bounds.Min.X + (x / cellW)
			if cx >= bounds.Max.X {
				cx = bounds.Max.X - 1
			}
			b.swapChain.Set(x, y, src.At(cx, cy))
		}
	}
}

// compositeGlyph alpha-blends a text-drawing quad's atlas coverage mask,
// tinted by the instance's color, over whatever is already in the swap
// chain at rect (the background quad, composited earlier in the same
// frame's instance order, per present.go's emission order).
func (b *SoftwareBackend) compositeGlyph(rect image.Rectangle, q quadInstance) {
	if b.atlasTex == nil {
		return
	}
	atlas := b.atlasTex.img
	bounds := atlas.Bounds()
	tint := unpackColor(q.Color)

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		ty := int(q.TexcoordY) + (y - int(q.PositionY))
		if ty < bounds.Min.Y || ty >= bounds.Max.Y {
			continue
		}
		for x := rect.Min.X; x < rect.Max.X; x++ {
			tx := int(q.TexcoordX) + (x - int(q.PositionX))
			if tx < bounds.Min.X || tx >= bounds.Max.X {
				continue
			}
			_, _, _, a16 := atlas.At(tx, ty).RGBA()
			if a16 == 0 {
				continue
			}
			cov := float64(a16) / 0xffff
			bg := b.swapChain.RGBAAt(x, y)
			out := color.RGBA{
				R: blend8(tint.R, bg.R, cov),
				G: blend8(tint.G, bg.G, cov),
				B: blend8(tint.B, bg.B, cov),
				A: 0xff,
			}
			b.swapChain.SetRGBA(x, y, out)
		}
	}
}

// compositeSolid alpha-blends a flat-colored quad (cursor, selection,
// gridline/underline decoration) over the swap chain.
func (b *SoftwareBackend) compositeSolid(rect image.Rectangle, packed uint32) {
	c := unpackColor(packed)
	if c.A == 0 {
		return
	}
	draw.Draw(b.swapChain, rect, image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}), image.Point{}, draw.Over)
}

func blend8(fg, bg uint8, coverage float64) uint8 {
	v := float64(fg)*coverage + float64(bg)*(1-coverage)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// Waiter returns nil: the software backend has no frame-latency
// waitable since there is no swap chain queue to throttle against.
func (b *SoftwareBackend) Waiter() FrameLatencyWaiter { return nil }

// DeviceLost always reports false: there is no GPU device to lose.
func (b *SoftwareBackend) DeviceLost() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deviceLost
}

// SwapChainImage returns the current composited output, for tests and
// the demo command to inspect or save.
func (b *SoftwareBackend) SwapChainImage() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.swapChain
}

type softwareTexture struct {
	img *image.RGBA
}

func (t *softwareTexture) Width() int  { return t.img.Bounds().Dx() }
func (t *softwareTexture) Height() int { return t.img.Bounds().Dy() }

func (t *softwareTexture) Upload(img *image.RGBA) error {
	draw.Draw(t.img, t.img.Bounds(), img, image.Point{}, draw.Src)
	return nil
}

func (t *softwareTexture) UploadRegion(x, y int, img *image.RGBA) error {
	dst := image.Rect(x, y, x+img.Bounds().Dx(), y+img.Bounds().Dy()).Intersect(t.img.Bounds())
	draw.Draw(t.img, dst, img, image.Point{}, draw.Src)
	return nil
}

func (t *softwareTexture) Release() {}

type softwareDrawingSurface struct {
	surf *raster2d.Surface
	tex  *softwareTexture
}

func (s *softwareDrawingSurface) BeginDraw()                { s.surf.BeginDraw() }
func (s *softwareDrawingSurface) IsDrawing() bool            { return s.surf.IsDrawing() }
func (s *softwareDrawingSurface) Surface() *raster2d.Surface { return s.surf }

// EndDraw ends the drawing session and blits the rasterized surface
// into the backing texture, standing in for a GPU driver's implicit
// commit of a Direct2D render target on EndDraw.
func (s *softwareDrawingSurface) EndDraw() {
	s.surf.EndDraw()
	draw.Draw(s.tex.img, s.tex.img.Bounds(), s.surf.Image(), image.Point{}, draw.Src)
}
