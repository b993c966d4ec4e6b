// Package gfxbackend implements the Graphics Backend (GB) capability
// interface the present layer consumes (spec §6): texture create/upload,
// swap-chain present, constant-buffer/blend/viewport bind, a discard-map
// dynamic vertex buffer, and a 2D drawing surface over the atlas texture.
// Concrete implementations are registered by name and selected at
// startup, adapted from the teacher's backend registry.
package gfxbackend

import (
	"errors"
	"image"
	"sync"

	"github.com/gogpu/termatlas/internal/raster2d"
)

// ErrNotAvailable is returned by CreateTexture and ResizeSwapChain for
// non-positive sizes and by OpenDrawingSurface for a texture from another
// backend. Get returns nil for an unregistered backend name.
var ErrNotAvailable = errors.New("gfxbackend: backend not available")

// ErrNotInitialized is returned by operations called before Init.
var ErrNotInitialized = errors.New("gfxbackend: not initialized")

// ErrDeviceLost signals the backend's device was lost and must be
// rebuilt on the next frame (spec §4.10, §7).
var ErrDeviceLost = errors.New("gfxbackend: device lost")

// TextureFormat names a GPU pixel format for texture creation.
type TextureFormat uint8

const (
	TextureFormatRGBA8 TextureFormat = iota
	TextureFormatBGRA8
)

// TextureConfig configures a backend texture allocation.
type TextureConfig struct {
	Width, Height int
	Format        TextureFormat
	Label         string
	Dynamic       bool // true = frequently updated via discard-map upload
}

// Texture is an opaque GPU (or CPU-simulated) texture handle.
type Texture interface {
	Width() int
	Height() int
	// Upload writes pixel data into the whole texture (or, when
	// Dynamic, performs a discard-map replace) from an RGBA image
	// matching the texture's dimensions.
	Upload(img *image.RGBA) error
	// UploadRegion writes pixel data into a sub-rectangle, used for
	// row-by-row CB uploads (spec §4.5 step 2).
	UploadRegion(x, y int, img *image.RGBA) error
	Release()
}

// DrawingSurface is the 2D drawing session over the atlas texture (spec
// §4.7, §4.9): glyph-run and solid-geometry drawing between BeginDraw
// and EndDraw.
type DrawingSurface interface {
	BeginDraw()
	EndDraw()
	IsDrawing() bool
	Surface() *raster2d.Surface
}

// FrameLatencyWaiter lets the present layer wait for the swap chain to
// be ready for the next frame (spec §4.5 step 10's frame-latency wait).
type FrameLatencyWaiter interface {
	Wait()
}

// Backend is the Graphics Backend capability interface consumed by the
// present layer (spec §6 "Graphics Backend (consumed)").
type Backend interface {
	Name() string
	Init() error
	Close()

	// CreateTexture allocates a new backend texture.
	CreateTexture(cfg TextureConfig) (Texture, error)

	// OpenDrawingSurface opens a 2D drawing session over tex, used for
	// atlas glyph rasterization (spec §4.9 Ready->Drawing).
	OpenDrawingSurface(tex Texture) (DrawingSurface, error)

	// ResizeSwapChain (re)creates the render target/swap chain for the
	// given pixel dimensions.
	ResizeSwapChain(width, height int) error

	// UploadInstances replaces the dynamic vertex buffer's contents via
	// discard-map (spec §3 "uploaded via discard-map each frame").
	UploadInstances(raw []byte) error

	// Present issues the indexed instanced draw call and presents the
	// swap chain with the given pixel dirty rect (empty rect = full
	// present); vsync interval 1 (spec §4.5 steps 9-10).
	Present(dirty image.Rectangle) error

	// Waiter returns the frame-latency waitable for the current swap
	// chain, or nil if the backend does not support one.
	Waiter() FrameLatencyWaiter

	// DeviceLost reports whether the backend has detected device loss
	// since the last successful Present (spec §4.10).
	DeviceLost() bool
}

// Factory constructs a new Backend instance.
type Factory func() Backend

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
	// priority is the fallback order used by Default: prefer the real
	// GPU backend, fall back to the CPU reference backend.
	priority = []string{"wgpu", "software"}
)

// Register adds a backend factory under name, typically from an init()
// function in the backend's own file.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get constructs a backend instance by registered name, or nil if name
// is not registered.
func Get(name string) Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default constructs the highest-priority available backend, or nil if
// none are registered.
func Default() Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, name := range priority {
		if factory, ok := registry[name]; ok {
			return factory()
		}
	}
	return nil
}

// Available lists registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
