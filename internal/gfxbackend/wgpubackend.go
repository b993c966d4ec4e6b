//go:build !nogpu

package gfxbackend

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
	"github.com/gogpu/wgpu/types"

	"github.com/gogpu/termatlas/internal/raster2d"
)

func init() {
	Register("wgpu", func() Backend { return &WGPUBackend{} })
}

// defaultTextureUsage covers the atlas/CB/instance-buffer textures this
// backend creates: sampled in shaders and refreshed via copy-dst upload.
const defaultTextureUsage = gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding

// WGPUBackend is the real Graphics Backend implementation, using
// github.com/gogpu/wgpu (core, types) to acquire an instance, adapter,
// device and queue, following the teacher's device acquisition sequence
// (instance -> adapter -> device -> queue). Textures are CPU mirrors, and
// UploadInstances and Present submit nothing to the GPU.
type WGPUBackend struct {
	mu sync.RWMutex

	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID

	swapChainW, swapChainH int
	instanceBuf            core.BufferID

	deviceLost atomic.Bool
	initialized bool
}

// Name returns the backend identifier.
func (b *WGPUBackend) Name() string { return "wgpu" }

// Init acquires an instance, adapter, device and queue, following the
// same sequence as the teacher's GPU backend Init.
func (b *WGPUBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	instance, err := core.CreateInstance(&types.InstanceDescriptor{})
	if err != nil {
		return fmt.Errorf("gfxbackend: create wgpu instance: %w", err)
	}
	adapterID, err := core.RequestAdapter(instance, &types.RequestAdapterOptions{
		PowerPreference: types.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("gfxbackend: request adapter: %w", err)
	}
	deviceID, err := core.RequestDevice(adapterID, &types.DeviceDescriptor{
		Label:            "termatlas",
		RequiredFeatures: nil,
		RequiredLimits:   types.DefaultLimits(),
	})
	if err != nil {
		return fmt.Errorf("gfxbackend: create device: %w", err)
	}
	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		return fmt.Errorf("gfxbackend: get device queue: %w", err)
	}

	b.instance = instance
	b.adapter = adapterID
	b.device = deviceID
	b.queue = queueID
	b.initialized = true
	return nil
}

// Close releases the device and adapter; the instance is not released.
func (b *WGPUBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.device.IsZero() {
		_ = core.DeviceDrop(b.device)
	}
	if !b.adapter.IsZero() {
		_ = core.AdapterDrop(b.adapter)
	}
	b.initialized = false
}

// CreateTexture allocates a GPU texture. Actual texture-descriptor
// submission is staged behind the local CPU mirror below until the
// pinned gogpu/wgpu version's texture-creation entry point is verified
// against the vendored API (the teacher's own GPUTexture carries the
// identical stub for this reason, see internal/gpu/gpu_texture.go).
func (b *WGPUBackend) CreateTexture(cfg TextureConfig) (Texture, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrNotAvailable
	}

	// TODO: verify against the pinned gogpu/wgpu version and submit:
	// desc := &gputypes.TextureDescriptor{
	//     Label: cfg.Label,
	//     Size: gputypes.Extent3D{Width: uint32(cfg.Width), Height: uint32(cfg.Height), DepthOrArrayLayers: 1},
	//     MipLevelCount: 1,
	//     SampleCount:   1,
	//     Dimension:     gputypes.TextureDimension2D,
	//     Format:        textureFormatToWGPU(cfg.Format),
	//     Usage:         defaultTextureUsage,
	// }
	// textureID, err := core.CreateTexture(b.device, desc)

	return &wgpuTexture{
		width:  cfg.Width,
		height: cfg.Height,
		mirror: image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
	}, nil
}

// OpenDrawingSurface opens a CPU-side rasterization session on a blank
// surface the size of tex; EndDraw copies the surface into tex's CPU
// mirror, and no GPU write is submitted.
func (b *WGPUBackend) OpenDrawingSurface(tex Texture) (DrawingSurface, error) {
	wt, ok := tex.(*wgpuTexture)
	if !ok {
		return nil, ErrNotAvailable
	}
	return &wgpuDrawingSurface{surf: raster2d.NewSurface(wt.width, wt.height), tex: wt}, nil
}

// ResizeSwapChain records the requested swap-chain dimensions. Surface
// (re)configuration against the OS window handle is the host
// application's responsibility; this backend only tracks the size used
// by Present's viewport bind.
func (b *WGPUBackend) ResizeSwapChain(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width <= 0 || height <= 0 {
		return ErrNotAvailable
	}
	b.swapChainW, b.swapChainH = width, height
	return nil
}

// UploadInstances is meant to replace the dynamic instance-vertex buffer
// via discard-map upload (spec §3), but the actual core.WriteBuffer call
// is withheld behind the same pinned-version verification TODO as
// CreateTexture; raw is not yet submitted anywhere. Only the CPU
// reference backend (SoftwareBackend) composites real frames today.
func (b *WGPUBackend) UploadInstances(raw []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return ErrNotInitialized
	}
	// TODO: verify against the pinned gogpu/wgpu version and submit:
	// core.WriteBuffer(b.device, b.queue, b.instanceBuf, 0, raw)
	_ = raw
	return nil
}

// Present is meant to issue the indexed instanced draw call and present
// the swap chain, but the command-encoder/render-pass sequence is
// deferred behind the same TODO as CreateTexture/UploadInstances: this
// method does not yet submit a command buffer or touch dirty, and
// SwapChainImage-style inspection is not available on this backend at
// all (it has no CPU-visible swap chain).
func (b *WGPUBackend) Present(dirty image.Rectangle) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return ErrNotInitialized
	}
	if b.deviceLost.Load() {
		return ErrDeviceLost
	}
	// TODO: verify against the pinned gogpu/wgpu version and submit the
	// render pass (bind pipeline, viewport, instance buffer; draw
	// indexed 6 indices * instance count; core.QueuePresent).
	_ = dirty
	return nil
}

// Waiter returns nil until the swap chain's frame-latency waitable
// object is wired to a verified gogpu/wgpu entry point.
func (b *WGPUBackend) Waiter() FrameLatencyWaiter { return nil }

// DeviceLost reports whether the backend has observed device loss,
// settable by markDeviceLost when a submitted operation fails with a
// device-lost error from the driver.
func (b *WGPUBackend) DeviceLost() bool { return b.deviceLost.Load() }

func (b *WGPUBackend) markDeviceLost() { b.deviceLost.Store(true) }

type wgpuTexture struct {
	width, height int
	mirror        *image.RGBA
	textureID     core.TextureID
}

func (t *wgpuTexture) Width() int  { return t.width }
func (t *wgpuTexture) Height() int { return t.height }

func (t *wgpuTexture) Upload(img *image.RGBA) error {
	copy(t.mirror.Pix, img.Pix)
	// TODO: verify against the pinned gogpu/wgpu version and submit the
	// WriteTexture call using t.textureID.
	return nil
}

func (t *wgpuTexture) UploadRegion(x, y int, img *image.RGBA) error {
	// TODO: verify against the pinned gogpu/wgpu version and submit a
	// partial WriteTexture call covering (x, y, img.Bounds()).
	return nil
}

func (t *wgpuTexture) Release() {}

type wgpuDrawingSurface struct {
	surf *raster2d.Surface
	tex  *wgpuTexture
}

func (s *wgpuDrawingSurface) BeginDraw()      { s.surf.BeginDraw() }
func (s *wgpuDrawingSurface) IsDrawing() bool { return s.surf.IsDrawing() }
func (s *wgpuDrawingSurface) Surface() *raster2d.Surface { return s.surf }

func (s *wgpuDrawingSurface) EndDraw() {
	s.surf.EndDraw()
	_ = s.tex.Upload(s.surf.Image())
}
