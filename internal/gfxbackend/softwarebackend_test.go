package gfxbackend

import (
	"bytes"
	"encoding/binary"
	"image"
	"testing"
)

func encodeTestInstances(t *testing.T, instances []quadInstance) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, q := range instances {
		if err := binary.Write(&buf, binary.LittleEndian, q); err != nil {
			t.Fatalf("encode instance: %v", err)
		}
	}
	return buf.Bytes()
}

func newReadyBackend(t *testing.T) *SoftwareBackend {
	t.Helper()
	b := &SoftwareBackend{}
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return b
}

func TestDecodeInstancesRejectsShortBuffer(t *testing.T) {
	if _, err := decodeInstances([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected an error decoding a buffer not a multiple of the instance stride")
	}
}

func TestSoftwareBackendPresentWithoutSwapChainIsNoop(t *testing.T) {
	b := newReadyBackend(t)
	if err := b.Present(image.Rectangle{}); err != nil {
		t.Fatalf("Present before ResizeSwapChain: %v", err)
	}
}

func TestSoftwareBackendCompositesBackgroundQuad(t *testing.T) {
	b := newReadyBackend(t)

	bgTex, err := b.CreateTexture(TextureConfig{Width: 2, Height: 1, Label: labelCBBackground})
	if err != nil {
		t.Fatalf("CreateTexture background: %v", err)
	}
	cell := image.NewRGBA(image.Rect(0, 0, 2, 1))
	cell.Set(0, 0, colorRGBA{0xff, 0x00, 0x00, 0xff})
	cell.Set(1, 0, colorRGBA{0x00, 0xff, 0x00, 0xff})
	if err := bgTex.Upload(cell); err != nil {
		t.Fatalf("Upload background cells: %v", err)
	}

	if err := b.ResizeSwapChain(20, 10); err != nil {
		t.Fatalf("ResizeSwapChain: %v", err)
	}

	raw := encodeTestInstances(t, []quadInstance{
		{ShadingKind: shadingBackground, PositionX: 0, PositionY: 0, SizeX: 20, SizeY: 10, Color: 0xffffffff},
	})
	if err := b.UploadInstances(raw); err != nil {
		t.Fatalf("UploadInstances: %v", err)
	}
	if err := b.Present(image.Rectangle{}); err != nil {
		t.Fatalf("Present: %v", err)
	}

	img := b.SwapChainImage()
	if img == nil {
		t.Fatalf("expected a non-nil swap chain image after Present")
	}
	left := img.RGBAAt(2, 5)
	right := img.RGBAAt(12, 5)
	if left.R != 0xff || left.G != 0x00 {
		t.Fatalf("expected the left cell column to composite red, got %+v", left)
	}
	if right.R != 0x00 || right.G != 0xff {
		t.Fatalf("expected the right cell column to composite green, got %+v", right)
	}
}

func TestSoftwareBackendCompositesSolidQuad(t *testing.T) {
	b := newReadyBackend(t)
	if err := b.ResizeSwapChain(10, 10); err != nil {
		t.Fatalf("ResizeSwapChain: %v", err)
	}

	raw := encodeTestInstances(t, []quadInstance{
		{ShadingKind: 11, PositionX: 2, PositionY: 2, SizeX: 4, SizeY: 4, Color: 0x336699ff},
	})
	if err := b.UploadInstances(raw); err != nil {
		t.Fatalf("UploadInstances: %v", err)
	}
	if err := b.Present(image.Rectangle{}); err != nil {
		t.Fatalf("Present: %v", err)
	}

	got := b.SwapChainImage().RGBAAt(3, 3)
	if got.R != 0x33 || got.G != 0x66 || got.B != 0x99 {
		t.Fatalf("expected the solid quad's color to composite into the swap chain, got %+v", got)
	}
}

func TestSoftwareBackendPresentClipsToDirtyRect(t *testing.T) {
	b := newReadyBackend(t)
	if err := b.ResizeSwapChain(10, 10); err != nil {
		t.Fatalf("ResizeSwapChain: %v", err)
	}

	raw := encodeTestInstances(t, []quadInstance{
		{ShadingKind: 11, PositionX: 0, PositionY: 0, SizeX: 10, SizeY: 10, Color: 0xff0000ff},
	})
	if err := b.UploadInstances(raw); err != nil {
		t.Fatalf("UploadInstances: %v", err)
	}
	if err := b.Present(image.Rect(0, 0, 5, 10)); err != nil {
		t.Fatalf("Present: %v", err)
	}

	inside := b.SwapChainImage().RGBAAt(2, 2)
	outside := b.SwapChainImage().RGBAAt(8, 8)
	if inside.R != 0xff {
		t.Fatalf("expected the dirty region to be composited, got %+v", inside)
	}
	if outside.A != 0 {
		t.Fatalf("expected the region outside dirty to remain untouched, got %+v", outside)
	}
}

type colorRGBA struct{ R, G, B, A uint8 }

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}
