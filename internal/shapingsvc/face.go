package shapingsvc

import (
	"bytes"
	"sync"

	gofont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
)

// FontSource is raw font file data plus an identity suitable for caching
// parsed fonts and atlas glyph-map keys (spec §9: "an arena of font-face
// descriptors keyed by integer ID").
type FontSource struct {
	Handle FontFaceHandle
	Data   []byte
	SizePx float32

	FamilyName string
	Bold       bool
	Italic     bool
}

// faceAttributes records the (family, weight, italic) combination a
// registered handle was resolved for, so MapCharacters/ReferenceLayout
// can look a handle back up by attribute combination without the caller
// re-passing a FontSource each call.
type faceAttributes struct {
	family string
	weight float32
	italic bool
}

// faceArena resolves and caches parsed go-text fonts per FontSource,
// keyed by FontFaceHandle so the atlas can use the same small integer
// identity without aliasing a live pointer (spec §9 Design Notes).
type faceArena struct {
	mu    sync.RWMutex
	fonts map[FontFaceHandle]*gofont.Font
	attrs map[faceAttributes]FontFaceHandle
	next  FontFaceHandle

	// raw and otFonts back RasterizeGlyph: go-text/typesetting shapes but
	// does not rasterize outlines to pixels, so rasterization reparses
	// the same font bytes with golang.org/x/image/font/opentype, the
	// library the retrieved pack's own glyph-outline code reaches for.
	raw     map[FontFaceHandle][]byte
	otFonts map[FontFaceHandle]*opentype.Font
}

func newFaceArena() *faceArena {
	return &faceArena{
		fonts:   make(map[FontFaceHandle]*gofont.Font),
		attrs:   make(map[faceAttributes]FontFaceHandle),
		next:    1,
		raw:     make(map[FontFaceHandle][]byte),
		otFonts: make(map[FontFaceHandle]*opentype.Font),
	}
}

// Register parses src.Data and returns a handle for subsequent lookups.
// Returns ErrEmptyFontData if src.Data is empty.
func (a *faceArena) Register(src *FontSource) (FontFaceHandle, error) {
	if len(src.Data) == 0 {
		return 0, ErrEmptyFontData
	}
	face, err := gofont.ParseTTF(bytes.NewReader(src.Data))
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	handle := a.next
	a.next++
	a.fonts[handle] = face.Font
	a.raw[handle] = src.Data
	src.Handle = handle
	a.attrs[faceAttributes{family: src.FamilyName, weight: boldWeight(src.Bold), italic: src.Italic}] = handle
	return handle, nil
}

// OpenType returns the lazily-parsed opentype.Font backing handle, for
// RasterizeGlyph's outline-to-pixel path.
func (a *faceArena) OpenType(handle FontFaceHandle) (*opentype.Font, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.otFonts[handle]; ok {
		return f, true
	}
	data, ok := a.raw[handle]
	if !ok {
		return nil, false
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, false
	}
	a.otFonts[handle] = f
	return f, true
}

// resolveByAttributes returns the handle registered for the closest
// matching (family, weight, italic) combination, or 0 if none was
// registered. Weight is bucketed to 700 at 600 and above, else 400, since
// this adapter does not interpolate variable-font weight axes here (the
// per-attribute FontAxisSet in the root package handles axis values).
func (a *faceArena) resolveByAttributes(family string, weight float32, italic bool) FontFaceHandle {
	a.mu.RLock()
	defer a.mu.RUnlock()
	key := faceAttributes{family: family, weight: boldWeight(weight >= 600), italic: italic}
	if h, ok := a.attrs[key]; ok {
		return h
	}
	// Fall back to any registered face for this family, any weight/style.
	for k, h := range a.attrs {
		if k.family == family {
			return h
		}
	}
	return 0
}

func boldWeight(bold bool) float32 {
	if bold {
		return 700
	}
	return 400
}

// Lookup returns the parsed font for handle, or nil if unknown.
func (a *faceArena) Lookup(handle FontFaceHandle) *gofont.Font {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.fonts[handle]
}

// Release discards a cached font by handle, matching font-change lifecycle
// resets.
func (a *faceArena) Release(handle FontFaceHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.fonts, handle)
}
