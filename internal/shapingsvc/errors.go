package shapingsvc

import "errors"

// Sentinel errors for the shaping service adapter.
var (
	// ErrInsufficientBuffer signals GetGlyphs that the caller's scratch
	// buffers are too small; the caller grows them and retries (spec §4.3
	// step 4, capped at 8 retries).
	ErrInsufficientBuffer = errors.New("shapingsvc: insufficient buffer")

	// ErrNoFontFace is returned by MapCharacters when no face covers the
	// requested character prefix.
	ErrNoFontFace = errors.New("shapingsvc: no font face")

	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("shapingsvc: empty font data")
)
