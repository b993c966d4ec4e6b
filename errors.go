package termatlas

import "errors"

// Sentinel errors for the termatlas core. See spec §7 for the full kind
// taxonomy and which ones are internal-only versus surfaced to the host.
var (
	// ErrInvalidArgument is returned by boundary accessors when a
	// required out-pointer/argument is missing. Surfaces to the caller.
	ErrInvalidArgument = errors.New("termatlas: invalid argument")

	// ErrArithmeticOverflow is returned by coordinate narrowings. The
	// host is expected to drop the frame on this error.
	ErrArithmeticOverflow = errors.New("termatlas: arithmetic overflow")

	// ErrInsufficientBuffer is internal, consumed by the retry loops in
	// shaping and atlas packing; it should never escape the package.
	ErrInsufficientBuffer = errors.New("termatlas: insufficient buffer")

	// ErrAtlasFull is internal, triggers the atlas overflow protocol; it
	// should never escape the package.
	ErrAtlasFull = errors.New("termatlas: atlas full")

	// ErrPossibleDeadlock names a second consecutive atlas-full failure
	// for the same glyph in the same frame. No renderer code path returns
	// it: Present logs such a failure as a warning and drops the glyph.
	ErrPossibleDeadlock = errors.New("termatlas: possible deadlock")

	// ErrNoFontFace is a shaping fallback signal; never propagated past
	// the shaping glue (falls back to U+FFFD, then to dropping glyphs).
	ErrNoFontFace = errors.New("termatlas: no font face")

	// ErrShaderCompileFailed is reported through the injected warning
	// callback; the renderer proceeds without the custom shader.
	ErrShaderCompileFailed = errors.New("termatlas: shader compile failed")

	// ErrDeviceLost is reported through the injected warning callback;
	// the present layer rebuilds device-bound state on the next frame.
	ErrDeviceLost = errors.New("termatlas: device lost")
)
