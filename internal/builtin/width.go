package builtin

import "golang.org/x/text/width"

// IsWideRune reports whether r occupies two cell columns under East Asian
// Width classification (W or F per UAX #11). Nothing in this module calls
// it: PaintBufferLine assigns one column per code point, and the shaping
// glue's advance accounting does not consult this classification.
func IsWideRune(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	default:
		return false
	}
}
