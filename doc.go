// Package termatlas renders a terminal grid of shaped, colored text onto
// a GPU-backed atlas-packed glyph cache.
//
// The API is split into three layers that together make up one Renderer:
// an API Layer (api.go, shape.go) a single producer thread drives between
// start_paint/end_paint pairs; an atlas/shaping layer (internal/atlastex,
// internal/shapingsvc, internal/builtin) that turns buffered text into
// packed glyph rectangles; and a Present Layer (present.go, cursor.go,
// gridlines.go, overlap.go) a single render thread drives once per frame
// to assemble and submit the instanced draw list. The two threads
// communicate only through the row store, color bitmap, atlas and
// invalidation state the Renderer owns — see Renderer's doc comment for
// the ownership contract.
package termatlas
