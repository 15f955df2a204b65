package progress

// Package progress throttles progress notifications so the presentation layer
// is not flooded by byte-level updates.
