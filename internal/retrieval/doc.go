// Package retrieval answers "what happened between these two timestamps":
// it resolves a millisecond epoch interval against both clip tiers, picks
// the covering clip deterministically, and produces either the whole clip
// or a lossless cut of the requested span.
package retrieval
