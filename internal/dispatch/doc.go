// Package dispatch runs one enumeration pass over a worker pool.
//
// Batches are handed to workers in enumeration order and may finish in any
// order. A reorder buffer advances the retirement watermark only across a
// contiguous run of fully tested batches, and checkpoints are written from
// that watermark, so a persisted offset never skips an untested candidate.
package dispatch
