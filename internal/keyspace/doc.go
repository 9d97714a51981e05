// Package keyspace enumerates candidate passwords deterministically.
//
// A Space is a mixed-radix cross product: an optional literal prefix followed
// by positions that each draw from an ordered alphabet. Charset spaces use the
// same alphabet for every position; pattern spaces restrict each position to
// the lower/upper case forms of a fixed character. Ordinals count in the
// natural base-N order with the most significant position first, so ordinal
// k of a space is always the same candidate and an Iterator can start at any
// ordinal in O(length) without producing the skipped candidates.
//
// Batches drawn from one Iterator are contiguous and disjoint; concatenated
// in emission order they reproduce the remaining enumeration exactly once.
package keyspace
