// Package search runs a complete password search over one or more lengths.
//
// The Controller resolves where to start (explicit resume value, saved
// checkpoint, or the beginning), hands each length to the dispatcher, and on
// success clears the checkpoint and extracts the archive. Pattern mode runs a
// single pass over the upper/lower case variants of a known word.
package search
