// Package preflight checks the filesystem before a search starts.
//
// A search can run for days, so an unreadable archive or an unwritable state
// directory is reported up front instead of after the first checkpoint or the
// final extraction.
package preflight
