// Package main hosts the zipcrack CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, applies flag overrides, and
// hands the search to internal/search. Inspection commands read the
// checkpoint file and the run history directly. Keep this package thin: new
// behavior belongs in the internal packages first.
package main
