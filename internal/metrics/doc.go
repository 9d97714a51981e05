// Package metrics exports search counters in the Prometheus format.
//
// The Recorder registers on its own registry so tests and multiple runs in
// one process never collide with the global default registry.
package metrics
