// Package progress carries search progress from the dispatcher to whoever is
// watching: a terminal bar, sampled log lines, or metrics. Reporters are
// passed in explicitly; there is no process-wide progress state.
package progress
