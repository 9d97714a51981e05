// Package history keeps a SQLite ledger of search runs: what was searched,
// how it ended, and how long it took. The ledger is informational; a run
// proceeds even when it cannot be written.
package history
