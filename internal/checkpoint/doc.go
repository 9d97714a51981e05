// Package checkpoint persists the search resumption cursor.
//
// The record is a single line "length|prefix|offset" overwritten atomically,
// so a concurrent reader sees either the previous or the new cursor and never
// a torn write. A missing or corrupt record is reported as absent: the search
// fails open to starting over instead of refusing to run.
package checkpoint
