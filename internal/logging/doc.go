// Package logging assembles the structured slog loggers used across zipcrack.
//
// Console output is either a compact human format or JSON. When a log
// directory is configured every record is also appended as JSON to
// zipcrack.log so long unattended searches leave an audit trail. The package
// also exposes field-name constants, attribute helpers, and a no-op logger
// for tests and wiring code that cannot fail.
package logging
