// Package logging provides structured logging for the Digital Twin Analyzer
// tooling.
//
// It wraps the standard library's log/slog with configuration-driven level,
// format, and destination selection, plus default service/version fields on
// every record. Packages that need logging either take a *logging.Logger or
// declare a minimal local Logger interface so they stay testable without
// real output.
package logging
