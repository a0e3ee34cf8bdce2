// Package logging builds the process logger.
//
// Logs go to stderr; stdout carries MCP protocol messages and JSON
// results. Records pass through RedactingHandler unless redaction is
// turned off, so names, dates and document numbers read from a license
// never reach log files by default.
package logging
