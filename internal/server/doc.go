// Package server implements the MCP (Model Context Protocol) server for
// driver license extraction.
//
// The server speaks JSON-RPC 2.0 over a line-delimited stream, stdin and
// stdout by default:
//   - Input: JSON-RPC requests, one per line
//   - Output: JSON-RPC responses, one per line
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - license_extract: Read the fields of a license from front and back
//     photos given as file paths or base64 data; JSON or Markdown result
//   - license_overlay: Aligned canvas with the regions that would be read
//     outlined, as base64 PNG
//   - uploads_cleanup: Delete stored uploads older than a retention period
//   - uploads_list: Stored uploads of one request, from the upload index
//   - ocr_info: Text recognition engine and storage status
//
// # Error Handling
//
// An extraction that cannot read anything is still a successful tool call;
// its response has status "failed" and explains why in its warnings. Tool
// errors (unreadable arguments, missing files, storage not configured) are
// returned as JSON-RPC errors with code -32000 and the Go error string as
// data.
//
// # Logging
//
// Diagnostics go to the injected *slog.Logger, never to the protocol
// stream.
//
// # Usage
//
//	srv := server.New(p,
//	    server.WithStore(store),
//	    server.WithEngine(engine),
//	    server.WithLogger(logger),
//	)
//	if err := srv.Run(ctx); err != nil {
//	    return err
//	}
package server
