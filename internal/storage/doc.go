// Package storage keeps the aligned images of extraction requests for a
// limited time.
//
// Each side is saved as <upload_dir>/<request_id>_<role>.jpg (JPEG quality
// 92) and referenced by <media_url>/ocr_uploads/<file>. The content hash is
// the SHA-256 of the original upload bytes, so it identifies what the
// client sent rather than the re-encoded file. A disabled store writes
// nothing and only hashes.
//
// An optional SQLite Index (modernc.org/sqlite, no cgo) records every saved
// file so uploads can be looked up by request id. Cleanup removes files
// older than a TTL and keeps the index in step.
package storage
