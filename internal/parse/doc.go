// Package parse normalizes recognized text into typed license fields:
// ISO dates, formatted license numbers, Cyrillic names, issuer lines and
// category lists. Rejections return empty values, never errors.
package parse
