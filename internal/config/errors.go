package config

import "errors"

// Configuration errors returned by Load and Validate. Callers match them
// with errors.Is.
var (
	// ErrConfigNotFound is returned when an explicitly named configuration
	// file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidEnv is wrapped around RUDL_* values that cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")

	// ErrInvalidWorkers is returned when Workers is below 1.
	ErrInvalidWorkers = errors.New("invalid workers: must be at least 1")

	// ErrInvalidTTL is returned when UploadTTL is not positive.
	ErrInvalidTTL = errors.New("invalid upload ttl: must be positive")

	// ErrInvalidMaxDimension is returned when MaxImageDimension is not positive.
	ErrInvalidMaxDimension = errors.New("invalid max image dimension: must be positive")

	// ErrInvalidConfidence is returned when a confidence or threshold is
	// outside [0,1].
	ErrInvalidConfidence = errors.New("invalid confidence: must be between 0 and 1")

	// ErrNoLanguages is returned when no recognition language is configured.
	ErrNoLanguages = errors.New("no recognition languages configured")

	// ErrNoUploadDir is returned when uploads are stored but no directory is set.
	ErrNoUploadDir = errors.New("upload directory required when storing uploads")
)
