package pipeline

import "errors"

var (
	// ErrTrackerRequired is returned when a state tracker is not provided.
	ErrTrackerRequired = errors.New("state tracker required")

	// ErrExtractorRequired is returned when an extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrChunkerRequired is returned when a chunker is not provided.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrUploaderRequired is returned when an uploader is not provided.
	ErrUploaderRequired = errors.New("uploader required")

	// ErrPanic wraps a panic recovered while processing a file.
	ErrPanic = errors.New("panic while processing file")
)
