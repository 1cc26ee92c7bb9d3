package extract

import "errors"

var (
	// ErrUnsupported is returned when no extractor matches a file suffix.
	ErrUnsupported = errors.New("unsupported file type")

	// ErrExtraction wraps failures raised while decoding a file.
	ErrExtraction = errors.New("extraction failed")

	// ErrInvalidSelector is returned for malformed element selectors.
	ErrInvalidSelector = errors.New("invalid element selector")
)
