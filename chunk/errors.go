package chunk

import "errors"

var (
	// ErrChunking wraps failures raised by a splitter.
	ErrChunking = errors.New("chunking failed")

	// ErrInvalidChunkSize is returned for non-positive sizes or an overlap
	// that is not smaller than the size.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrSplitterRequired is returned when no splitter is provided.
	ErrSplitterRequired = errors.New("splitter required")

	// ErrUnknownSplitter is returned for an unrecognized splitter name.
	ErrUnknownSplitter = errors.New("unknown splitter")
)
