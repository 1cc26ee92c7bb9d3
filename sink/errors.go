package sink

import "errors"

var (
	// ErrStoreRequired is returned when no vector store is provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrUpload wraps a batch that could not be stored after all retries.
	ErrUpload = errors.New("upload failed")

	// ErrCircuitOpen is returned while the circuit breaker rejects requests.
	ErrCircuitOpen = errors.New("upload circuit open")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrPineconeHostRequired is returned when the Pinecone index host is empty.
	ErrPineconeHostRequired = errors.New("pinecone host required")
)
