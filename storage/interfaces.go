package storage

import (
	"context"

	"github.com/poiesic/docvault/core"
)

// ChunkRepository persists embedded chunk records and answers similarity queries.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// AddChunkRecords adds one or more chunk records to storage.
	// IDs are generated from a sequence and InsertedAt is set.
	// Records with an empty Key receive a random UUID key.
	// Returns the records with generated fields populated.
	AddChunkRecords(ctx context.Context, records ...*core.ChunkRecord) ([]*core.ChunkRecord, error)

	// GetChunkRecord retrieves a single record by namespace and ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetChunkRecord(ctx context.Context, namespace string, id core.ID) (*core.ChunkRecord, error)

	// GetChunkRecordByKey retrieves a record by the key returned from AddChunkRecords.
	// Returns ErrNotFound if the key is unknown.
	GetChunkRecordByKey(ctx context.Context, key string) (*core.ChunkRecord, error)

	// CountChunkRecords returns the number of records stored in a namespace.
	CountChunkRecords(ctx context.Context, namespace string) (int, error)

	// FindSimilar finds records in a namespace similar to the given unit vector.
	// Returns records with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, namespace string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Close releases repository resources. The backend is closed separately.
	Close() error
}
