package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	idSeq, err := backend.GetSequence(chunkRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChunkRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChunkRepository) Close() error {
	return r.idSeq.Release()
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, namespace string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, namespace, vector, minSimilarity, limit)
}

// AddChunkRecords adds one or more chunk records to storage in a single transaction.
func (r *ChunkRepository) AddChunkRecords(ctx context.Context, records ...*core.ChunkRecord) ([]*core.ChunkRecord, error) {
	for _, record := range records {
		if err := core.ValidateChunkRecord(record); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			record.Id = core.ID(nextID)
			if record.Key == "" {
				record.Key = uuid.NewString()
			}
			record.InsertedAt = time.Now().UTC()

			key := makeChunkRecordKey(record.Namespace, record.Id)
			if err := tx.Set(key, storage.MarshalChunkRecord(record)); err != nil {
				return err
			}
			if err := tx.Set(makeChunkLookupKey(record.Key), key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// GetChunkRecord retrieves a single chunk record by namespace and ID.
func (r *ChunkRepository) GetChunkRecord(ctx context.Context, namespace string, id core.ID) (*core.ChunkRecord, error) {
	var result *core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readChunkRecord(tx, makeChunkRecordKey(namespace, id))
		return err
	}, false)
	return result, err
}

// GetChunkRecordByKey retrieves a chunk record by its caller-facing key.
func (r *ChunkRepository) GetChunkRecordByKey(ctx context.Context, key string) (*core.ChunkRecord, error) {
	var result *core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeChunkLookupKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		primary, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		result, err = r.readChunkRecord(tx, primary)
		return err
	}, false)
	return result, err
}

// CountChunkRecords returns the number of chunk records in a namespace.
func (r *ChunkRepository) CountChunkRecords(ctx context.Context, namespace string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.backend.scanRecords(tx, namespace, func(*core.ChunkRecord) error {
			count++
			return nil
		})
	}, false)
	return count, err
}

// readChunkRecord reads a record within a transaction.
// Returns storage.ErrNotFound if the key doesn't exist.
func (r *ChunkRepository) readChunkRecord(tx *badger.Txn, key []byte) (*core.ChunkRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var record *core.ChunkRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalChunkRecord(val)
		return err
	})
	return record, err
}
