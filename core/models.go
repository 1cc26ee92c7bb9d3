package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Metadata keys attached to raw documents and chunks.
const (
	MetaSource      = "source"
	MetaTitle       = "title"
	MetaFileName    = "file_name"
	MetaChunkID     = "chunk_id"
	MetaStartIndex  = "start_index"
	MetaContentHash = "content_hash"
	MetaPage        = "page"
	MetaTotalPages  = "total_pages"
	MetaFormat      = "format"
)

// ID is a unique identifier for stored chunk records.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentHash returns the hex encoded 64-bit BLAKE2b digest of raw file bytes.
func ContentHash(data []byte) string {
	h, _ := blake2b.New(8, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ChunkRecord is the persisted form of an uploaded chunk in the local store.
type ChunkRecord struct {
	Id         ID
	Key        string            // Caller-facing identifier returned from uploads
	Namespace  string            // Vector store partition
	Text       string            // Chunk text
	Metadata   map[string]string // Flattened chunk metadata
	Vector     []float32         // Unit-normalized embedding
	InsertedAt time.Time
}

// SearchResult is a chunk record matched by vector similarity.
type SearchResult struct {
	Record *ChunkRecord
	Score  float32
}
