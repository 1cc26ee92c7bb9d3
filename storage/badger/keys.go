package badger

import (
	"encoding/binary"

	"github.com/poiesic/docvault/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix = "chkrec"
	chunkKeyPrefix    = "chkkey"
	chunkRecordIDSeq  = "chkrecseq"
)

// makeChunkNamespacePrefix generates the prefix shared by all records of a namespace.
// Format: prefix:namespace:
func makeChunkNamespacePrefix(namespace string) []byte {
	buf := make([]byte, 0, len(chunkRecordPrefix)+len(namespace)+2)
	buf = append(buf, chunkRecordPrefix...)
	buf = append(buf, ':')
	buf = append(buf, namespace...)
	buf = append(buf, ':')
	return buf
}

// makeChunkRecordKey generates a key for a chunk record.
// Format: prefix:namespace:id
func makeChunkRecordKey(namespace string, id core.ID) []byte {
	prefix := makeChunkNamespacePrefix(namespace)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort matches insertion order
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkLookupKey generates the secondary index key mapping a record key
// to its namespaced primary key.
// Format: prefix:key
func makeChunkLookupKey(key string) []byte {
	return []byte(chunkKeyPrefix + ":" + key)
}
