// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/docvault/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalChunkRecord serializes a ChunkRecord to bytes.
func MarshalChunkRecord(record *core.ChunkRecord) []byte {
	buf := make([]byte, sizeChunkRecord(record))
	marshalChunkRecord(record, buf)
	return buf
}

// UnmarshalChunkRecord deserializes a ChunkRecord from bytes.
func UnmarshalChunkRecord(data []byte) (*core.ChunkRecord, error) {
	record, err := unmarshalChunkRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return record, nil
}

// Field order: Id, Key, Namespace, Text, Metadata, Vector, InsertedAt (unix micro).
// Metadata keys are written sorted so equal records encode identically.

func sizeChunkRecord(r *core.ChunkRecord) (size int) {
	size += varint.Uint64.Size(uint64(r.Id))
	size += ord.String.Size(r.Key)
	size += ord.String.Size(r.Namespace)
	size += ord.String.Size(r.Text)
	size += varint.Int.Size(len(r.Metadata))
	for k, v := range r.Metadata {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	size += varint.Int.Size(len(r.Vector))
	for _, f := range r.Vector {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	size += varint.Int64.Size(unixMicro(r.InsertedAt))
	return size
}

func marshalChunkRecord(r *core.ChunkRecord, bs []byte) (n int) {
	n += varint.Uint64.Marshal(uint64(r.Id), bs[n:])
	n += ord.String.Marshal(r.Key, bs[n:])
	n += ord.String.Marshal(r.Namespace, bs[n:])
	n += ord.String.Marshal(r.Text, bs[n:])
	n += varint.Int.Marshal(len(r.Metadata), bs[n:])
	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(r.Metadata[k], bs[n:])
	}
	n += varint.Int.Marshal(len(r.Vector), bs[n:])
	for _, f := range r.Vector {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	n += varint.Int64.Marshal(unixMicro(r.InsertedAt), bs[n:])
	return n
}

func unmarshalChunkRecord(bs []byte) (*core.ChunkRecord, error) {
	var (
		r   core.ChunkRecord
		n   int
		m   int
		err error
	)

	id, m, err := varint.Uint64.Unmarshal(bs[n:])
	if err != nil {
		return nil, err
	}
	n += m
	r.Id = core.ID(id)

	for _, dst := range []*string{&r.Key, &r.Namespace, &r.Text} {
		*dst, m, err = ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, err
		}
		n += m
	}

	count, m, err := varint.Int.Unmarshal(bs[n:])
	if err != nil {
		return nil, err
	}
	n += m
	if count < 0 || count > len(bs) {
		return nil, ErrTruncatedData
	}
	if count > 0 {
		r.Metadata = make(map[string]string, count)
	}
	for i := 0; i < count; i++ {
		k, m, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, err
		}
		n += m
		v, m, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, err
		}
		n += m
		r.Metadata[k] = v
	}

	count, m, err = varint.Int.Unmarshal(bs[n:])
	if err != nil {
		return nil, err
	}
	n += m
	if count < 0 || count > len(bs)-n {
		return nil, ErrTruncatedData
	}
	if count > 0 {
		r.Vector = make([]float32, count)
	}
	for i := 0; i < count; i++ {
		bits, m, err := varint.Uint32.Unmarshal(bs[n:])
		if err != nil {
			return nil, err
		}
		n += m
		r.Vector[i] = math.Float32frombits(bits)
	}

	micros, _, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return nil, err
	}
	if micros != 0 {
		r.InsertedAt = time.UnixMicro(micros).UTC()
	}
	return &r, nil
}

func unixMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}
