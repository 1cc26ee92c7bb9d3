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


package core

import (
	"fmt"

	"github.com/tmc/langchaingo/schema"
)

// ValidateChunkRecord validates a ChunkRecord before it is stored.
//
// Validation rules:
//   - Text must not be empty
//   - Vector must not be empty
//
// NOT validated:
//   - ID (0 is valid until assigned from the database sequence)
//   - Key (assigned on insert when empty)
func ValidateChunkRecord(record *ChunkRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidChunkRecord)
	}

	if record.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyContent)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyVector)
	}

	return nil
}

// ValidateChunkSequence checks that chunks carry chunk_id values 0..n-1 in order.
func ValidateChunkSequence(chunks []schema.Document) error {
	for i, c := range chunks {
		id, ok := c.Metadata[MetaChunkID].(int)
		if !ok {
			return fmt.Errorf("%w: chunk %d has no %s", ErrInvalidChunkID, i, MetaChunkID)
		}
		if id != i {
			return fmt.Errorf("%w: position %d carries id %d", ErrInvalidChunkID, i, id)
		}
	}
	return nil
}

// FlattenMetadata converts document metadata into the string map stored with
// chunk records.
func FlattenMetadata(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
