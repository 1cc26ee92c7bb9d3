package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/schema"
)

func TestValidateChunkRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *ChunkRecord
		wantErr error
	}{
		{
			name:    "valid record",
			record:  &ChunkRecord{Text: "hello", Vector: []float32{1}},
			wantErr: nil,
		},
		{
			name:    "valid record with ID 0 and no key",
			record:  &ChunkRecord{Id: 0, Text: "hello", Vector: []float32{0.5, 0.5}},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidChunkRecord,
		},
		{
			name:    "empty text",
			record:  &ChunkRecord{Vector: []float32{1}},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "empty vector",
			record:  &ChunkRecord{Text: "hello"},
			wantErr: ErrEmptyVector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunkRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunkRecord() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunkRecord() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidChunkRecord) {
				t.Errorf("ValidateChunkRecord() error should wrap ErrInvalidChunkRecord")
			}
		})
	}
}

func TestValidateChunkSequence(t *testing.T) {
	doc := func(id any) schema.Document {
		return schema.Document{PageContent: "x", Metadata: map[string]any{MetaChunkID: id}}
	}

	assert.NoError(t, ValidateChunkSequence(nil))
	assert.NoError(t, ValidateChunkSequence([]schema.Document{doc(0), doc(1), doc(2)}))
	assert.ErrorIs(t, ValidateChunkSequence([]schema.Document{doc(0), doc(2)}), ErrInvalidChunkID)
	assert.ErrorIs(t, ValidateChunkSequence([]schema.Document{doc(1)}), ErrInvalidChunkID)
	assert.ErrorIs(t, ValidateChunkSequence([]schema.Document{doc("0")}), ErrInvalidChunkID)
}

func TestValidateTransition(t *testing.T) {
	allowed := [][2]FileState{
		{StateUnseen, StateExtracting},
		{StateUnseen, StateSkipped},
		{StateExtracting, StateChunking},
		{StateExtracting, StateSkipped},
		{StateExtracting, StateFailed},
		{StateChunking, StateUploading},
		{StateChunking, StateSkipped},
		{StateUploading, StateMoving},
		{StateUploading, StateFailed},
		{StateMoving, StateDone},
		{StateMoving, StateFailed},
	}
	for _, pair := range allowed {
		assert.NoError(t, ValidateTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	denied := [][2]FileState{
		{StateUnseen, StateDone},
		{StateUploading, StateSkipped},
		{StateDone, StateExtracting},
		{StateSkipped, StateMoving},
		{StateFailed, StateDone},
	}
	for _, pair := range denied {
		assert.ErrorIs(t, ValidateTransition(pair[0], pair[1]), ErrInvalidTransition, "%s -> %s", pair[0], pair[1])
	}
}

func TestFlattenMetadata(t *testing.T) {
	got := FlattenMetadata(map[string]any{
		MetaSource:  "/vault/a.txt",
		MetaChunkID: 3,
		MetaTitle:   nil,
	})
	assert.Equal(t, map[string]string{
		MetaSource:  "/vault/a.txt",
		MetaChunkID: "3",
		MetaTitle:   "",
	}, got)
	assert.Nil(t, FlattenMetadata(nil))
}
