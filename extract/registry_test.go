package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docvault/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
)

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name      string
		supported bool
	}{
		{"/vault/unprocessed/a.pdf", true},
		{"/vault/unprocessed/a.docx", true},
		{"notes.txt", true},
		{"page.html", true},
		{"page.htm", false},
		{"REPORT.PDF", false},
		{"archive.tar.gz", false},
		{"pdf", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.supported, r.Supports(tt.name), tt.name)
	}
}

func TestRegistry_LongestSuffixWins(t *testing.T) {
	r := NewRegistry()
	called := ""
	r.Register(".gz", ExtractorFunc(func(context.Context, string, []byte) ([]schema.Document, error) {
		called = ".gz"
		return nil, nil
	}))
	r.Register(".tar.gz", ExtractorFunc(func(context.Context, string, []byte) ([]schema.Document, error) {
		called = ".tar.gz"
		return nil, nil
	}))

	_, err := r.Load(context.Background(), "backup.tar.gz", nil)
	require.NoError(t, err)
	assert.Equal(t, ".tar.gz", called)
}

func TestRegistry_LoadUnsupported(t *testing.T) {
	docs, err := NewRegistry().Load(context.Background(), "/vault/unprocessed/image.png", []byte{0x89})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Nil(t, docs)
}

func TestRegistry_LoadText(t *testing.T) {
	docs, err := NewRegistry().Load(context.Background(), "/vault/unprocessed/notes/a.txt", []byte("hello world"))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "hello world", docs[0].PageContent)
	assert.Equal(t, "/vault/unprocessed/notes/a.txt", docs[0].Metadata[core.MetaSource])
	assert.Equal(t, "a.txt", docs[0].Metadata[core.MetaFileName])
	assert.Equal(t, "", docs[0].Metadata[core.MetaTitle])
}

func TestRegistry_LoadInvalidText(t *testing.T) {
	_, err := NewRegistry().Load(context.Background(), "bad.txt", []byte{0xff, 0xfe, 0xfd})
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestRegistry_WrapsExtractorErrors(t *testing.T) {
	r := NewRegistry()
	r.Register(".bin", ExtractorFunc(func(context.Context, string, []byte) ([]schema.Document, error) {
		return nil, errors.New("corrupt header")
	}))

	_, err := r.Load(context.Background(), "x.bin", nil)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorContains(t, err, "corrupt header")
}

func TestRegistry_RecoversPanics(t *testing.T) {
	r := NewRegistry()
	r.Register(".bin", ExtractorFunc(func(context.Context, string, []byte) ([]schema.Document, error) {
		panic("index out of range")
	}))

	docs, err := r.Load(context.Background(), "x.bin", nil)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Nil(t, docs)
}

func TestRegistry_EmptyResultIsNotAnError(t *testing.T) {
	r := NewRegistry()
	r.Register(".empty", ExtractorFunc(func(context.Context, string, []byte) ([]schema.Document, error) {
		return nil, nil
	}))

	docs, err := r.Load(context.Background(), "x.empty", nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestPDFExtractor_Malformed(t *testing.T) {
	_, err := NewRegistry().Load(context.Background(), "broken.pdf", []byte("not a pdf at all"))
	assert.ErrorIs(t, err, ErrExtraction)
}
