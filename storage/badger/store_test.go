package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docvault/ai/mock"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

func newTestStore(t *testing.T, embedder *mock.MockEmbedder, opts ...StoreOption) (*VectorStore, *ChunkRepository) {
	t.Helper()
	store, repo, backend, err := NewMemoryVectorStore(embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return store, repo
}

func TestNewVectorStore_RequiresDependencies(t *testing.T) {
	_, err := NewVectorStore(nil, mock.NewMockEmbedder())
	assert.Error(t, err)

	repo, _ := newTestRepository(t)
	_, err = NewVectorStore(repo, nil)
	assert.Error(t, err)
}

func TestVectorStore_AddDocumentsAndSearch(t *testing.T) {
	store, repo := newTestStore(t, mock.NewMockEmbedder(), WithNamespace("manuals"))
	ctx := context.Background()

	docs := []schema.Document{
		{PageContent: "how to reset the router", Metadata: map[string]any{core.MetaChunkID: 0, core.MetaFileName: "router.txt"}},
		{PageContent: "warranty terms and conditions", Metadata: map[string]any{core.MetaChunkID: 1, core.MetaFileName: "router.txt"}},
	}

	keys, err := store.AddDocuments(ctx, docs)
	require.NoError(t, err)
	require.Len(t, keys, 2)

	record, err := repo.GetChunkRecordByKey(ctx, keys[1])
	require.NoError(t, err)
	assert.Equal(t, "manuals", record.Namespace)
	assert.Equal(t, "1", record.Metadata[core.MetaChunkID])

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	found, err := store.SimilaritySearch(ctx, "how to reset the router", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "how to reset the router", found[0].PageContent)
	assert.InDelta(t, 1.0, found[0].Score, 1e-4)
	assert.Equal(t, "router.txt", found[0].Metadata[core.MetaFileName])
}

func TestVectorStore_NamespaceOption(t *testing.T) {
	store, repo := newTestStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []schema.Document{{PageContent: "x"}}, vectorstores.WithNameSpace("alt"))
	require.NoError(t, err)

	alt, err := repo.CountChunkRecords(ctx, "alt")
	require.NoError(t, err)
	assert.Equal(t, 1, alt)

	def, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, def)
	assert.Equal(t, DefaultNamespace, store.Namespace())
}

func TestVectorStore_EmbeddingFailures(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, _ := newTestStore(t, embedder)
	ctx := context.Background()

	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}
	_, err := store.AddDocuments(ctx, []schema.Document{{PageContent: "x"}})
	assert.EqualError(t, err, "embedding service down")

	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}
	_, err = store.AddDocuments(ctx, []schema.Document{{PageContent: "x"}, {PageContent: "y"}})
	assert.ErrorIs(t, err, storage.ErrEmbeddingMismatch)
}

func TestVectorStore_EmptyInput(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, _ := newTestStore(t, embedder)

	keys, err := store.AddDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestVectorStore_InvalidThreshold(t *testing.T) {
	store, _ := newTestStore(t, mock.NewMockEmbedder())

	_, err := store.SimilaritySearch(context.Background(), "q", 3, vectorstores.WithScoreThreshold(2))
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}
