package badger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// DefaultNamespace is used when neither the store nor the call names one.
const DefaultNamespace = "default"

// VectorStore is a local langchaingo vector store backed by a ChunkRepository.
// Documents are embedded, normalized to unit length and persisted; similarity
// is the dot product of unit vectors.
type VectorStore struct {
	repo      storage.ChunkRepository
	embedder  embeddings.Embedder
	namespace string
	logger    *slog.Logger
}

var _ vectorstores.VectorStore = (*VectorStore)(nil)

// StoreOption configures a VectorStore.
type StoreOption func(*VectorStore)

// WithNamespace sets the default namespace for documents and queries.
func WithNamespace(namespace string) StoreOption {
	return func(s *VectorStore) {
		if namespace != "" {
			s.namespace = namespace
		}
	}
}

// WithStoreLogger sets a custom logger.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *VectorStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewVectorStore creates a vector store over repo that embeds with embedder.
func NewVectorStore(repo storage.ChunkRepository, embedder ai.Embedder, opts ...StoreOption) (*VectorStore, error) {
	if repo == nil {
		return nil, fmt.Errorf("chunk repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	s := &VectorStore{
		repo:      repo,
		embedder:  ai.AsLangchain(embedder),
		namespace: DefaultNamespace,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "badger-store")
	return s, nil
}

// AddDocuments embeds and stores docs, returning one key per document in input order.
func (s *VectorStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	opts := s.getOptions(options...)
	embedder := s.getEmbedder(opts)
	namespace := s.getNamespace(opts)

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("%w: expected %d, received %d", storage.ErrEmbeddingMismatch, len(docs), len(vectors))
	}

	records := make([]*core.ChunkRecord, len(docs))
	for i, doc := range docs {
		records[i] = &core.ChunkRecord{
			Namespace: namespace,
			Text:      doc.PageContent,
			Metadata:  core.FlattenMetadata(doc.Metadata),
			Vector:    ai.NormalizeVector(vectors[i]),
		}
	}

	added, err := s.repo.AddChunkRecords(ctx, records...)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(added))
	for i, record := range added {
		keys[i] = record.Key
	}
	s.logger.Debug("stored chunks", "namespace", namespace, "count", len(keys))
	return keys, nil
}

// SimilaritySearch embeds query and returns the numDocuments most similar documents.
func (s *VectorStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := s.getOptions(options...)
	if opts.ScoreThreshold < 0 || opts.ScoreThreshold > 1 {
		return nil, fmt.Errorf("%w: score threshold must be between 0 and 1", storage.ErrInvalidQuery)
	}

	vector, err := s.getEmbedder(opts).EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := s.repo.FindSimilar(ctx, s.getNamespace(opts), ai.NormalizeVector(vector), opts.ScoreThreshold, numDocuments)
	if err != nil {
		return nil, err
	}

	docs := make([]schema.Document, len(results))
	for i, result := range results {
		metadata := make(map[string]any, len(result.Record.Metadata))
		for k, v := range result.Record.Metadata {
			metadata[k] = v
		}
		docs[i] = schema.Document{
			PageContent: result.Record.Text,
			Metadata:    metadata,
			Score:       result.Score,
		}
	}
	return docs, nil
}

// Count returns the number of chunks stored in the default namespace.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	return s.repo.CountChunkRecords(ctx, s.namespace)
}

// Namespace returns the default namespace.
func (s *VectorStore) Namespace() string {
	return s.namespace
}

func (s *VectorStore) getOptions(options ...vectorstores.Option) vectorstores.Options {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}

func (s *VectorStore) getNamespace(opts vectorstores.Options) string {
	if opts.NameSpace != "" {
		return opts.NameSpace
	}
	return s.namespace
}

func (s *VectorStore) getEmbedder(opts vectorstores.Options) embeddings.Embedder {
	if opts.Embedder != nil {
		return opts.Embedder
	}
	return s.embedder
}
