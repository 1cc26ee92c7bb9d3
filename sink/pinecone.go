package sink

import (
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/pinecone"
)

// PineconeConfig addresses a Pinecone index.
type PineconeConfig struct {
	Host      string
	APIKey    string
	Namespace string
}

// NewPineconeStore opens a Pinecone index as a vector store. Pinecone
// computes nothing itself; embedder produces the vectors.
func NewPineconeStore(config PineconeConfig, embedder embeddings.Embedder) (vectorstores.VectorStore, error) {
	if config.Host == "" {
		return nil, ErrPineconeHostRequired
	}
	opts := []pinecone.Option{
		pinecone.WithHost(config.Host),
		pinecone.WithEmbedder(embedder),
	}
	if config.APIKey != "" {
		opts = append(opts, pinecone.WithAPIKey(config.APIKey))
	}
	if config.Namespace != "" {
		opts = append(opts, pinecone.WithNameSpace(config.Namespace))
	}
	store, err := pinecone.New(opts...)
	if err != nil {
		return nil, err
	}
	return store, nil
}
