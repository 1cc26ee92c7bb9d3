package ai

import (
	"context"

	"github.com/tmc/langchaingo/embeddings"
)

// langchainEmbedder exposes an Embedder through the langchaingo embeddings contract
// so it can back langchaingo vector stores.
type langchainEmbedder struct {
	embedder Embedder
}

var _ embeddings.Embedder = (*langchainEmbedder)(nil)

// AsLangchain adapts an Embedder to embeddings.Embedder.
func AsLangchain(e Embedder) embeddings.Embedder {
	return &langchainEmbedder{embedder: e}
}

func (l *langchainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return l.embedder.EmbedTexts(ctx, texts)
}

func (l *langchainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return l.embedder.EmbedText(ctx, text)
}
