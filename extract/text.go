package extract

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/poiesic/docvault/core"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// TextExtractor loads UTF-8 plain text as a single document.
type TextExtractor struct{}

func (TextExtractor) Extract(ctx context.Context, source string, data []byte) ([]schema.Document, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrExtraction, source)
	}
	docs, err := documentloaders.NewText(bytes.NewReader(data)).Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]any)
		}
		docs[i].Metadata[core.MetaFormat] = "text"
	}
	return docs, nil
}
