package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/docvault/core"
	"github.com/tmc/langchaingo/schema"
)

// PDFExtractor produces one document per page that has text. Page numbers
// in metadata are zero-based.
type PDFExtractor struct{}

func (PDFExtractor) Extract(ctx context.Context, source string, data []byte) ([]schema.Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtraction, source, err)
	}

	total := reader.NumPage()
	docs := make([]schema.Document, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(make(map[string]*pdf.Font))
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %w", ErrExtraction, source, i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, schema.Document{
			PageContent: text,
			Metadata: map[string]any{
				core.MetaPage:       i - 1,
				core.MetaTotalPages: total,
				core.MetaFormat:     "pdf",
			},
		})
	}
	return docs, nil
}
