package chunk

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/docvault/core"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	SplitterRecursive = "recursive"
	SplitterLangchain = "langchain"
)

// Config selects and sizes a splitter.
type Config struct {
	Splitter     string
	ChunkSize    int
	ChunkOverlap int
}

// DefaultConfig returns the recursive splitter with 1500/250 sizing.
func DefaultConfig() Config {
	return Config{
		Splitter:     SplitterRecursive,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
}

// NewSplitter builds the splitter named by config.
func NewSplitter(config Config) (textsplitter.TextSplitter, error) {
	if config.ChunkSize <= 0 || config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return nil, fmt.Errorf("%w: size %d, overlap %d", ErrInvalidChunkSize, config.ChunkSize, config.ChunkOverlap)
	}
	switch config.Splitter {
	case "", SplitterRecursive:
		return NewRecursiveSplitter(WithChunkSize(config.ChunkSize), WithChunkOverlap(config.ChunkOverlap))
	case SplitterLangchain:
		return textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(config.ChunkSize),
			textsplitter.WithChunkOverlap(config.ChunkOverlap),
			textsplitter.WithLenFunc(utf8.RuneCountInString),
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitter, config.Splitter)
	}
}

// Chunker turns the raw documents of one file into numbered chunks.
type Chunker struct {
	splitter textsplitter.TextSplitter
	logger   *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Chunker around splitter.
func New(splitter textsplitter.TextSplitter, opts ...Option) (*Chunker, error) {
	if splitter == nil {
		return nil, ErrSplitterRequired
	}
	c := &Chunker{
		splitter: splitter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "chunker")
	return c, nil
}

// Chunk splits docs in order and numbers the flattened result. Metadata is
// copied from the source document and extended with file_name, start_index
// and chunk_id. Whitespace-only documents produce no chunks.
func (c *Chunker) Chunk(ctx context.Context, docs []schema.Document) (chunks []schema.Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			chunks = nil
			err = fmt.Errorf("%w: panic: %v", ErrChunking, rec)
		}
		if err != nil {
			c.logger.Error("error chunking documents", "err", err)
		}
	}()

	chunks = []schema.Document{}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(doc.PageContent) == "" {
			continue
		}

		var split []schema.Document
		if spanner, ok := c.splitter.(Spanner); ok {
			split = splitWithSpans(spanner, doc)
		} else {
			split, err = splitWithSearch(c.splitter, doc)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrChunking, err)
			}
		}
		chunks = append(chunks, split...)
	}

	for i := range chunks {
		chunks[i].Metadata[core.MetaChunkID] = i
	}
	c.logger.Debug("documents split", "documents", len(docs), "chunks", len(chunks))
	return chunks, nil
}

func splitWithSpans(spanner Spanner, doc schema.Document) []schema.Document {
	runes := []rune(doc.PageContent)
	var out []schema.Document
	for _, span := range spanner.Spans(doc.PageContent) {
		text := string(runes[span.Start:span.End])
		if strings.TrimSpace(text) == "" {
			continue
		}
		metadata := chunkMetadata(doc.Metadata)
		metadata[core.MetaStartIndex] = span.Start
		out = append(out, schema.Document{PageContent: text, Metadata: metadata})
	}
	return out
}

// splitWithSearch locates each chunk in the source text to recover its offset.
// Splitters that rewrite whitespace may produce chunks that cannot be found;
// those carry no start_index.
func splitWithSearch(splitter textsplitter.TextSplitter, doc schema.Document) ([]schema.Document, error) {
	split, err := textsplitter.SplitDocuments(splitter, []schema.Document{doc})
	if err != nil {
		return nil, err
	}

	from := 0
	out := make([]schema.Document, 0, len(split))
	for _, s := range split {
		metadata := chunkMetadata(s.Metadata)
		if idx := strings.Index(doc.PageContent[from:], s.PageContent); idx >= 0 {
			byteOffset := from + idx
			metadata[core.MetaStartIndex] = utf8.RuneCountInString(doc.PageContent[:byteOffset])
			from = byteOffset + 1
		}
		out = append(out, schema.Document{PageContent: s.PageContent, Metadata: metadata})
	}
	return out, nil
}

func chunkMetadata(source map[string]any) map[string]any {
	metadata := make(map[string]any, len(source)+3)
	maps.Copy(metadata, source)
	if _, ok := metadata[core.MetaFileName]; !ok {
		if src, ok := metadata[core.MetaSource].(string); ok && src != "" {
			metadata[core.MetaFileName] = path.Base(src)
		}
	}
	return metadata
}
