package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/poiesic/docvault/core"
	"github.com/tmc/langchaingo/schema"
)

// Extractor converts the bytes of one file into raw documents.
type Extractor interface {
	Extract(ctx context.Context, source string, data []byte) ([]schema.Document, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, source string, data []byte) ([]schema.Document, error)

func (f ExtractorFunc) Extract(ctx context.Context, source string, data []byte) ([]schema.Document, error) {
	return f(ctx, source, data)
}

// Registry dispatches files to extractors by suffix.
type Registry struct {
	extractors map[string]Extractor
	suffixes   []string
	html       *HTMLExtractor
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHTMLSelectors restricts HTML extraction to the given elements, in order.
func WithHTMLSelectors(selectors ...ElementSelector) Option {
	return func(r *Registry) {
		r.html.Selectors = append([]ElementSelector(nil), selectors...)
	}
}

// WithHTMLSeparator sets the string placed between text nodes of one element.
func WithHTMLSeparator(separator string) Option {
	return func(r *Registry) {
		r.html.Separator = separator
	}
}

// NewRegistry creates a registry with the default extractors for
// .pdf, .docx, .txt and .html.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		extractors: make(map[string]Extractor),
		html:       &HTMLExtractor{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "extract")

	r.Register(".pdf", PDFExtractor{})
	r.Register(".docx", DOCXExtractor{})
	r.Register(".txt", TextExtractor{})
	r.Register(".html", r.html)
	return r
}

// Register adds or replaces the extractor for a suffix.
func (r *Registry) Register(suffix string, extractor Extractor) {
	if _, exists := r.extractors[suffix]; !exists {
		r.suffixes = append(r.suffixes, suffix)
		// Longest suffix wins so ".tar.gz" beats ".gz"
		sort.SliceStable(r.suffixes, func(i, j int) bool {
			return len(r.suffixes[i]) > len(r.suffixes[j])
		})
	}
	r.extractors[suffix] = extractor
}

// Lookup returns the extractor responsible for name.
func (r *Registry) Lookup(name string) (Extractor, bool) {
	for _, suffix := range r.suffixes {
		if strings.HasSuffix(name, suffix) {
			return r.extractors[suffix], true
		}
	}
	return nil, false
}

// Supports reports whether name has a registered suffix.
func (r *Registry) Supports(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Load extracts raw documents from a file. Every returned document carries
// source, file_name and title metadata.
func (r *Registry) Load(ctx context.Context, source string, data []byte) ([]schema.Document, error) {
	extractor, ok := r.Lookup(source)
	if !ok {
		r.logger.Warn("unsupported file type", "source", source)
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path.Base(source))
	}

	docs, err := safeExtract(ctx, extractor, source, data)
	if err != nil {
		if !errors.Is(err, ErrExtraction) {
			err = fmt.Errorf("%w: %s: %w", ErrExtraction, source, err)
		}
		r.logger.Error("error extracting file", "source", source, "err", err)
		return nil, err
	}

	fileName := path.Base(source)
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]any)
		}
		docs[i].Metadata[core.MetaSource] = source
		docs[i].Metadata[core.MetaFileName] = fileName
		if _, ok := docs[i].Metadata[core.MetaTitle]; !ok {
			docs[i].Metadata[core.MetaTitle] = ""
		}
	}
	r.logger.Debug("file extracted", "source", source, "documents", len(docs))
	return docs, nil
}

func safeExtract(ctx context.Context, extractor Extractor, source string, data []byte) (docs []schema.Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: panic: %v", ErrExtraction, source, rec)
		}
	}()
	return extractor.Extract(ctx, source, data)
}
