// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package docvault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/ai/openai"
	"github.com/poiesic/docvault/chunk"
	"github.com/poiesic/docvault/config"
	"github.com/poiesic/docvault/extract"
	"github.com/poiesic/docvault/pipeline"
	"github.com/poiesic/docvault/sink"
	"github.com/poiesic/docvault/storage/badger"
	"github.com/poiesic/docvault/vault"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// Ingestor wires a vault, the extractors, a chunker and an upload sink into
// one pipeline built from a config.Config.
type Ingestor struct {
	config   *config.Config
	vault    *vault.Vault
	registry *extract.Registry
	chunker  *chunk.Chunker
	store    vectorstores.VectorStore
	sink     *sink.Sink
	pipeline *pipeline.Pipeline
	provider ai.AIProvider
	backend  *badger.Backend
	repo     *badger.ChunkRepository
	logger   *slog.Logger
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*ingestorOptions)

type ingestorOptions struct {
	storage  vault.Storage
	provider ai.AIProvider
	store    vectorstores.VectorStore
	progress io.Writer
	logger   *slog.Logger
}

// WithStorage replaces the afs-backed vault storage.
func WithStorage(storage vault.Storage) IngestorOption {
	return func(o *ingestorOptions) {
		o.storage = storage
	}
}

// WithProvider replaces the OpenAI-compatible embedding provider.
func WithProvider(provider ai.AIProvider) IngestorOption {
	return func(o *ingestorOptions) {
		o.provider = provider
	}
}

// WithStore uploads to store instead of the one named by the config.
func WithStore(store vectorstores.VectorStore) IngestorOption {
	return func(o *ingestorOptions) {
		o.store = store
	}
}

// WithProgress reports sweep progress to w.
func WithProgress(w io.Writer) IngestorOption {
	return func(o *ingestorOptions) {
		o.progress = w
	}
}

func WithLogger(logger *slog.Logger) IngestorOption {
	return func(o *ingestorOptions) {
		o.logger = logger
	}
}

// NewIngestor validates cfg and builds every component. Close releases the
// store and provider.
func NewIngestor(cfg *config.Config, opts ...IngestorOption) (*Ingestor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	options := &ingestorOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.storage == nil {
		options.storage = vault.NewAFSStorage()
	}

	ing := &Ingestor{config: cfg, logger: options.logger}

	// Any failure below releases what was already opened
	ok := false
	defer func() {
		if !ok {
			ing.Close()
		}
	}()

	var err error
	ing.vault, err = vault.New(options.storage, cfg.VaultConfig(), vault.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	ing.registry = extract.NewRegistry(append(cfg.ExtractOptions(), extract.WithLogger(options.logger))...)

	splitter, err := chunk.NewSplitter(cfg.ChunkConfig())
	if err != nil {
		return nil, err
	}
	ing.chunker, err = chunk.New(splitter, chunk.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	ing.store = options.store
	if ing.store == nil {
		ing.provider = options.provider
		if ing.provider == nil {
			ing.provider, err = openai.NewProvider(ai.NewConfig(cfg.AIOptions()...))
			if err != nil {
				return nil, err
			}
		}
		if err := ing.openStore(); err != nil {
			return nil, err
		}
	}

	ing.sink, err = sink.New(ing.store, cfg.SinkConfig(), sink.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithConcurrency(cfg.Pipeline.Concurrency),
		pipeline.WithMoveOnUploadFailure(cfg.Pipeline.MoveOnUploadFailure),
		pipeline.WithLogger(options.logger),
	}
	if options.progress != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithProgress(options.progress))
	}
	ing.pipeline, err = pipeline.NewPipeline(ing.vault, ing.registry, ing.chunker, ing.sink, pipelineOpts...)
	if err != nil {
		return nil, err
	}

	ok = true
	return ing, nil
}

func (ing *Ingestor) openStore() error {
	cfg := ing.config
	switch cfg.Store.Type {
	case config.StorePinecone:
		store, err := sink.NewPineconeStore(sink.PineconeConfig{
			Host:      cfg.Store.Pinecone.Host,
			APIKey:    cfg.Store.Pinecone.APIKey,
			Namespace: cfg.Store.Namespace,
		}, ai.AsLangchain(ing.provider.Embedder()))
		if err != nil {
			return err
		}
		ing.store = store
	default:
		backend, err := badger.OpenBackend(cfg.Store.Path, false)
		if err != nil {
			return err
		}
		ing.backend = backend
		ing.repo, err = badger.NewChunkRepository(backend)
		if err != nil {
			return err
		}
		store, err := badger.NewVectorStore(ing.repo, ing.provider.Embedder(),
			badger.WithNamespace(cfg.Store.Namespace),
			badger.WithStoreLogger(ing.logger))
		if err != nil {
			return err
		}
		ing.store = store
	}
	return nil
}

// Close releases the pipeline, the local store and the embedding provider.
func (ing *Ingestor) Close() error {
	var errs []error
	if ing.pipeline != nil {
		ing.pipeline.Release()
	}
	if ing.repo != nil {
		if err := ing.repo.Close(); err != nil {
			ing.logger.Error("error closing chunk repository", "err", err)
			errs = append(errs, err)
		}
	}
	if ing.backend != nil {
		if err := ing.backend.Close(); err != nil {
			ing.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	if ing.provider != nil {
		if err := ing.provider.Close(); err != nil {
			ing.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Init creates the vault areas.
func (ing *Ingestor) Init(ctx context.Context) error {
	return ing.vault.Init(ctx)
}

// Sweep runs the pipeline once over the unprocessed area.
func (ing *Ingestor) Sweep(ctx context.Context) (*pipeline.Report, error) {
	return ing.pipeline.Sweep(ctx)
}

func (ing *Ingestor) Vault() *vault.Vault {
	return ing.vault
}

func (ing *Ingestor) Store() vectorstores.VectorStore {
	return ing.store
}

// Status summarizes the vault and the store.
type Status struct {
	Root        string
	Unprocessed []string
	Processed   []string
	// StoredChunks is -1 when the store cannot report a count.
	StoredChunks int
}

type counter interface {
	Count(ctx context.Context) (int, error)
}

func (ing *Ingestor) Status(ctx context.Context) (*Status, error) {
	unprocessed, err := ing.vault.ListUnprocessed(ctx)
	if err != nil {
		return nil, err
	}
	processed, err := ing.vault.ListProcessed(ctx)
	if err != nil {
		return nil, err
	}
	status := &Status{
		Root:         ing.config.Root,
		Unprocessed:  unprocessed,
		Processed:    processed,
		StoredChunks: -1,
	}
	if c, ok := ing.store.(counter); ok {
		n, err := c.Count(ctx)
		if err != nil {
			return nil, err
		}
		status.StoredChunks = n
	}
	return status, nil
}

// Inspection is the extract and chunk output of one file.
type Inspection struct {
	Path      string
	Source    string
	Documents []schema.Document
	Chunks    []schema.Document
}

// Inspect extracts and chunks an unprocessed file without uploading or
// moving it.
func (ing *Ingestor) Inspect(ctx context.Context, rel string) (*Inspection, error) {
	data, err := ing.vault.Read(ctx, rel)
	if err != nil {
		return nil, err
	}
	source := ing.vault.Locate(rel)
	docs, chunks, err := ing.pipeline.Prepare(ctx, source, data)
	if err != nil {
		return nil, err
	}
	return &Inspection{Path: rel, Source: source, Documents: docs, Chunks: chunks}, nil
}
