// Package config loads docvault settings from a YAML file, an optional
// .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/chunk"
	"github.com/poiesic/docvault/extract"
	"github.com/poiesic/docvault/sink"
	"github.com/poiesic/docvault/vault"
	"gopkg.in/yaml.v3"
)

const (
	StoreLocal    = "local"
	StorePinecone = "pinecone"
)

// Environment variables that override the file.
const (
	EnvOpenAIKey       = "OPENAI_API_KEY"
	EnvPineconeKey     = "PINECONE_API_KEY"
	EnvPineconeHost    = "PINECONE_HOST"
	EnvRoot            = "DOCVAULT_ROOT"
	EnvEmbeddingHost   = "DOCVAULT_EMBEDDING_HOST"
	EnvEmbeddingModel  = "DOCVAULT_EMBEDDING_MODEL"
	DefaultRoot        = "_local_vault"
	DefaultStorePath   = ".docvault/store"
	DefaultNamespace   = "default"
	DefaultWatchPeriod = 5 * time.Minute
)

type VaultConfig struct {
	UnprocessedDir string `yaml:"unprocessed_dir"`
	ProcessedDir   string `yaml:"processed_dir"`
	Identity       string `yaml:"identity"`
}

type HTMLConfig struct {
	Selectors []extract.ElementSelector `yaml:"selectors,omitempty"`
	Separator string                    `yaml:"separator"`
}

type ExtractConfig struct {
	HTML HTMLConfig `yaml:"html"`
}

type ChunkConfig struct {
	Splitter string `yaml:"splitter"`
	Size     int    `yaml:"size"`
	Overlap  int    `yaml:"overlap"`
}

type PineconeConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

type StoreConfig struct {
	Type      string         `yaml:"type"`
	Path      string         `yaml:"path"`
	Namespace string         `yaml:"namespace"`
	Pinecone  PineconeConfig `yaml:"pinecone"`
}

type EmbeddingConfig struct {
	Host       string `yaml:"host"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
}

type SinkConfig struct {
	BatchSize       int           `yaml:"batch_size"`
	MaxAttempts     int           `yaml:"max_attempts"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	RateLimit       float64       `yaml:"rate_limit"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
}

type PipelineConfig struct {
	Concurrency         int  `yaml:"concurrency"`
	MoveOnUploadFailure bool `yaml:"move_on_upload_failure"`
}

type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Config is the root configuration.
type Config struct {
	Root      string          `yaml:"root"`
	Vault     VaultConfig     `yaml:"vault"`
	Extract   ExtractConfig   `yaml:"extract"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Sink      SinkConfig      `yaml:"sink"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Watch     WatchConfig     `yaml:"watch"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	sinkDefaults := sink.DefaultConfig()
	return &Config{
		Root: DefaultRoot,
		Vault: VaultConfig{
			UnprocessedDir: vault.DefaultUnprocessedDir,
			ProcessedDir:   vault.DefaultProcessedDir,
			Identity:       vault.IdentityRelativePath.String(),
		},
		Chunk: ChunkConfig{
			Splitter: chunk.SplitterRecursive,
			Size:     chunk.DefaultChunkSize,
			Overlap:  chunk.DefaultChunkOverlap,
		},
		Store: StoreConfig{
			Type:      StoreLocal,
			Path:      DefaultStorePath,
			Namespace: DefaultNamespace,
		},
		Embedding: EmbeddingConfig{
			Host:      aiDefaults.EmbeddingHost,
			Model:     aiDefaults.EmbeddingModel,
			APIKey:    aiDefaults.APIKey,
			BatchSize: aiDefaults.BatchSize,
		},
		Sink: SinkConfig{
			BatchSize:       sinkDefaults.BatchSize,
			MaxAttempts:     sinkDefaults.MaxAttempts,
			RetryDelay:      sinkDefaults.RetryDelay,
			BreakerFailures: sinkDefaults.BreakerFailures,
			BreakerTimeout:  sinkDefaults.BreakerTimeout,
		},
		Pipeline: PipelineConfig{
			Concurrency:         1,
			MoveOnUploadFailure: true,
		},
		Watch: WatchConfig{Interval: DefaultWatchPeriod},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFile loads variables from a .env file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables found by lookup.
// Pass os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, target *string) {
		if v, ok := lookup(key); ok && v != "" {
			*target = v
		}
	}
	set(EnvRoot, &c.Root)
	set(EnvOpenAIKey, &c.Embedding.APIKey)
	set(EnvEmbeddingHost, &c.Embedding.Host)
	set(EnvEmbeddingModel, &c.Embedding.Model)
	set(EnvPineconeKey, &c.Store.Pinecone.APIKey)
	set(EnvPineconeHost, &c.Store.Pinecone.Host)
}

// Save writes c to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the configuration can build an ingestor.
func (c *Config) Validate() error {
	var errs []error
	if c.Root == "" {
		errs = append(errs, errors.New("root is required"))
	}
	if _, err := vault.ParseIdentity(c.Vault.Identity); err != nil {
		errs = append(errs, err)
	}
	if _, err := chunk.NewSplitter(c.ChunkConfig()); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Type {
	case StoreLocal:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the local store"))
		}
	case StorePinecone:
		if c.Store.Pinecone.Host == "" {
			errs = append(errs, fmt.Errorf("store.pinecone.host or %s is required", EnvPineconeHost))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store type %q", c.Store.Type))
	}
	if c.Sink.BatchSize < 0 || c.Sink.MaxAttempts < 0 || c.Sink.RetryDelay < 0 || c.Sink.RateLimit < 0 {
		errs = append(errs, errors.New("sink settings cannot be negative"))
	}
	if c.Pipeline.Concurrency < 0 {
		errs = append(errs, errors.New("pipeline.concurrency cannot be negative"))
	}
	if c.Watch.Interval < 0 {
		errs = append(errs, errors.New("watch.interval cannot be negative"))
	}
	aiConfig := ai.DefaultConfig()
	for _, opt := range c.AIOptions() {
		opt(aiConfig)
	}
	if err := aiConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// VaultConfig converts to the vault layout. Identity errors are reported
// by Validate.
func (c *Config) VaultConfig() vault.Config {
	identity, _ := vault.ParseIdentity(c.Vault.Identity)
	return vault.Config{
		Root:           c.Root,
		UnprocessedDir: c.Vault.UnprocessedDir,
		ProcessedDir:   c.Vault.ProcessedDir,
		Identity:       identity,
	}
}

func (c *Config) ChunkConfig() chunk.Config {
	return chunk.Config{
		Splitter:     c.Chunk.Splitter,
		ChunkSize:    c.Chunk.Size,
		ChunkOverlap: c.Chunk.Overlap,
	}
}

func (c *Config) SinkConfig() sink.Config {
	return sink.Config{
		Namespace:       c.Store.Namespace,
		BatchSize:       c.Sink.BatchSize,
		MaxAttempts:     c.Sink.MaxAttempts,
		RetryDelay:      c.Sink.RetryDelay,
		RateLimit:       c.Sink.RateLimit,
		BreakerFailures: c.Sink.BreakerFailures,
		BreakerTimeout:  c.Sink.BreakerTimeout,
	}
}

func (c *Config) AIOptions() []ai.ConfigOption {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithAPIKey(c.Embedding.APIKey),
		ai.WithDimensions(c.Embedding.Dimensions),
	}
	if c.Embedding.BatchSize > 0 {
		opts = append(opts, ai.WithBatchSize(c.Embedding.BatchSize))
	}
	return opts
}

func (c *Config) ExtractOptions() []extract.Option {
	opts := []extract.Option{extract.WithHTMLSeparator(c.Extract.HTML.Separator)}
	if len(c.Extract.HTML.Selectors) > 0 {
		opts = append(opts, extract.WithHTMLSelectors(c.Extract.HTML.Selectors...))
	}
	return opts
}
