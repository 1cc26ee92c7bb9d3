package vault

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs/url"
)

const (
	DefaultUnprocessedDir = "unprocessed"
	DefaultProcessedDir   = "processed"
)

// Config describes the layout of a vault.
type Config struct {
	Root           string
	UnprocessedDir string
	ProcessedDir   string
	Identity       Identity
}

// DefaultConfig returns the standard layout under root.
func DefaultConfig(root string) Config {
	return Config{
		Root:           root,
		UnprocessedDir: DefaultUnprocessedDir,
		ProcessedDir:   DefaultProcessedDir,
		Identity:       IdentityRelativePath,
	}
}

// Vault is the ingestion state tracker.
type Vault struct {
	storage     Storage
	config      Config
	unprocessed string
	processed   string
	logger      *slog.Logger
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vault) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a Vault over storage. It does not touch the storage;
// call Init to create the areas.
func New(storage Storage, config Config, opts ...Option) (*Vault, error) {
	if storage == nil {
		return nil, ErrStorageRequired
	}
	if config.Root == "" {
		return nil, ErrRootRequired
	}
	if config.UnprocessedDir == "" {
		config.UnprocessedDir = DefaultUnprocessedDir
	}
	if config.ProcessedDir == "" {
		config.ProcessedDir = DefaultProcessedDir
	}

	v := &Vault{
		storage:     storage,
		config:      config,
		unprocessed: url.Join(config.Root, config.UnprocessedDir),
		processed:   url.Join(config.Root, config.ProcessedDir),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "vault", "root", config.Root)
	return v, nil
}

// Init creates both areas if they are absent. It is idempotent.
func (v *Vault) Init(ctx context.Context) error {
	for _, dir := range []string{v.unprocessed, v.processed} {
		if err := v.storage.MkdirAll(ctx, dir); err != nil {
			return fmt.Errorf("init %s: %w", dir, err)
		}
	}
	v.logger.Debug("vault initialized")
	return nil
}

// Config returns the vault layout.
func (v *Vault) Config() Config {
	return v.config
}

// UnprocessedRoot returns the URL of the unprocessed area.
func (v *Vault) UnprocessedRoot() string {
	return v.unprocessed
}

// ProcessedRoot returns the URL of the processed area.
func (v *Vault) ProcessedRoot() string {
	return v.processed
}

// ListUnprocessed returns every non-hidden file under the unprocessed area
// as sorted slash-separated relative paths. A missing area yields an empty
// result.
func (v *Vault) ListUnprocessed(ctx context.Context) ([]string, error) {
	return v.list(ctx, v.unprocessed)
}

// ListProcessed is ListUnprocessed for the processed area.
func (v *Vault) ListProcessed(ctx context.Context) ([]string, error) {
	return v.list(ctx, v.processed)
}

// IsProcessed reports whether rel has already been ingested under the
// configured identity policy.
func (v *Vault) IsProcessed(ctx context.Context, rel string) (bool, error) {
	if err := validateRelative(rel); err != nil {
		return false, err
	}
	exists, err := v.storage.Exists(ctx, url.Join(v.processed, rel))
	if err != nil || exists || v.config.Identity != IdentityBaseName {
		return exists, err
	}
	// base-name identity matches processed/<base> as well as processed/<rel>
	return v.storage.Exists(ctx, url.Join(v.processed, path.Base(rel)))
}

// MarkProcessed moves unprocessed/<rel> to processed/<rel>, creating
// intermediate directories. An existing destination is never overwritten.
func (v *Vault) MarkProcessed(ctx context.Context, rel string) error {
	if err := validateRelative(rel); err != nil {
		return err
	}
	src := url.Join(v.unprocessed, rel)
	dst := url.Join(v.processed, rel)

	exists, err := v.storage.Exists(ctx, src)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMove, rel, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, rel)
	}

	exists, err = v.storage.Exists(ctx, dst)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMove, rel, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAlreadyProcessed, rel)
	}

	if dir := path.Dir(rel); dir != "." {
		if err := v.storage.MkdirAll(ctx, url.Join(v.processed, dir)); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMove, rel, err)
		}
	}
	if err := v.storage.Move(ctx, src, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMove, rel, err)
	}

	v.logger.Debug("file marked processed", "path", rel)
	return nil
}

// Read returns the contents of an unprocessed file.
func (v *Vault) Read(ctx context.Context, rel string) ([]byte, error) {
	if err := validateRelative(rel); err != nil {
		return nil, err
	}
	URL := url.Join(v.unprocessed, rel)
	exists, err := v.storage.Exists(ctx, URL)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	return v.storage.ReadAll(ctx, URL)
}

// Locate returns the URL of an unprocessed file.
func (v *Vault) Locate(rel string) string {
	return url.Join(v.unprocessed, rel)
}

func (v *Vault) list(ctx context.Context, root string) ([]string, error) {
	exists, err := v.storage.Exists(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEnumeration, root, err)
	}
	if !exists {
		return []string{}, nil
	}

	files := []string{}
	if err := v.walk(ctx, root, "", &files); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEnumeration, root, err)
	}
	sort.Strings(files)
	return files, nil
}

func (v *Vault) walk(ctx context.Context, dirURL, relDir string, files *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := v.storage.List(ctx, dirURL)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Name == "" || strings.HasPrefix(entry.Name, ".") {
			continue
		}
		rel := entry.Name
		if relDir != "" {
			rel = relDir + "/" + entry.Name
		}
		if entry.IsDir {
			if err := v.walk(ctx, url.Join(dirURL, entry.Name), rel, files); err != nil {
				return err
			}
			continue
		}
		*files = append(*files, rel)
	}
	return nil
}

func validateRelative(rel string) error {
	if rel == "" || strings.HasPrefix(rel, "/") || path.Clean(rel) != rel ||
		rel == ".." || strings.HasPrefix(rel, "../") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	return nil
}
