package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"golang.org/x/time/rate"
)

const (
	DefaultBatchSize       = 100
	DefaultMaxAttempts     = 3
	DefaultRetryDelay      = 500 * time.Millisecond
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = 30 * time.Second
)

// Uploader is the capability the pipeline needs from a sink.
type Uploader interface {
	Upload(ctx context.Context, chunks []schema.Document) error
}

// Config tunes batching and failure handling.
type Config struct {
	Namespace string
	BatchSize int
	// MaxAttempts counts the first try, so 3 means up to two retries.
	MaxAttempts int
	RetryDelay  time.Duration
	// RateLimit is the maximum number of batches per second. Zero disables it.
	RateLimit float64
	// BreakerFailures consecutive failed batches open the breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration
}

// DefaultConfig returns the standard sink settings.
func DefaultConfig() Config {
	return Config{
		BatchSize:       DefaultBatchSize,
		MaxAttempts:     DefaultMaxAttempts,
		RetryDelay:      DefaultRetryDelay,
		BreakerFailures: DefaultBreakerFailures,
		BreakerTimeout:  DefaultBreakerTimeout,
	}
}

// Sink uploads chunks into a vector store.
type Sink struct {
	store   vectorstores.VectorStore
	config  Config
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var _ Uploader = (*Sink)(nil)

// Option configures a Sink.
type Option func(*Sink)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a sink over store. Zero values in config fall back to defaults.
func New(store vectorstores.VectorStore, config Config, opts ...Option) (*Sink, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	defaults := DefaultConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.BreakerFailures == 0 {
		config.BreakerFailures = defaults.BreakerFailures
	}
	if config.BreakerTimeout <= 0 {
		config.BreakerTimeout = defaults.BreakerTimeout
	}

	s := &Sink{
		store:  store,
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "sink", "namespace", config.Namespace)

	if config.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "upload",
		Timeout: config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			s.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return s, nil
}

// Upload stores chunks in batches. It returns the first batch error; earlier
// batches are not rolled back.
func (s *Sink) Upload(ctx context.Context, chunks []schema.Document) error {
	for start := 0; start < len(chunks); start += s.config.BatchSize {
		end := min(start+s.config.BatchSize, len(chunks))
		if err := s.uploadBatch(ctx, chunks[start:end]); err != nil {
			err = fmt.Errorf("batch %d-%d of %d: %w", start, end, len(chunks), err)
			s.logger.Error("error uploading chunks", "err", err)
			return err
		}
	}
	s.logger.Debug("chunks uploaded", "count", len(chunks))
	return nil
}

func (s *Sink) uploadBatch(ctx context.Context, batch []schema.Document) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrUpload, err)
		}
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, RetryWithBackoff(ctx, s.logger, func() error {
			_, err := s.store.AddDocuments(ctx, batch, s.storeOptions()...)
			return err
		}, s.config.MaxAttempts, s.config.RetryDelay)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	default:
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}
}

func (s *Sink) storeOptions() []vectorstores.Option {
	if s.config.Namespace == "" {
		return nil
	}
	return []vectorstores.Option{vectorstores.WithNameSpace(s.config.Namespace)}
}
