package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/extract"
	"github.com/poiesic/docvault/sink"
	"github.com/tmc/langchaingo/schema"
)

// Tracker is the ingestion state the pipeline reads and advances.
// *vault.Vault implements it.
type Tracker interface {
	ListUnprocessed(ctx context.Context) ([]string, error)
	IsProcessed(ctx context.Context, rel string) (bool, error)
	MarkProcessed(ctx context.Context, rel string) error
	Read(ctx context.Context, rel string) ([]byte, error)
	Locate(rel string) string
}

// Extractor turns file bytes into raw documents. *extract.Registry
// implements it.
type Extractor interface {
	Load(ctx context.Context, source string, data []byte) ([]schema.Document, error)
}

// Chunker splits raw documents into numbered chunks. *chunk.Chunker
// implements it.
type Chunker interface {
	Chunk(ctx context.Context, docs []schema.Document) ([]schema.Document, error)
}

const (
	reasonAlreadyProcessed = "already processed"
	reasonUnsupported      = "unsupported file type"
	reasonNoContent        = "no extractable content"
	reasonNoChunks         = "no chunks"
)

// Pipeline drives files from the unprocessed area into the processed area.
type Pipeline struct {
	tracker             Tracker
	extractor           Extractor
	chunker             Chunker
	uploader            sink.Uploader
	pool                *ants.Pool
	moveOnUploadFailure bool
	progress            io.Writer
	logger              *slog.Logger
	sweepMu             sync.Mutex
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithConcurrency processes up to size files at once. Sizes below 2 keep
// the default sequential sweep.
func WithConcurrency(size int) Option {
	return func(p *Pipeline) error {
		if p.pool != nil {
			p.pool.Release()
			p.pool = nil
		}
		if size < 2 {
			return nil
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithMoveOnUploadFailure sets whether a file is archived even when its
// upload failed. Default is true.
func WithMoveOnUploadFailure(move bool) Option {
	return func(p *Pipeline) error {
		p.moveOnUploadFailure = move
		return nil
	}
}

// WithProgress writes a progress line to w during sweeps.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline. Call Release when done with it.
func NewPipeline(tracker Tracker, extractor Extractor, chunker Chunker, uploader sink.Uploader, opts ...Option) (*Pipeline, error) {
	if tracker == nil {
		return nil, ErrTrackerRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if uploader == nil {
		return nil, ErrUploaderRequired
	}

	p := &Pipeline{
		tracker:             tracker,
		extractor:           extractor,
		chunker:             chunker,
		uploader:            uploader,
		moveOnUploadFailure: true,
		logger:              slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "pipeline")
	return p, nil
}

// Release frees the worker pool.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Sweep processes every file currently in the unprocessed area. Only an
// enumeration failure is returned as an error; per-file failures are in the
// report. Cancelling ctx stops new files from starting; they are reported
// as unseen. Sweeps on one Pipeline never overlap.
func (p *Pipeline) Sweep(ctx context.Context) (*Report, error) {
	p.sweepMu.Lock()
	defer p.sweepMu.Unlock()

	report := &Report{RunID: uuid.NewString(), Started: time.Now()}
	logger := p.logger.With("run", report.RunID)

	files, err := p.tracker.ListUnprocessed(ctx)
	if err != nil {
		logger.Error("error listing unprocessed files", "err", err)
		report.Finished = time.Now()
		return report, err
	}

	report.Files = make([]FileResult, len(files))
	for i, rel := range files {
		report.Files[i] = FileResult{Path: rel, State: core.StateUnseen}
	}
	logger.Info("sweep started", "files", len(files))

	var progress *ProgressTracker
	if p.progress != nil && len(files) > 0 {
		progress = NewProgressTracker(p.progress, len(files), 1)
		progress.Start()
	}
	finished := func(i int, result FileResult) {
		report.Files[i] = result
		if progress != nil {
			progress.Increment(1)
		}
	}

	if p.pool == nil {
		for i, rel := range files {
			if ctx.Err() != nil {
				break
			}
			finished(i, p.ProcessFile(ctx, rel))
		}
	} else {
		p.sweepParallel(ctx, files, finished)
	}

	if progress != nil {
		progress.Finish()
	}
	report.Finished = time.Now()
	logger.Info("sweep finished",
		"done", report.Count(core.StateDone),
		"skipped", report.Count(core.StateSkipped),
		"failed", report.Count(core.StateFailed),
		"unseen", report.Count(core.StateUnseen),
		"chunks", report.Chunks(),
		"elapsed", report.Duration())
	return report, nil
}

func (p *Pipeline) sweepParallel(ctx context.Context, files []string, finished func(int, FileResult)) {
	var wg sync.WaitGroup
	// Each index is written by exactly one task
	for i, rel := range files {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			finished(i, p.ProcessFile(ctx, rel))
		})
		if err != nil {
			wg.Done()
			p.logger.Error("error scheduling file", "path", rel, "err", err)
			finished(i, FileResult{Path: rel, State: core.StateFailed, Err: err})
		}
	}
	wg.Wait()
}

// fileRun tracks one file through the state machine.
type fileRun struct {
	result FileResult
	logger *slog.Logger
}

func (r *fileRun) advance(to core.FileState) {
	if err := core.ValidateTransition(r.result.State, to); err != nil {
		panic(err)
	}
	r.logger.Debug("file state changed", "from", r.result.State.String(), "to", to.String())
	r.result.State = to
}

func (r *fileRun) skip(reason string) FileResult {
	r.advance(core.StateSkipped)
	r.result.Reason = reason
	r.logger.Info("file skipped", "reason", reason)
	return r.result
}

func (r *fileRun) fail(err error) FileResult {
	r.advance(core.StateFailed)
	r.result.Err = err
	r.logger.Error("file failed", "err", err)
	return r.result
}

// ProcessFile runs one file through extract, chunk, upload and move.
// It never panics; unexpected failures end in StateFailed.
func (p *Pipeline) ProcessFile(ctx context.Context, rel string) (result FileResult) {
	run := &fileRun{
		result: FileResult{Path: rel, State: core.StateUnseen},
		logger: p.logger.With("path", rel),
	}
	defer func() {
		if rec := recover(); rec != nil {
			run.result.State = core.StateFailed
			run.result.Err = fmt.Errorf("%w: %v", ErrPanic, rec)
			run.logger.Error("file failed", "err", run.result.Err)
			result = run.result
		}
	}()

	processed, err := p.tracker.IsProcessed(ctx, rel)
	if err != nil {
		return run.fail(err)
	}
	if processed {
		return run.skip(reasonAlreadyProcessed)
	}

	run.advance(core.StateExtracting)
	data, err := p.tracker.Read(ctx, rel)
	if err != nil {
		return run.fail(err)
	}
	docs, err := p.extractor.Load(ctx, p.tracker.Locate(rel), data)
	switch {
	case errors.Is(err, extract.ErrUnsupported):
		return run.skip(reasonUnsupported)
	case err != nil:
		return run.fail(err)
	case len(docs) == 0:
		return run.skip(reasonNoContent)
	}
	run.result.Documents = len(docs)
	stampContentHash(docs, data)

	run.advance(core.StateChunking)
	chunks, err := p.chunker.Chunk(ctx, docs)
	if err != nil {
		return run.fail(err)
	}
	if len(chunks) == 0 {
		return run.skip(reasonNoChunks)
	}
	run.result.Chunks = len(chunks)

	if err := ctx.Err(); err != nil {
		return run.fail(err)
	}

	run.advance(core.StateUploading)
	if err := p.uploader.Upload(ctx, chunks); err != nil {
		if !p.moveOnUploadFailure {
			return run.fail(err)
		}
		run.result.Err = err
		run.logger.Warn("upload failed, archiving file anyway", "err", err)
	}

	// Once chunks may be in the store the move must not be abandoned
	run.advance(core.StateMoving)
	if err := p.tracker.MarkProcessed(context.WithoutCancel(ctx), rel); err != nil {
		return run.fail(errors.Join(run.result.Err, err))
	}

	run.advance(core.StateDone)
	run.logger.Info("file ingested", "documents", run.result.Documents, "chunks", run.result.Chunks)
	return run.result
}

// Prepare extracts and chunks a file without uploading it.
func (p *Pipeline) Prepare(ctx context.Context, source string, data []byte) (docs, chunks []schema.Document, err error) {
	docs, err = p.extractor.Load(ctx, source, data)
	if err != nil {
		return nil, nil, err
	}
	stampContentHash(docs, data)
	chunks, err = p.chunker.Chunk(ctx, docs)
	if err != nil {
		return docs, nil, err
	}
	return docs, chunks, nil
}

func stampContentHash(docs []schema.Document, data []byte) {
	hash := core.ContentHash(data)
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]any)
		}
		docs[i].Metadata[core.MetaContentHash] = hash
	}
}
