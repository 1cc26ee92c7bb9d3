package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/docvault/core"
)

// FileResult is the outcome of one file in a sweep.
type FileResult struct {
	Path      string
	State     core.FileState
	Documents int
	Chunks    int
	// Reason explains a skip.
	Reason string
	// Err is set for failed files, and for done files whose upload failed
	// but which were moved anyway.
	Err error
}

// Report summarizes one sweep. Files are in enumeration order.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Files    []FileResult
}

// Count returns the number of files that ended in state.
func (r *Report) Count(state core.FileState) int {
	n := 0
	for _, f := range r.Files {
		if f.State == state {
			n++
		}
	}
	return n
}

// Chunks returns the number of chunks of files that reached StateDone.
func (r *Report) Chunks() int {
	n := 0
	for _, f := range r.Files {
		if f.State == core.StateDone {
			n += f.Chunks
		}
	}
	return n
}

// Duration returns the wall time of the sweep.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Err joins every per-file error, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
		}
	}
	return errors.Join(errs...)
}

func (r *Report) String() string {
	return fmt.Sprintf("run %s: %d files, %d done, %d skipped, %d failed, %d unseen, %d chunks in %s",
		r.RunID, len(r.Files),
		r.Count(core.StateDone), r.Count(core.StateSkipped), r.Count(core.StateFailed), r.Count(core.StateUnseen),
		r.Chunks(), r.Duration().Round(time.Millisecond))
}
