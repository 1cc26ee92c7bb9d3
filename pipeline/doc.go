// Package pipeline orchestrates sweeps over a vault.
//
// A sweep enumerates the unprocessed area once, then drives every file
// through extract, chunk, upload and move. Each file's outcome is recorded
// as a core.FileState in the sweep Report. Failures stay inside the file
// that caused them; the sweep always continues with the next file.
//
// Files run sequentially by default. WithConcurrency processes files on an
// ants worker pool while keeping each file's steps on one goroutine and
// reporting results in enumeration order.
package pipeline
