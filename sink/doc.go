// Package sink uploads chunks into a langchaingo vector store.
//
// Chunks are written in batches into one namespace. Each batch is retried
// with exponential backoff, optionally rate limited, and guarded by a
// circuit breaker so a dead backend fails fast instead of stalling every
// file of a sweep. There is no atomicity across batches: when a later batch
// fails, earlier batches stay in the store.
package sink
