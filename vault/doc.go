// Package vault tracks ingestion state through filesystem layout alone.
//
// A vault root holds two areas:
//   - unprocessed/: files waiting to be ingested, arbitrarily nested
//   - processed/: files that have been ingested, mirroring their relative path
//
// Presence in one area or the other is the only record of a file's state.
// Storage access goes through the Storage interface so the same state
// machine runs against a local directory, a cloud bucket (via afs), or
// an in-memory tree in tests.
package vault
