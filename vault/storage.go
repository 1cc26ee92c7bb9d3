package vault

import "context"

// Entry is one immediate child of a listed directory.
type Entry struct {
	Name  string
	URL   string
	IsDir bool
}

// Storage is the filesystem capability a Vault operates on.
// URLs are whatever the implementation understands; the Vault only joins
// them with slash-separated relative paths.
type Storage interface {
	// List returns the immediate children of a directory.
	List(ctx context.Context, dirURL string) ([]Entry, error)

	// Exists reports whether a file or directory exists.
	Exists(ctx context.Context, URL string) (bool, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(ctx context.Context, URL string) error

	// Move relocates a file. The destination's parent must exist.
	Move(ctx context.Context, sourceURL, destURL string) error

	// ReadAll returns the contents of a file.
	ReadAll(ctx context.Context, URL string) ([]byte, error)
}
