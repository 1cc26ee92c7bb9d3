package vault

import (
	"context"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// AFSStorage implements Storage on top of github.com/viant/afs.
// Plain paths resolve to the local filesystem; other schemes (s3://, gs://)
// work once their afsc connectors are registered.
type AFSStorage struct {
	fs afs.Service
}

var _ Storage = (*AFSStorage)(nil)

// NewAFSStorage creates a Storage backed by the default afs service.
func NewAFSStorage() *AFSStorage {
	return &AFSStorage{fs: afs.New()}
}

// location turns a plain path into an absolute file URL. afs reports listed
// objects with absolute URLs, so a relative root would never match them.
func location(URL string) string {
	if url.Scheme(URL, "") == "" && url.IsRelative(URL) {
		if abs, err := filepath.Abs(URL); err == nil {
			URL = abs
		}
	}
	if url.Scheme(URL, "") == "" && !url.IsRelative(URL) {
		URL = url.ToFileURL(URL)
	}
	return URL
}

func (s *AFSStorage) List(ctx context.Context, dirURL string) ([]Entry, error) {
	dirURL = location(dirURL)
	objects, err := s.fs.List(ctx, dirURL)
	if err != nil {
		return nil, err
	}
	dirPath := url.Path(dirURL)
	entries := make([]Entry, 0, len(objects))
	for _, object := range objects {
		// afs reports the listed directory itself as the first object
		if object.IsDir() && url.Equals(url.Path(object.URL()), dirPath) {
			continue
		}
		entries = append(entries, Entry{
			Name:  object.Name(),
			URL:   object.URL(),
			IsDir: object.IsDir(),
		})
	}
	return entries, nil
}

func (s *AFSStorage) Exists(ctx context.Context, URL string) (bool, error) {
	return s.fs.Exists(ctx, location(URL))
}

func (s *AFSStorage) MkdirAll(ctx context.Context, URL string) error {
	URL = location(URL)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.fs.Create(ctx, URL, file.DefaultDirOsMode, true)
}

func (s *AFSStorage) Move(ctx context.Context, sourceURL, destURL string) error {
	return s.fs.Move(ctx, location(sourceURL), location(destURL))
}

func (s *AFSStorage) ReadAll(ctx context.Context, URL string) ([]byte, error) {
	return s.fs.DownloadWithURL(ctx, location(URL))
}
