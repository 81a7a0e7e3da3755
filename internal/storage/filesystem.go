package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// Filesystem writes blobs below a local directory. It is intended for
// development and testing.
type Filesystem struct {
	baseDir   string
	publicURL string
}

var _ Store = (*Filesystem)(nil)

// NewFilesystem creates a store rooted at baseDir. Without a publicURL the
// returned URLs use the file:// scheme.
func NewFilesystem(baseDir, publicURL string) (*Filesystem, error) {
	if baseDir == "" {
		baseDir = "data/blobs"
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve blob dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Filesystem{baseDir: abs, publicURL: publicURL}, nil
}

func (s *Filesystem) Put(ctx context.Context, obj Object) (StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return StoredObject{}, err
	}
	key := objectKey(obj.Folder, obj.Name)
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return StoredObject{}, fmt.Errorf("ensure blob dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StoredObject{}, fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(f, obj.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return StoredObject{}, fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return StoredObject{}, fmt.Errorf("close blob: %w", err)
	}

	stored := StoredObject{Path: "/" + key}
	if s.publicURL != "" {
		stored.URL = joinURL(s.publicURL, key)
	} else {
		stored.URL = (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
	}
	return stored, nil
}
