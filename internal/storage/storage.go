// Package storage holds the blob store backends payload bytes are pushed to.
package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
)

// Object is a payload to store under Folder/Name.
type Object struct {
	Folder      string
	Name        string
	Body        io.Reader
	Size        int64
	ContentType string
}

// StoredObject describes where a blob ended up. Path is authoritative and is
// what the catalog records.
type StoredObject struct {
	Path         string
	URL          string
	ThumbnailURL string
}

// Store is implemented by every backend. Put is not idempotent: storing the
// same object twice may leave two blobs.
type Store interface {
	Put(ctx context.Context, obj Object) (StoredObject, error)
}

// objectKey joins folder and name into a bucket key without a leading slash.
func objectKey(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// joinURL appends the escaped segments of key to base.
func joinURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
