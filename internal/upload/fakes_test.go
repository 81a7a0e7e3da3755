package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"zippybox-server/internal/catalog"
	"zippybox-server/internal/storage"
)

var errProvider = errors.New("provider unavailable")

type putCall struct {
	Object storage.Object
	Data   string
}

// fakeStore records every Put. failOn makes the n-th call (1-based) fail.
type fakeStore struct {
	mu     sync.Mutex
	calls  []putCall
	failOn int
	thumbs bool
}

func (s *fakeStore) Put(ctx context.Context, obj storage.Object) (storage.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return storage.StoredObject{}, err
	}
	s.calls = append(s.calls, putCall{Object: obj, Data: string(data)})
	if s.failOn == len(s.calls) {
		return storage.StoredObject{}, errProvider
	}
	p := obj.Folder + "/" + obj.Name
	stored := storage.StoredObject{Path: p, URL: "https://cdn.example.com" + p}
	if s.thumbs {
		stored.ThumbnailURL = "https://cdn.example.com/thumb" + p
	}
	return stored, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// fakeCatalog keeps entries in memory. failInsertOn makes the n-th Insert
// (1-based) fail; findErr replaces every FindOne result.
type fakeCatalog struct {
	mu           sync.Mutex
	entries      []*catalog.FileEntry
	inserts      int
	failInsertOn int
	findErr      error
}

func (c *fakeCatalog) Insert(ctx context.Context, e *catalog.FileEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inserts++
	if c.failInsertOn == c.inserts {
		return errors.New("connection reset")
	}
	for _, existing := range c.entries {
		if existing.Path == e.Path {
			return fmt.Errorf("insert %s: %w", e.Path, catalog.ErrDuplicatePath)
		}
	}
	cp := *e
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	c.entries = append(c.entries, &cp)
	return nil
}

func (c *fakeCatalog) FindOne(ctx context.Context, f catalog.Filter) (*catalog.FileEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.findErr != nil {
		return nil, c.findErr
	}
	for _, e := range c.entries {
		if e.OwnerID != f.OwnerID {
			continue
		}
		if f.ID != "" && e.ID != f.ID {
			continue
		}
		if f.IsFolder != nil && e.IsFolder != *f.IsFolder {
			continue
		}
		cp := *e
		return &cp, nil
	}
	return nil, catalog.ErrNotFound
}

func (c *fakeCatalog) rows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *fakeCatalog) seed(e *catalog.FileEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

type batchRecord struct {
	total, succeeded int
	err              error
}

type recordingObserver struct {
	mu      sync.Mutex
	files   []error
	batches []batchRecord
}

func (o *recordingObserver) RecordFile(_ time.Duration, _ int64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.files = append(o.files, err)
}

func (o *recordingObserver) RecordBatch(total, succeeded int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batches = append(o.batches, batchRecord{total, succeeded, err})
}

// sequence returns a generator yielding prefix-1, prefix-2, ...
func sequence(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
