// Package upload ingests single files and folder trees: it validates the
// request, pushes bytes to the blob store and records one catalog row per
// stored blob.
//
// Blob store and catalog are independent systems and no transaction spans
// them. A blob that was stored but could not be cataloged is reported as
// KindCatalogWriteFailed with its StoredPath so it can be swept later.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"zippybox-server/internal/catalog"
	"zippybox-server/internal/naming"
	"zippybox-server/internal/paths"
	"zippybox-server/internal/storage"
)

// BlobStore receives payload bytes.
type BlobStore interface {
	Put(ctx context.Context, obj storage.Object) (storage.StoredObject, error)
}

// Catalog records file entries.
type Catalog interface {
	Insert(ctx context.Context, e *catalog.FileEntry) error
	FindOne(ctx context.Context, f catalog.Filter) (*catalog.FileEntry, error)
}

// Observer is told about every stored or failed file and every folder batch.
type Observer interface {
	RecordFile(duration time.Duration, size int64, err error)
	RecordBatch(total, succeeded int, err error)
}

type noopObserver struct{}

func (noopObserver) RecordFile(time.Duration, int64, error) {}
func (noopObserver) RecordBatch(int, int, error)            {}

// FileRequest asks for one file to be stored under an optional parent folder.
type FileRequest struct {
	OwnerID  string
	ParentID string
	Payload  Payload
}

// FolderRequest asks for a new folder holding Payloads, in order.
type FolderRequest struct {
	OwnerID    string
	ParentID   string
	FolderName string
	Payloads   []Payload
}

// FolderResult is the folder entry and the files stored in it, in input
// order. On a partial batch Files holds only the successful prefix.
type FolderResult struct {
	Folder *catalog.FileEntry   `json:"folder"`
	Files  []*catalog.FileEntry `json:"files"`
}

// Ingestor runs uploads. It is safe for concurrent use when its
// collaborators are.
type Ingestor struct {
	blobs    BlobStore
	catalog  Catalog
	paths    paths.Builder
	names    naming.Generator
	limits   Limits
	observer Observer
	log      *slog.Logger
	newID    func() string
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithPaths sets the path builder (namespace).
func WithPaths(b paths.Builder) Option { return func(i *Ingestor) { i.paths = b } }

// WithNames sets the generator for stored blob names.
func WithNames(g naming.Generator) Option { return func(i *Ingestor) { i.names = g } }

// WithLimits sets the per-item limits.
func WithLimits(l Limits) Option { return func(i *Ingestor) { i.limits = l } }

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(i *Ingestor) {
		if o != nil {
			i.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Ingestor) {
		if l != nil {
			i.log = l
		}
	}
}

// WithIDs sets the entry id generator.
func WithIDs(f func() string) Option { return func(i *Ingestor) { i.newID = f } }

// New returns an Ingestor over the given blob store and catalog.
func New(blobs BlobStore, cat Catalog, opts ...Option) *Ingestor {
	i := &Ingestor{
		blobs:    blobs,
		catalog:  cat,
		names:    naming.UUID{},
		limits:   DefaultLimits(),
		observer: noopObserver{},
		log:      slog.Default(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IngestFile stores one payload. principal is the authenticated caller and
// must own the request. Nothing is written unless every check passes.
func (i *Ingestor) IngestFile(ctx context.Context, principal string, req FileRequest) (*catalog.FileEntry, error) {
	if err := authorize(principal, req.OwnerID); err != nil {
		return nil, err
	}
	if err := i.limits.Check(req.Payload); err != nil {
		i.observer.RecordFile(0, req.Payload.Size, err)
		return nil, err
	}
	if err := i.checkParent(ctx, req.OwnerID, req.ParentID); err != nil {
		i.observer.RecordFile(0, req.Payload.Size, err)
		return nil, err
	}

	return i.store(ctx, req.OwnerID, req.ParentID, "", req.Payload)
}

// IngestFolder creates a folder and stores every payload in it, one after
// the other. All payloads are validated before the folder is created.
//
// A failure on item k keeps the folder and items before k, skips the rest and
// returns the partial result with a *BatchError.
func (i *Ingestor) IngestFolder(ctx context.Context, principal string, req FolderRequest) (*FolderResult, error) {
	if err := authorize(principal, req.OwnerID); err != nil {
		return nil, err
	}
	req.FolderName = strings.TrimSpace(req.FolderName)
	total := len(req.Payloads)
	if err := i.preflightFolder(ctx, req); err != nil {
		i.observer.RecordBatch(total, 0, err)
		return nil, err
	}

	folderPath, err := i.paths.Build(req.OwnerID, req.ParentID, req.FolderName)
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, Message: "Folder name and files are required", Err: err}
	}
	folder := &catalog.FileEntry{
		ID:       i.newID(),
		Name:     req.FolderName,
		Path:     folderPath,
		Type:     catalog.FolderType,
		OwnerID:  req.OwnerID,
		ParentID: catalog.String(req.ParentID),
		IsFolder: true,
	}
	if err := i.catalog.Insert(ctx, folder); err != nil {
		werr := &Error{
			Kind:     KindCatalogWriteFailed,
			Message:  "Failed to create folder " + req.FolderName,
			FileName: req.FolderName,
			Err:      err,
		}
		if errors.Is(err, catalog.ErrDuplicatePath) {
			werr.Kind = KindAlreadyExists
			werr.Message = "Folder " + req.FolderName + " already exists"
		}
		i.observer.RecordBatch(total, 0, werr)
		return nil, werr
	}
	i.log.InfoContext(ctx, "folder created", "owner", req.OwnerID, "folder_id", folder.ID, "path", folder.Path, "files", total)

	result := &FolderResult{Folder: folder, Files: make([]*catalog.FileEntry, 0, total)}
	for k, p := range req.Payloads {
		var entry *catalog.FileEntry
		if err = ctx.Err(); err == nil {
			entry, err = i.store(ctx, req.OwnerID, folder.ID, folder.Path, p)
		} else {
			err = &Error{Kind: KindUploadFailed, Message: "Upload of " + p.Name + " was cancelled", FileName: p.Name, Err: err}
		}
		if err != nil {
			berr := &BatchError{Succeeded: k, Total: total, FailedFileName: p.Name, Err: err}
			i.log.WarnContext(ctx, "folder upload stopped",
				"owner", req.OwnerID, "folder_id", folder.ID,
				"succeeded", k, "total", total, "failed_file", p.Name, "error", err)
			i.observer.RecordBatch(total, k, berr)
			return result, berr
		}
		result.Files = append(result.Files, entry)
	}

	i.observer.RecordBatch(total, total, nil)
	return result, nil
}

func (i *Ingestor) preflightFolder(ctx context.Context, req FolderRequest) error {
	if !validFolderName(req.FolderName) || len(req.Payloads) == 0 {
		return invalidInput("Folder name and files are required")
	}
	for _, p := range req.Payloads {
		if err := i.limits.Check(p); err != nil {
			return err
		}
	}
	return i.checkParent(ctx, req.OwnerID, req.ParentID)
}

// store pushes one validated payload and catalogs it. dir is the blob folder;
// empty means the canonical location for (owner, parent).
func (i *Ingestor) store(ctx context.Context, ownerID, parentID, dir string, p Payload) (entry *catalog.FileEntry, err error) {
	start := time.Now()
	defer func() { i.observer.RecordFile(time.Since(start), p.Size, err) }()

	name := i.names.Name(p.Name)
	if dir == "" {
		canonical, berr := i.paths.Build(ownerID, parentID, name)
		if berr != nil {
			return nil, &Error{Kind: KindInvalidInput, Message: "No file provided", FileName: p.Name, Err: berr}
		}
		dir = path.Dir(canonical)
	}

	body, err := p.Open()
	if err != nil {
		return nil, &Error{Kind: KindUploadFailed, Message: "Failed to read " + p.Name, FileName: p.Name, Err: err}
	}
	defer body.Close()

	r, mediaType, err := sniff(body, p.MediaType)
	if err != nil {
		return nil, &Error{Kind: KindUploadFailed, Message: "Failed to read " + p.Name, FileName: p.Name, Err: err}
	}

	stored, err := i.blobs.Put(ctx, storage.Object{
		Folder:      dir,
		Name:        name,
		Body:        r,
		Size:        p.Size,
		ContentType: mediaType,
	})
	if err != nil {
		return nil, &Error{Kind: KindUploadFailed, Message: "Failed to upload " + p.Name, FileName: p.Name, Err: err}
	}
	if stored.URL == "" {
		return nil, &Error{
			Kind:       KindUploadFailed,
			Message:    "Failed to upload " + p.Name,
			FileName:   p.Name,
			StoredPath: stored.Path,
			Err:        fmt.Errorf("blob store returned no url for %s", stored.Path),
		}
	}

	entry = &catalog.FileEntry{
		ID:           i.newID(),
		Name:         p.Name,
		Path:         stored.Path,
		Size:         p.Size,
		Type:         mediaType,
		FileURL:      stored.URL,
		ThumbnailURL: catalog.String(stored.ThumbnailURL),
		OwnerID:      ownerID,
		ParentID:     catalog.String(parentID),
	}
	if ierr := i.catalog.Insert(ctx, entry); ierr != nil {
		i.log.WarnContext(ctx, "orphaned blob", "owner", ownerID, "path", stored.Path, "file", p.Name, "error", ierr)
		return nil, &Error{
			Kind:       KindCatalogWriteFailed,
			Message:    "Failed to save metadata for " + p.Name,
			FileName:   p.Name,
			StoredPath: stored.Path,
			Err:        ierr,
		}
	}

	i.log.InfoContext(ctx, "file stored", "owner", ownerID, "file_id", entry.ID, "path", entry.Path, "size", entry.Size)
	return entry, nil
}

func (i *Ingestor) checkParent(ctx context.Context, ownerID, parentID string) error {
	if parentID == "" {
		return nil
	}
	_, err := i.catalog.FindOne(ctx, catalog.Filter{
		OwnerID:  ownerID,
		ID:       parentID,
		IsFolder: catalog.Bool(true),
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrNotFound):
		return &Error{Kind: KindParentNotFound, Message: "Parent folder not found"}
	default:
		return &Error{Kind: KindCatalogReadFailed, Message: "Failed to look up parent folder", Err: err}
	}
}

func authorize(principal, ownerID string) error {
	if principal == "" || principal != ownerID {
		return unauthorized()
	}
	return nil
}

// validFolderName rejects names that would not form a single path segment.
// name is already trimmed.
func validFolderName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
