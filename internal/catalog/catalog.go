// Package catalog stores FileEntry metadata in a relational table through
// ent's SQL dialect layer. It works on any ent driver (postgres in
// production, sqlite in development and tests).
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"github.com/google/uuid"
)

// FolderType is the Type of every folder entry.
const FolderType = "folder"

var (
	// ErrNotFound is returned by FindOne when nothing matches.
	ErrNotFound = errors.New("catalog: file entry not found")
	// ErrOwnerRequired is returned when a query is not scoped to an owner.
	ErrOwnerRequired = errors.New("catalog: owner id is required")
	// ErrDuplicatePath is returned by Insert when the path is already taken.
	ErrDuplicatePath = errors.New("catalog: path already exists")
)

// FileEntry is a folder or file node in an owner's tree.
type FileEntry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"`
	FileURL      string    `json:"fileUrl"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
	OwnerID      string    `json:"userId"`
	ParentID     *string   `json:"parentId"`
	IsFolder     bool      `json:"isFolder"`
	IsStarred    bool      `json:"isStarred"`
	IsTrashed    bool      `json:"isTrash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Filter selects entries of one owner. Zero fields do not constrain.
type Filter struct {
	OwnerID string
	ID      string
	// ParentID matches children of a folder; RootOnly matches entries without
	// a parent. ParentID wins when both are set.
	ParentID string
	RootOnly bool
	IsFolder *bool
	Limit    int
}

// Catalog reads and writes the file_entries table.
type Catalog struct {
	drv dialect.Driver
	now func() time.Time
}

// New returns a catalog on top of an ent driver.
func New(drv dialect.Driver) *Catalog {
	return &Catalog{drv: drv, now: func() time.Time { return time.Now().UTC() }}
}

// Insert writes a new entry. ID and timestamps are filled in when unset.
func (c *Catalog) Insert(ctx context.Context, e *FileEntry) error {
	if e.OwnerID == "" {
		return ErrOwnerRequired
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = c.now()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}

	query, args := entsql.Dialect(c.drv.Dialect()).
		Insert(Table).
		Columns(columns...).
		Values(
			e.ID,
			e.Name,
			e.Path,
			e.Size,
			e.Type,
			e.FileURL,
			nullable(e.ThumbnailURL),
			e.OwnerID,
			nullable(e.ParentID),
			e.IsFolder,
			e.IsStarred,
			e.IsTrashed,
			e.CreatedAt,
			e.UpdatedAt,
		).
		Query()
	if err := c.drv.Exec(ctx, query, args, nil); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return fmt.Errorf("insert file entry %s: %w: %v", e.Path, ErrDuplicatePath, err)
		}
		return fmt.Errorf("insert file entry %s: %w", e.Path, err)
	}
	return nil
}

// FindOne returns the first entry matching f, or ErrNotFound.
func (c *Catalog) FindOne(ctx context.Context, f Filter) (*FileEntry, error) {
	f.Limit = 1
	entries, err := c.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries[0], nil
}

// Find returns the entries matching f, oldest first.
func (c *Catalog) Find(ctx context.Context, f Filter) ([]*FileEntry, error) {
	if f.OwnerID == "" {
		return nil, ErrOwnerRequired
	}

	b := entsql.Dialect(c.drv.Dialect())
	t := b.Table(Table)
	s := b.Select(t.Columns(columns...)...).From(t)
	s.Where(entsql.EQ(t.C(ColumnOwnerID), f.OwnerID))
	if f.ID != "" {
		s.Where(entsql.EQ(t.C(ColumnID), f.ID))
	}
	switch {
	case f.ParentID != "":
		s.Where(entsql.EQ(t.C(ColumnParentID), f.ParentID))
	case f.RootOnly:
		s.Where(entsql.IsNull(t.C(ColumnParentID)))
	}
	if f.IsFolder != nil {
		s.Where(entsql.EQ(t.C(ColumnIsFolder), *f.IsFolder))
	}
	s.OrderBy(entsql.Asc(t.C(ColumnCreatedAt)), entsql.Asc(t.C(ColumnPath)))
	if f.Limit > 0 {
		s.Limit(f.Limit)
	}

	query, args := s.Query()
	rows := &entsql.Rows{}
	if err := c.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query file entries: %w", err)
	}
	defer rows.Close()

	var entries []*FileEntry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file entries: %w", err)
	}
	return entries, nil
}

func scan(rows *entsql.Rows) (*FileEntry, error) {
	var (
		e      FileEntry
		thumb  sql.NullString
		parent sql.NullString
	)
	err := rows.Scan(
		&e.ID,
		&e.Name,
		&e.Path,
		&e.Size,
		&e.Type,
		&e.FileURL,
		&thumb,
		&e.OwnerID,
		&parent,
		&e.IsFolder,
		&e.IsStarred,
		&e.IsTrashed,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan file entry: %w", err)
	}
	if thumb.Valid {
		e.ThumbnailURL = &thumb.String
	}
	if parent.Valid {
		e.ParentID = &parent.String
	}
	return &e, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Bool returns a pointer to b, for Filter.IsFolder.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
