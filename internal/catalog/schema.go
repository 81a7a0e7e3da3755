package catalog

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table is the single metadata table.
const Table = "file_entries"

// Columns of the file_entries table.
const (
	ColumnID           = "id"
	ColumnName         = "name"
	ColumnPath         = "path"
	ColumnSize         = "size"
	ColumnType         = "type"
	ColumnFileURL      = "file_url"
	ColumnThumbnailURL = "thumbnail_url"
	ColumnOwnerID      = "user_id"
	ColumnParentID     = "parent_id"
	ColumnIsFolder     = "is_folder"
	ColumnIsStarred    = "is_starred"
	ColumnIsTrashed    = "is_trash"
	ColumnCreatedAt    = "created_at"
	ColumnUpdatedAt    = "updated_at"
)

// columns in scan order.
var columns = []string{
	ColumnID,
	ColumnName,
	ColumnPath,
	ColumnSize,
	ColumnType,
	ColumnFileURL,
	ColumnThumbnailURL,
	ColumnOwnerID,
	ColumnParentID,
	ColumnIsFolder,
	ColumnIsStarred,
	ColumnIsTrashed,
	ColumnCreatedAt,
	ColumnUpdatedAt,
}

var (
	// FileEntriesColumns holds the columns for the "file_entries" table.
	FileEntriesColumns = []*schema.Column{
		{Name: ColumnID, Type: field.TypeString, Unique: true},
		{Name: ColumnName, Type: field.TypeString},
		{Name: ColumnPath, Type: field.TypeString},
		{Name: ColumnSize, Type: field.TypeInt64, Default: 0},
		{Name: ColumnType, Type: field.TypeString},
		{Name: ColumnFileURL, Type: field.TypeString, Default: ""},
		{Name: ColumnThumbnailURL, Type: field.TypeString, Nullable: true},
		{Name: ColumnOwnerID, Type: field.TypeString},
		{Name: ColumnParentID, Type: field.TypeString, Nullable: true},
		{Name: ColumnIsFolder, Type: field.TypeBool, Default: false},
		{Name: ColumnIsStarred, Type: field.TypeBool, Default: false},
		{Name: ColumnIsTrashed, Type: field.TypeBool, Default: false},
		{Name: ColumnCreatedAt, Type: field.TypeTime},
		{Name: ColumnUpdatedAt, Type: field.TypeTime},
	}
	// FileEntriesTable holds the schema information for the "file_entries" table.
	FileEntriesTable = &schema.Table{
		Name:       Table,
		Columns:    FileEntriesColumns,
		PrimaryKey: []*schema.Column{FileEntriesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "file_entries_file_entries_children",
				Columns:    []*schema.Column{FileEntriesColumns[8]},
				RefColumns: []*schema.Column{FileEntriesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "fileentry_path",
				Unique:  true,
				Columns: []*schema.Column{FileEntriesColumns[2]},
			},
			{
				Name:    "fileentry_user_id_parent_id",
				Unique:  false,
				Columns: []*schema.Column{FileEntriesColumns[7], FileEntriesColumns[8]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		FileEntriesTable,
	}
)

func init() {
	FileEntriesTable.ForeignKeys[0].RefTable = FileEntriesTable
}
