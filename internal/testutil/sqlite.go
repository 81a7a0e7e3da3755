// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"zippybox-server/internal/database"
)

// NewSQLite opens a private in-memory sqlite database with the catalog schema
// applied. It is closed when the test ends.
func NewSQLite(t testing.TB) *entsql.Driver {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	drv, err := database.OpenDSN(dialect.SQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = drv.Close() })

	if err := database.Migrate(context.Background(), drv); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return drv
}
