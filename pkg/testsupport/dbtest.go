package testsupport

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens the shared in-memory database.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file::memory:?cache=shared")
}

// SQLiteMemoryDSN returns a DSN for an in-memory database private to the
// calling test, so parallel tests never see each other's tables.
func SQLiteMemoryDSN(tb testing.TB) string {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}
