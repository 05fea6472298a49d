package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var dbSeq atomic.Int64

// NewSQLiteMemoryDB opens an isolated in-memory SQLite database. Each call
// returns a fresh database so tests never share state.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	return sql.Open("sqlite3", dsn)
}

// NewBunSQLite wraps an in-memory SQLite database with bun.
func NewBunSQLite() (*bun.DB, error) {
	sqldb, err := NewSQLiteMemoryDB()
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// ApplyMigrations executes every .sql file in fsys against db in
// lexicographic order.
func ApplyMigrations(ctx context.Context, db *bun.DB, fsys fs.FS) error {
	var files []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && len(path) > 4 && path[len(path)-4:] == ".sql" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		contents, err := fs.ReadFile(fsys, file)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}
