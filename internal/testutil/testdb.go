package testutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"poker-pool/internal/config"
	"poker-pool/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// OpenTestStore opens a store on a fresh schema with every up migration applied. It skips
// the test when TEST_POSTGRES_DSN is unset. The schema is dropped when the test ends.
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	schema := fmt.Sprintf("%s_%d", cfg.SchemaPrefix, time.Now().UnixNano())
	if !schemaNamePattern.MatchString(schema) {
		t.Fatalf("schema %q from TEST_SCHEMA_PREFIX is not a plain identifier", schema)
	}
	ident := pgx.Identifier{schema}.Sanitize()

	ctx := context.Background()
	if err := execOnce(ctx, cfg.PostgresDSN, "CREATE SCHEMA "+ident); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	st, err := store.New(withSearchPath(cfg.PostgresDSN, schema))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
		_ = execOnce(context.Background(), cfg.PostgresDSN, "DROP SCHEMA "+ident+" CASCADE")
	})
	if err := migrateUp(ctx, st); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return st
}

func execOnce(ctx context.Context, dsn, sql string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()
	_, err = pool.Exec(ctx, sql)
	return err
}

func migrateUp(ctx context.Context, st *store.Store) error {
	dir, err := findMigrationsDir()
	if err != nil {
		return err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := st.Pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(f), err)
		}
	}
	return nil
}

// findMigrationsDir walks up from the test's package directory to the module's migrations/.
func findMigrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	start := dir
	for {
		p := filepath.Join(dir, "migrations")
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found above %s", start)
		}
		dir = parent
	}
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}
