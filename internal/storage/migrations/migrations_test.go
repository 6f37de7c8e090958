package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	in := `-- header comment
CREATE TABLE a (x String) ENGINE = MergeTree() ORDER BY x;

-- second
CREATE TABLE b (y String)
ENGINE = MergeTree() ORDER BY y;
`
	stmts := splitStatements(in)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if !strings.HasPrefix(stmts[1], "CREATE TABLE b") {
		t.Errorf("unexpected second statement %q", stmts[1])
	}
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	if err := validateNoSemicolonInStrings("SELECT 'a;b'"); err == nil {
		t.Error("expected error for semicolon in literal")
	}
	if err := validateNoSemicolonInStrings("SELECT 'it''s'; SELECT 1;"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/oribos")
	if err != nil || db != "oribos" {
		t.Errorf("got %q, %v", db, err)
	}
	if _, err := databaseFromDSN("clickhouse://localhost:9000"); err == nil {
		t.Error("expected error for dsn without database")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	pg, err := fs.ReadDir(PostgresFS, "postgres")
	if err != nil {
		t.Fatalf("read postgres migrations: %v", err)
	}
	if len(pg) < 3 {
		t.Errorf("expected at least 3 postgres migrations, got %d", len(pg))
	}
	var schema strings.Builder
	for _, e := range pg {
		data, _ := fs.ReadFile(PostgresFS, "postgres/"+e.Name())
		if !strings.Contains(string(data), "-- +goose Up") {
			t.Errorf("%s lacks a goose Up annotation", e.Name())
		}
		schema.Write(data)
	}
	for _, table := range []string{"trends_cache", "repository", "shorts"} {
		if !strings.Contains(schema.String(), "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Errorf("postgres migrations do not create %s", table)
		}
	}

	files, err := clickhouseFiles()
	if err != nil {
		t.Fatalf("read clickhouse migrations: %v", err)
	}
	for _, f := range files {
		data, _ := fs.ReadFile(ClickhouseFS, "clickhouse/"+f)
		if err := validateNoSemicolonInStrings(string(data)); err != nil {
			t.Errorf("%s: %v", f, err)
		}
		if !strings.Contains(string(data), "trend_snapshots") {
			t.Errorf("%s does not define trend_snapshots", f)
		}
	}
}
