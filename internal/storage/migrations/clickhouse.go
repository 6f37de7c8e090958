package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"sort"
	"strings"

	chstore "github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the target database when missing, applies
// every embedded ClickHouse file in lexical order and returns a connection to
// the target database. All statements use IF NOT EXISTS, so reruns are safe.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	if err := ensureDatabase(ctx, dsn, dbName); err != nil {
		return nil, err
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	files, err := clickhouseFiles()
	if err != nil {
		conn.Close()
		return nil, err
	}

	for _, file := range files {
		if err := applyClickhouseFile(ctx, conn, file); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return conn, nil
}

func ensureDatabase(ctx context.Context, dsn, dbName string) error {
	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return fmt.Errorf("connect clickhouse admin: %w", err)
	}
	defer admin.Close()

	if err := admin.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName)); err != nil {
		return fmt.Errorf("create database %s: %w", dbName, err)
	}
	return nil
}

func clickhouseFiles() ([]string, error) {
	entries, err := fs.ReadDir(ClickhouseFS, "clickhouse")
	if err != nil {
		return nil, fmt.Errorf("read embedded clickhouse migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func applyClickhouseFile(ctx context.Context, conn *chstore.Conn, file string) error {
	data, err := fs.ReadFile(ClickhouseFS, "clickhouse/"+file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}

	sql := string(data)
	if err := validateNoSemicolonInStrings(sql); err != nil {
		return fmt.Errorf("validate migration %s: %w", file, err)
	}

	// The native driver runs one statement per Exec.
	for _, stmt := range splitStatements(sql) {
		if err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

// splitStatements drops blank and "--" comment lines and splits the rest on
// semicolons. It does not understand string literals or block comments;
// validateNoSemicolonInStrings rejects files that would confuse it.
func splitStatements(input string) []string {
	var kept []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// validateNoSemicolonInStrings returns an error when a semicolon appears
// inside a single-quoted literal. Doubled quotes ('') are escapes.
func validateNoSemicolonInStrings(sql string) error {
	inString := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			if inString && i+1 < len(sql) && sql[i+1] == '\'' {
				i++
				continue
			}
			inString = !inString
		case ';':
			if inString {
				return fmt.Errorf("semicolon inside string literal at offset %d", i)
			}
		}
	}
	return nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn missing database")
	}
	return db, nil
}
