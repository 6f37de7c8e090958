// Package migrations embeds and applies the schema for both databases.
package migrations

import "embed"

// PostgresFS holds the goose migrations for the operational tables:
// trends_cache (ingested trends), repository (approved items) and shorts.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the trend_snapshots score-history table, applied in
// file-name order by RunClickhouseMigrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
