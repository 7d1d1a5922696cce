package dialect

import (
	"fmt"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) CreateTableQuery(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    run_id TEXT NOT NULL,
    source_uri TEXT NOT NULL,
    destination_uri TEXT,
    pii_fields TEXT,
    row_count INTEGER NOT NULL DEFAULT 0,
    masked_count INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    error_message TEXT,
    started_at TIMESTAMP WITH TIME ZONE NOT NULL,
    finished_at TIMESTAMP WITH TIME ZONE NOT NULL
)`, table)
}

func (d *PostgresDialect) InsertQuery(table string, cols []string) string {
	// Generate placeholders ($1, $2, ...)
	return DefaultInsertQuery(table, cols, d.Placeholder)
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (d *PostgresDialect) CountQuery(table string) string {
	return DefaultCountQuery(table)
}
