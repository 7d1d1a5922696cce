package dialect

import (
	"fmt"
)

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) CreateTableQuery(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    run_id VARCHAR(36) NOT NULL,
    source_uri VARCHAR(1024) NOT NULL,
    destination_uri VARCHAR(1024),
    pii_fields TEXT,
    row_count INT NOT NULL DEFAULT 0,
    masked_count INT NOT NULL DEFAULT 0,
    status VARCHAR(16) NOT NULL,
    error_message TEXT,
    started_at DATETIME(6) NOT NULL,
    finished_at DATETIME(6) NOT NULL
)`, table)
}

func (d *MysqlDialect) InsertQuery(table string, cols []string) string {
	return DefaultInsertQuery(table, cols, d.Placeholder)
}

func (d *MysqlDialect) Placeholder(index int) string {
	return "?"
}

func (d *MysqlDialect) CountQuery(table string) string {
	return DefaultCountQuery(table)
}
