package dialect

import (
	"fmt"
	"strings"
)

// MSSQLDialect serves both go-mssqldb drivers. "sqlserver" takes @p1, @p2
// parameters; the legacy "mssql" driver takes ordinal ? parameters.
type MSSQLDialect struct {
	Legacy bool
}

func (d *MSSQLDialect) Name() string {
	if d.Legacy {
		return "mssql"
	}
	return "sqlserver"
}

func (d *MSSQLDialect) CreateTableQuery(table string) string {
	// SQL Server has no CREATE TABLE IF NOT EXISTS; guard with OBJECT_ID instead.
	return fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL
CREATE TABLE %s (
    id BIGINT IDENTITY(1,1) PRIMARY KEY,
    run_id NVARCHAR(36) NOT NULL,
    source_uri NVARCHAR(1024) NOT NULL,
    destination_uri NVARCHAR(1024),
    pii_fields NVARCHAR(MAX),
    row_count INT NOT NULL DEFAULT 0,
    masked_count INT NOT NULL DEFAULT 0,
    status NVARCHAR(16) NOT NULL,
    error_message NVARCHAR(MAX),
    started_at DATETIME2 NOT NULL,
    finished_at DATETIME2 NOT NULL
)`, strings.ReplaceAll(table, "'", "''"), table)
}

func (d *MSSQLDialect) InsertQuery(table string, cols []string) string {
	return DefaultInsertQuery(table, cols, d.Placeholder)
}

func (d *MSSQLDialect) Placeholder(index int) string {
	if d.Legacy {
		return "?"
	}
	return fmt.Sprintf("@p%d", index+1)
}

func (d *MSSQLDialect) CountQuery(table string) string {
	return DefaultCountQuery(table)
}
