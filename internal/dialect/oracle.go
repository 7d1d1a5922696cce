package dialect

import (
	"fmt"
	"strings"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) CreateTableQuery(table string) string {
	// Oracle before 23c has no IF NOT EXISTS. Run the DDL in a PL/SQL block
	// and swallow ORA-00955 (name is already used by an existing object).
	ddl := fmt.Sprintf(`CREATE TABLE %s (
    id NUMBER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    run_id VARCHAR2(36) NOT NULL,
    source_uri VARCHAR2(1024) NOT NULL,
    destination_uri VARCHAR2(1024),
    pii_fields VARCHAR2(4000),
    row_count NUMBER(10) DEFAULT 0 NOT NULL,
    masked_count NUMBER(10) DEFAULT 0 NOT NULL,
    status VARCHAR2(16) NOT NULL,
    error_message VARCHAR2(4000),
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL
)`, table)
	return fmt.Sprintf(`BEGIN
    EXECUTE IMMEDIATE '%s';
EXCEPTION
    WHEN OTHERS THEN
        IF SQLCODE != -955 THEN
            RAISE;
        END IF;
END;`, strings.ReplaceAll(ddl, "'", "''"))
}

func (d *OracleDialect) InsertQuery(table string, cols []string) string {
	return DefaultInsertQuery(table, cols, d.Placeholder)
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index+1)
}

func (d *OracleDialect) CountQuery(table string) string {
	return DefaultCountQuery(table)
}
