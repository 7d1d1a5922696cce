package dialect

import "fmt"

// GetDialect returns the Dialect implementation for a database/sql driver name.
func GetDialect(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return &MysqlDialect{}, nil
	case "postgres":
		return &PostgresDialect{}, nil
	case "sqlserver":
		return &MSSQLDialect{}, nil
	case "mssql":
		return &MSSQLDialect{Legacy: true}, nil
	case "oracle":
		return &OracleDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported audit driver %q (mysql, postgres, sqlserver, mssql, oracle)", driver)
	}
}

// Ensure interface implementation
var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*MSSQLDialect)(nil)
var _ Dialect = (*OracleDialect)(nil)
