package dialect

// Dialect abstracts the database-specific SQL of the audit trail.
type Dialect interface {
	// Name is the database/sql driver name the dialect is meant for.
	Name() string

	// CreateTableQuery creates the audit table unless it already exists.
	CreateTableQuery(table string) string

	// Query Generation
	InsertQuery(table string, cols []string) string
	Placeholder(index int) string // Returns ?, $1, @p1, :1
	CountQuery(table string) string
}
