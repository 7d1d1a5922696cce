package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gdpr-obfuscator/internal/dialect"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"

	DefaultTable = "obfuscation_audit"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Entry is one pipeline run as stored in the audit table.
type Entry struct {
	RunID       string
	Source      string
	Destination string
	Fields      []string
	Rows        int
	Masked      int
	Status      string
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Recorder persists run entries. The pipeline never fails a run because of
// a recorder error; it only logs it.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }

type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	Table   string `mapstructure:"table"`
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.DSN == "" {
		return errors.New("audit.dsn is required when audit is enabled")
	}
	if _, err := dialect.GetDialect(c.Driver); err != nil {
		return err
	}
	if c.Table != "" && !tableNamePattern.MatchString(c.Table) {
		return fmt.Errorf("invalid audit table name %q", c.Table)
	}
	return nil
}

var columns = []string{
	"run_id", "source_uri", "destination_uri", "pii_fields",
	"row_count", "masked_count", "status", "error_message",
	"started_at", "finished_at",
}

type SQLRecorder struct {
	db      *sql.DB
	dialect dialect.Dialect
	table   string
	insert  string
}

// Open connects with cfg and makes sure the audit table exists.
func Open(ctx context.Context, cfg Config) (*SQLRecorder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to audit db: %w", err)
	}

	r, err := NewSQLRecorder(ctx, db, cfg.Driver, cfg.Table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func NewSQLRecorder(ctx context.Context, db *sql.DB, driver, table string) (*SQLRecorder, error) {
	d, err := dialect.GetDialect(driver)
	if err != nil {
		return nil, err
	}
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid audit table name %q", table)
	}

	if _, err := db.ExecContext(ctx, d.CreateTableQuery(table)); err != nil {
		return nil, fmt.Errorf("failed to create audit table %s: %w", table, err)
	}

	return &SQLRecorder{
		db:      db,
		dialect: d,
		table:   table,
		insert:  d.InsertQuery(table, columns),
	}, nil
}

func (r *SQLRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, r.insert,
		e.RunID,
		e.Source,
		e.Destination,
		strings.Join(e.Fields, ","),
		e.Rows,
		e.Masked,
		e.Status,
		e.Error,
		e.StartedAt.UTC(),
		e.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry %s: %w", e.RunID, err)
	}
	return nil
}

// Count returns how many entries the audit table holds.
func (r *SQLRecorder) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, r.dialect.CountQuery(r.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return n, nil
}

func (r *SQLRecorder) Close() error {
	return r.db.Close()
}
