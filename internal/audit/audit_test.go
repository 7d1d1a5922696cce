package audit_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"gdpr-obfuscator/internal/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDriver is a database/sql driver that keeps every statement it is
// asked to execute.
type recordingDriver struct {
	mu      sync.Mutex
	execs   []string
	args    [][]driver.NamedValue
	failOn  string
	counted int64
}

func (d *recordingDriver) Open(string) (driver.Conn, error) { return &recordingConn{d: d}, nil }

type recordingConn struct{ d *recordingDriver }

func (c *recordingConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c *recordingConn) Close() error                        { return nil }
func (c *recordingConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

func (c *recordingConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if c.d.failOn != "" && strings.Contains(query, c.d.failOn) {
		return nil, errors.New("boom")
	}
	c.d.execs = append(c.d.execs, query)
	c.d.args = append(c.d.args, args)
	if strings.HasPrefix(query, "INSERT") {
		c.d.counted++
	}
	return driver.RowsAffected(1), nil
}

func (c *recordingConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	return &countRows{n: c.d.counted}, nil
}

type countRows struct {
	n    int64
	done bool
}

func (r *countRows) Columns() []string { return []string{"count"} }
func (r *countRows) Close() error      { return nil }
func (r *countRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = r.n
	return nil
}

var (
	registerOnce sync.Once
	fake         = &recordingDriver{}
)

func openFake(t *testing.T) *sql.DB {
	t.Helper()
	registerOnce.Do(func() { sql.Register("auditfake", fake) })

	fake.mu.Lock()
	fake.execs, fake.args, fake.failOn, fake.counted = nil, nil, "", 0
	fake.mu.Unlock()

	db, err := sql.Open("auditfake", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLRecorder_Record(t *testing.T) {
	ctx := context.Background()
	db := openFake(t)

	r, err := audit.NewSQLRecorder(ctx, db, "postgres", "")
	require.NoError(t, err)

	started := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	err = r.Record(ctx, audit.Entry{
		RunID:       "run-1",
		Source:      "s3://test-bucket/new_data/student_data.csv",
		Destination: "s3://test-bucket/obfuscated_data/obfuscated_student_data.csv",
		Fields:      []string{"name", "email_address"},
		Rows:        3,
		Masked:      6,
		Status:      audit.StatusSucceeded,
		StartedAt:   started,
		FinishedAt:  started.Add(time.Second),
	})
	require.NoError(t, err)

	fake.mu.Lock()
	require.Len(t, fake.execs, 2)
	assert.True(t, strings.HasPrefix(fake.execs[0], "CREATE TABLE IF NOT EXISTS obfuscation_audit"))
	assert.Equal(t, "INSERT INTO obfuscation_audit (run_id, source_uri, destination_uri, pii_fields, row_count, masked_count, status, error_message, started_at, finished_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)", fake.execs[1])
	args := fake.args[1]
	fake.mu.Unlock()

	require.Len(t, args, 10)
	assert.Equal(t, "run-1", args[0].Value)
	assert.Equal(t, "name,email_address", args[3].Value)
	assert.Equal(t, int64(6), args[5].Value)
	assert.Equal(t, started, args[8].Value)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLRecorder_Errors(t *testing.T) {
	ctx := context.Background()
	db := openFake(t)

	_, err := audit.NewSQLRecorder(ctx, db, "sqlite3", "")
	assert.Error(t, err)

	_, err = audit.NewSQLRecorder(ctx, db, "postgres", "audit; DROP TABLE x")
	assert.Error(t, err)

	fake.mu.Lock()
	fake.failOn = "CREATE TABLE"
	fake.mu.Unlock()
	_, err = audit.NewSQLRecorder(ctx, db, "mysql", "")
	assert.Error(t, err)

	fake.mu.Lock()
	fake.failOn = "INSERT"
	fake.mu.Unlock()
	r, err := audit.NewSQLRecorder(ctx, db, "mysql", "gdpr.audit_log")
	require.NoError(t, err)
	assert.Error(t, r.Record(ctx, audit.Entry{RunID: "x"}))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, audit.Config{}.Validate())
	assert.Error(t, audit.Config{Enabled: true, Driver: "postgres"}.Validate())
	assert.Error(t, audit.Config{Enabled: true, Driver: "db2", DSN: "x"}.Validate())
	assert.Error(t, audit.Config{Enabled: true, Driver: "postgres", DSN: "x", Table: "bad-name"}.Validate())
	assert.NoError(t, audit.Config{Enabled: true, Driver: "oracle", DSN: "oracle://u:p@h/db"}.Validate())
}

func TestNopRecorder(t *testing.T) {
	var r audit.Recorder = audit.NopRecorder{}
	assert.NoError(t, r.Record(context.Background(), audit.Entry{}))
}
