package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLExecutor is the query surface repositories depend on. It is satisfied by
// SQLRunner and by test fakes.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// SlowStatement is the duration after which a statement is logged at warn.
const SlowStatement = 500 * time.Millisecond

var (
	errEmptyStatement = errors.New("sql: empty statement")
	errMissingMarker  = errors.New("sql: statement has no --sql <uuid> marker")
)

var markerRegexp = regexp.MustCompile(`^--sql ([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})$`)

// statement is a sqlinline query split into its audit marker and the SQL sent
// to Postgres.
type statement struct {
	marker string
	body   string
}

func parseStatement(query string) (statement, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return statement{}, errEmptyStatement
	}
	first, body, _ := strings.Cut(query, "\n")
	m := markerRegexp.FindStringSubmatch(strings.TrimSpace(first))
	if m == nil {
		return statement{}, errMissingMarker
	}
	return statement{marker: m[1], body: strings.TrimSpace(body)}, nil
}

// SQLRunner runs marker-tagged statements from internal/sqlinline. Each one
// is timed into SQLDuration under its marker and logged; statements slower
// than SlowStatement are logged at warn.
type SQLRunner struct {
	conn   SQLExecutor
	logger Logger
}

// NewSQLRunner wraps a connection, usually a *pgxpool.Pool.
func NewSQLRunner(conn SQLExecutor, logger Logger) *SQLRunner {
	return &SQLRunner{conn: conn, logger: logger}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	st, err := parseStatement(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	start := time.Now()
	tag, err := r.conn.Exec(ctx, st.body, args...)
	r.done(st, "exec", start, err).Int64("rows", tag.RowsAffected()).Msg("sql: exec")
	return tag, err
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	st, err := parseStatement(query)
	if err != nil {
		return errorRow{err: err}
	}
	return &timedRow{runner: r, st: st, start: time.Now(), row: r.conn.QueryRow(ctx, st.body, args...)}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	st, err := parseStatement(query)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := r.conn.Query(ctx, st.body, args...)
	if err != nil {
		r.done(st, "query", start, err).Msg("sql: query")
		return nil, err
	}
	return &timedRows{Rows: rows, runner: r, st: st, start: start}, nil
}

// done records the statement duration and returns the log event to finish.
// pgx.ErrNoRows is an answer, not a failure.
func (r *SQLRunner) done(st statement, op string, start time.Time, err error) *zerolog.Event {
	took := time.Since(start)
	SQLDuration.WithLabelValues(op, st.marker).Observe(took.Seconds())
	var ev *zerolog.Event
	switch {
	case err != nil && !IsNoRows(err):
		ev = r.logger.Error().Err(err)
	case took > SlowStatement:
		ev = r.logger.Warn()
	default:
		ev = r.logger.Debug()
	}
	return ev.Str("sql", st.marker).Str("op", op).Dur("took", took)
}

type timedRow struct {
	runner *SQLRunner
	st     statement
	start  time.Time
	row    pgx.Row
}

func (t *timedRow) Scan(dest ...any) error {
	err := t.row.Scan(dest...)
	t.runner.done(t.st, "query_row", t.start, err).Msg("sql: query row")
	return err
}

// timedRows reports when the caller closes the result set, so the duration
// covers streaming the rows.
type timedRows struct {
	pgx.Rows
	runner *SQLRunner
	st     statement
	start  time.Time
	closed bool
}

func (t *timedRows) Close() {
	t.Rows.Close()
	if t.closed {
		return
	}
	t.closed = true
	t.runner.done(t.st, "query", t.start, t.Rows.Err()).Msg("sql: query")
}

type errorRow struct {
	err error
}

func (e errorRow) Scan(...any) error {
	return e.err
}

var _ SQLExecutor = (*SQLRunner)(nil)
