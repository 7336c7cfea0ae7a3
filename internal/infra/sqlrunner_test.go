package infra

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const testMarker = "3b1f0c52-8f57-4d0e-9a6c-2f4b5d7e9a10"

func TestParseStatement(t *testing.T) {
	st, err := parseStatement("\n--sql " + testMarker + "\nselect 1;\n")
	if err != nil {
		t.Fatalf("parseStatement: %v", err)
	}
	if st.marker != testMarker || st.body != "select 1;" {
		t.Fatalf("statement = %+v", st)
	}
}

func TestParseStatementRejectsUntaggedQueries(t *testing.T) {
	if _, err := parseStatement("  \n"); !errors.Is(err, errEmptyStatement) {
		t.Fatalf("blank: err = %v", err)
	}
	for _, q := range []string{"select 1", "--sql not-a-uuid\nselect 1", "--sql " + testMarker + "x\nselect 1"} {
		if _, err := parseStatement(q); !errors.Is(err, errMissingMarker) {
			t.Fatalf("%q: err = %v", q, err)
		}
	}
}

type fakeConn struct {
	queries []string
	execErr error
	rowErr  error
	rows    *fakeRows
}

func (f *fakeConn) Exec(_ context.Context, q string, _ ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, q)
	return pgconn.NewCommandTag("UPDATE 2"), f.execErr
}

func (f *fakeConn) QueryRow(_ context.Context, q string, _ ...any) pgx.Row {
	f.queries = append(f.queries, q)
	return errorRow{err: f.rowErr}
}

func (f *fakeConn) Query(_ context.Context, q string, _ ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, q)
	return f.rows, nil
}

type fakeRows struct {
	pgx.Rows
	closes int
	err    error
}

func (f *fakeRows) Close() { f.closes++ }
func (f *fakeRows) Err() error { return f.err }

func newTestRunner(conn *fakeConn) (*SQLRunner, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewSQLRunner(conn, zerolog.New(&buf)), &buf
}

func TestSQLRunnerStripsMarker(t *testing.T) {
	conn := &fakeConn{}
	r, logs := newTestRunner(conn)
	tag, err := r.Exec(context.Background(), "--sql "+testMarker+"\nupdate campaigns set status = $2 where id = $1;")
	if err != nil || tag.RowsAffected() != 2 {
		t.Fatalf("Exec = %v, %v", tag, err)
	}
	if conn.queries[0] != "update campaigns set status = $2 where id = $1;" {
		t.Fatalf("sent %q", conn.queries[0])
	}
	if !strings.Contains(logs.String(), `"sql":"`+testMarker+`"`) || !strings.Contains(logs.String(), `"rows":2`) {
		t.Fatalf("logs = %s", logs.String())
	}

	if _, err := r.Exec(context.Background(), "select 1"); !errors.Is(err, errMissingMarker) || len(conn.queries) != 1 {
		t.Fatalf("untagged exec reached the connection: %v", err)
	}
}

func TestSQLRunnerLogsFailuresButNotEmptyResults(t *testing.T) {
	conn := &fakeConn{rowErr: pgx.ErrNoRows}
	r, logs := newTestRunner(conn)
	q := "--sql " + testMarker + "\nselect id from renders where id = $1;"

	var id string
	if err := r.QueryRow(context.Background(), q, "x").Scan(&id); !IsNoRows(err) {
		t.Fatalf("err = %v", err)
	}
	if strings.Contains(logs.String(), `"level":"error"`) {
		t.Fatalf("no rows logged as error: %s", logs.String())
	}

	conn.rowErr = errors.New("conn reset")
	_ = r.QueryRow(context.Background(), q, "x").Scan(&id)
	if !strings.Contains(logs.String(), `"level":"error"`) || !strings.Contains(logs.String(), "conn reset") {
		t.Fatalf("logs = %s", logs.String())
	}
}

func TestSQLRunnerReportsQueryOnClose(t *testing.T) {
	conn := &fakeConn{rows: &fakeRows{err: errors.New("decode failed")}}
	r, logs := newTestRunner(conn)
	rows, err := r.Query(context.Background(), "--sql "+testMarker+"\nselect 1;")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if logs.Len() != 0 {
		t.Fatalf("logged before close: %s", logs.String())
	}
	rows.Close()
	rows.Close()
	if conn.rows.closes != 2 || strings.Count(logs.String(), "sql: query") != 1 {
		t.Fatalf("closes = %d logs = %s", conn.rows.closes, logs.String())
	}
	if !strings.Contains(logs.String(), "decode failed") {
		t.Fatalf("logs = %s", logs.String())
	}
}
