package repo

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeSQL routes queries to per-query handlers and records every call.
type fakeSQL struct {
	mu       sync.Mutex
	calls    []fakeCall
	rowFns   map[string]func(args []any) pgx.Row
	queryFns map[string]func(args []any) (pgx.Rows, error)
}

type fakeCall struct {
	query string
	args  []any
}

func newFakeSQL() *fakeSQL {
	return &fakeSQL{
		rowFns:   make(map[string]func(args []any) pgx.Row),
		queryFns: make(map[string]func(args []any) (pgx.Rows, error)),
	}
}

func (f *fakeSQL) record(query string, args []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{query: query, args: args})
}

func (f *fakeSQL) callsFor(query string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.query == query {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.record(query, args)
	return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", query)
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.record(query, args)
	fn, ok := f.rowFns[query]
	if !ok {
		return fakeRow{err: fmt.Errorf("unexpected query row: %s", query)}
	}
	return fn(args)
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.record(query, args)
	fn, ok := f.queryFns[query]
	if !ok {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	return fn(args)
}

// fakeRow copies values into scan destinations by reflection.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.rows) {
		return pgx.ErrNoRows
	}
	return assign(dest, r.rows[r.idx-1])
}

func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) Close()                                       {}
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, fmt.Errorf("values not supported in test rows") }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("unexpected scan args: got %d want %d", len(dest), len(values))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i])
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("scan dest %d is not a pointer", i)
		}
		src := reflect.ValueOf(v)
		elem := target.Elem()
		if !src.Type().AssignableTo(elem.Type()) {
			if !src.Type().ConvertibleTo(elem.Type()) {
				return fmt.Errorf("scan dest %d: cannot assign %T to %s", i, v, elem.Type())
			}
			src = src.Convert(elem.Type())
		}
		elem.Set(src)
	}
	return nil
}
