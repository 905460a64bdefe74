package shared

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/constants"
)

// MockConnection is a Connector that records statements instead of executing them.
// Use FailOn to make specific statements fail and QueryResults to return rows for queries.
type MockConnection struct {
	DbType       string
	FailOn       map[string]error           // statement text => error returned by Exec
	QueryResults map[string][][]interface{} // query text => rows
	QueryErr     map[string]error           // query text => error returned by Query
	BeginErr     error
	CommitErr    error
	mu           sync.Mutex
	Executed     []string
	Queries      []string
	Begins       int
	Commits      int
	Rollbacks    int
	Closed       bool
}

// NewMockConnection returns a MockConnection that reports itself as dbType.
func NewMockConnection(dbType string) *MockConnection {
	if dbType == "" {
		dbType = constants.ConnectionTypeMock
	}
	return &MockConnection{
		DbType:       dbType,
		FailOn:       make(map[string]error),
		QueryResults: make(map[string][][]interface{}),
		QueryErr:     make(map[string]error),
	}
}

func (c *MockConnection) Begin() (Transacter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.BeginErr != nil {
		return nil, c.BeginErr
	}
	c.Begins++
	return &MockTx{conn: c}, nil
}

func (c *MockConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.ExecContext(context.Background(), query, args...)
}

func (c *MockConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Executed = append(c.Executed, query)
	if err, ok := c.FailOn[query]; ok {
		return nil, err
	}
	return mockResult(1), nil
}

func (c *MockConnection) Query(query string, args ...interface{}) (Rows, error) {
	return c.QueryContext(context.Background(), query, args...)
}

func (c *MockConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Queries = append(c.Queries, query)
	if err, ok := c.QueryErr[query]; ok {
		return nil, err
	}
	return &mockRows{rows: c.QueryResults[query], idx: -1}, nil
}

func (c *MockConnection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
}

func (c *MockConnection) GetType() string {
	return c.DbType
}

// MockTx records statements against its parent MockConnection.
type MockTx struct {
	conn *MockConnection
	done bool
}

func (t *MockTx) Exec(query string, args ...interface{}) (Result, error) {
	return t.ExecContext(context.Background(), query, args...)
}

func (t *MockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	if t.done {
		return nil, errors.New("transaction has already been committed or rolled back")
	}
	return t.conn.ExecContext(ctx, query, args...)
}

func (t *MockTx) Commit() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	if t.done {
		return errors.New("transaction has already been committed or rolled back")
	}
	t.done = true
	if t.conn.CommitErr != nil {
		return t.conn.CommitErr
	}
	t.conn.Commits++
	return nil
}

func (t *MockTx) Rollback() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	if t.done {
		return errors.New("transaction has already been committed or rolled back")
	}
	t.done = true
	t.conn.Rollbacks++
	return nil
}

type mockResult int64

func (r mockResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (r mockResult) RowsAffected() (int64, error) {
	return int64(r), nil
}

type mockRows struct {
	rows [][]interface{}
	idx  int
}

// Columns names one column per value in the first row. An empty result still reports a single column,
// as a real query always has at least one.
func (r *mockRows) Columns() ([]string, error) {
	if len(r.rows) == 0 {
		return []string{"COL1"}, nil
	}
	cols := make([]string, len(r.rows[0]))
	for i := range cols {
		cols[i] = fmt.Sprintf("COL%v", i+1)
	}
	return cols, nil
}

func (r *mockRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

// Scan copies the current row into dest, converting to the pointer types used by this module.
func (r *mockRows) Scan(dest ...interface{}) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return errors.New("scan called without a current row")
	}
	row := r.rows[r.idx]
	if len(dest) != len(row) {
		return errors.Errorf("expected %v destination arguments in Scan, not %v", len(row), len(dest))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *interface{}:
			*d = v
		case *string:
			*d = fmt.Sprintf("%v", v)
		case *int64:
			n, err := strconv.ParseInt(fmt.Sprintf("%v", v), 10, 64)
			if err != nil {
				return errors.Wrapf(err, "unable to scan column %v into int64", i+1)
			}
			*d = n
		case *float64:
			f, err := strconv.ParseFloat(fmt.Sprintf("%v", v), 64)
			if err != nil {
				return errors.Wrapf(err, "unable to scan column %v into float64", i+1)
			}
			*d = f
		default:
			return errors.Errorf("unsupported Scan destination type %T", dest[i])
		}
	}
	return nil
}

func (r *mockRows) Err() error {
	return nil
}

func (r *mockRows) Close() error {
	return nil
}
