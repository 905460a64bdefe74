package shared

import (
	"testing"

	"github.com/pkg/errors"
)

func TestMockConnection(t *testing.T) {
	c := NewMockConnection("")
	if c.GetType() != "mock" {
		t.Fatalf("expected mock type; got %v", c.GetType())
	}
	c.FailOn["bad"] = errors.New("boom")
	c.QueryResults["select count(*) from t"] = [][]interface{}{{int64(3)}}
	// Commit path.
	tx, err := c.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if _, err = tx.Exec("good"); err != nil {
		t.Fatal(err)
	}
	if _, err = tx.Exec("bad"); err == nil {
		t.Fatal("expected error from FailOn statement")
	}
	if err = tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if err = tx.Rollback(); err == nil {
		t.Fatal("expected error rolling back a committed transaction")
	}
	if c.Begins != 1 || c.Commits != 1 || c.Rollbacks != 0 {
		t.Fatalf("unexpected counters begins=%v commits=%v rollbacks=%v", c.Begins, c.Commits, c.Rollbacks)
	}
	if len(c.Executed) != 2 {
		t.Fatalf("expected 2 executed statements; got %v", c.Executed)
	}
	// Query path.
	rows, err := c.Query("select count(*) from t")
	if err != nil {
		t.Fatal(err)
	}
	if !rows.Next() {
		t.Fatal("expected a row")
	}
	var n int64
	if err = rows.Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3; got %v", n)
	}
	if rows.Next() {
		t.Fatal("expected only one row")
	}
	// Unknown query returns no rows.
	rows, _ = c.Query("select 1")
	if rows.Next() {
		t.Fatal("expected no rows for an unknown query")
	}
}
