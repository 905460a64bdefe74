package shared

import (
	"testing"

	"github.com/relloyd/sqlsteps/constants"
)

func TestSqlInsertTxtBatch(t *testing.T) {
	// Test 1 - positional binds for Snowflake.
	o, err := NewInsertGenerator(constants.ConnectionTypeSnowflake, "finance.mapping", []string{"ID", "NAME"})
	if err != nil {
		t.Fatal(err)
	}
	o.InitBatch(2)
	full, err := o.AddValuesToBatch([]interface{}{"1", "a"})
	if err != nil || full {
		t.Fatalf("expected room in batch; full = %v; err = %v", full, err)
	}
	full, err = o.AddValuesToBatch([]interface{}{"2", "b"})
	if err != nil || !full {
		t.Fatalf("expected full batch; full = %v; err = %v", full, err)
	}
	expected := "insert into finance.mapping (ID, NAME) values (?, ?), (?, ?)"
	if got := o.GetStatement(); got != expected {
		t.Fatalf("expected %q; got %q", expected, got)
	}
	if len(o.GetValues()) != 4 {
		t.Fatalf("expected 4 values; got %v", len(o.GetValues()))
	}
	// Test 2 - batch overflow is an error.
	if _, err = o.AddValuesToBatch([]interface{}{"3", "c"}); err == nil {
		t.Fatal("expected error adding to a full batch")
	}
	// Test 3 - numbered binds for Postgres and a partial batch.
	p, _ := NewInsertGenerator(constants.ConnectionTypePostgres, "t", []string{"a", "b"})
	p.InitBatch(10)
	_, _ = p.AddValuesToBatch([]interface{}{1, 2})
	_, _ = p.AddValuesToBatch([]interface{}{3, 4})
	expected = "insert into t (a, b) values ($1, $2), ($3, $4)"
	if got := p.GetStatement(); got != expected {
		t.Fatalf("expected %q; got %q", expected, got)
	}
	// Test 4 - wrong number of values.
	if _, err = p.AddValuesToBatch([]interface{}{1}); err == nil {
		t.Fatal("expected error for a short row")
	}
	// Test 5 - missing columns.
	if _, err = NewInsertGenerator(constants.ConnectionTypeSqlite, "t", nil); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestGetBindPlaceholderFunc(t *testing.T) {
	if got := GetBindPlaceholderFunc(constants.ConnectionTypeSqlServer)(3); got != "@p3" {
		t.Fatalf("expected @p3; got %v", got)
	}
	if got := GetBindPlaceholderFunc(constants.ConnectionTypeSqlite)(3); got != "?" {
		t.Fatalf("expected ?; got %v", got)
	}
}
