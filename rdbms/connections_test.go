package rdbms_test

import (
	"strings"
	"testing"

	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms"
	"github.com/relloyd/sqlsteps/rdbms/shared"
)

func TestOpenDbConnection(t *testing.T) {
	log := logger.NewLogger("sqlsteps", "error", true)
	// Test 1 - unsupported type.
	_, err := rdbms.OpenDbConnection(log, shared.ConnectionDetails{Type: "nonExistentDatabaseType"})
	if err == nil {
		t.Fatal("expected error for unsupported database type")
	}
	// Test 2 - mock type.
	db, err := rdbms.OpenDbConnection(log, shared.ConnectionDetails{Type: constants.ConnectionTypeMock})
	if err != nil {
		t.Fatal(err)
	}
	if db.GetType() != constants.ConnectionTypeMock {
		t.Fatalf("expected mock connection; got %v", db.GetType())
	}
	// Test 3 - in-memory SQLite.
	db, err = rdbms.OpenDbConnection(log, shared.ConnectionDetails{
		Type: constants.ConnectionTypeSqlite,
		Data: map[string]string{"dsn": "sqlite://"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if db.GetType() != constants.ConnectionTypeSqlite {
		t.Fatalf("expected sqlite connection; got %v", db.GetType())
	}
	// Test 4 - Snowflake without a DSN or credentials is refused before connecting.
	_, err = rdbms.OpenDbConnection(log, shared.ConnectionDetails{Type: constants.ConnectionTypeSnowflake})
	if err == nil || !strings.Contains(err.Error(), "Snowflake account") {
		t.Fatalf("expected missing Snowflake account error; got %v", err)
	}
	// Test 5 - bad DSN for a dburl connection.
	_, err = rdbms.OpenDbConnection(log, shared.ConnectionDetails{Type: constants.ConnectionTypePostgres})
	if err == nil {
		t.Fatal("expected error for missing DSN")
	}
}

func TestGetSqliteFileName(t *testing.T) {
	cases := map[string]string{
		"":                 ":memory:",
		"sqlite://":        ":memory:",
		"sqlite://a.db":    "a.db",
		"sqlite:/tmp/b.db": "/tmp/b.db",
	}
	for in, expected := range cases {
		if got := rdbms.GetSqliteFileName(in); got != expected {
			t.Fatalf("input %q: expected %q; got %q", in, expected, got)
		}
	}
}

func TestSnowflakeDSN(t *testing.T) {
	d := &rdbms.SnowflakeConnectionDetails{
		Account:   "acme",
		DBName:    "dataeng_stage",
		Schema:    "public",
		User:      "loader",
		Password:  "secret",
		Warehouse: "COMPUTE_WH",
	}
	dsn, err := rdbms.SnowflakeGetDSN(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dsn, "snowflake://") {
		t.Fatalf("expected snowflake:// prefix; got %v", dsn)
	}
	p, err := rdbms.SnowflakeParseDSN(dsn)
	if err != nil {
		t.Fatal(err)
	}
	if p.User != "loader" || p.DBName != "dataeng_stage" || p.Schema != "public" || p.Warehouse != "COMPUTE_WH" {
		t.Fatalf("unexpected parsed details %+v", p)
	}
	if strings.Contains(p.String(), "secret") {
		t.Fatalf("expected redacted password in %v", p.String())
	}
	if _, err = rdbms.SnowflakeParseDSN("acme/db"); err == nil {
		t.Fatal("expected error for DSN without snowflake:// prefix")
	}
	// Round trip through a ConnectionDetails map.
	m := rdbms.SnowflakeConnectionDetailsToMap(nil, d)
	got := rdbms.GetSnowflakeConnectionDetails(&shared.ConnectionDetails{Data: m})
	if *got != *d {
		t.Fatalf("expected %+v; got %+v", d, got)
	}
}

func TestSetSnowflakeContext(t *testing.T) {
	log := logger.NewLogger("sqlsteps", "error", true)
	m := shared.NewMockConnection(constants.ConnectionTypeSnowflake)
	if err := rdbms.SetSnowflakeContext(log, m, "COMPUTE_WH", "dataeng_stage", ""); err != nil {
		t.Fatal(err)
	}
	expected := []string{"USE WAREHOUSE COMPUTE_WH", "USE DATABASE dataeng_stage"}
	if len(m.Executed) != len(expected) {
		t.Fatalf("expected %v; got %v", expected, m.Executed)
	}
	for i := range expected {
		if m.Executed[i] != expected[i] {
			t.Fatalf("expected %q; got %q", expected[i], m.Executed[i])
		}
	}
}
