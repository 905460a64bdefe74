package rdbms

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms/shared"
	_ "modernc.org/sqlite"
)

const sqliteMemory = ":memory:"

// GetSqliteFileName returns the database file named by a DSN of the form sqlite://<file>.
// An empty file name selects an in-memory database.
func GetSqliteFileName(dsn string) string {
	f := strings.TrimPrefix(dsn, constants.ConnectionTypeSqlite+"://")
	f = strings.TrimPrefix(f, constants.ConnectionTypeSqlite+":")
	if f == "" {
		return sqliteMemory
	}
	return f
}

// newSqliteConnection opens a local SQLite database; useful for trying pipelines without a warehouse.
func newSqliteConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	fileName := GetSqliteFileName(d.Dsn)
	db, err := sql.Open("sqlite", fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening SQLite database %q", fileName)
	}
	conn := shared.NewHpConnection(db, constants.ConnectionTypeSqlite)
	if err = conn.DbSql.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "error connecting to SQLite database %q", fileName)
	}
	log.Info("Successful database connection to SQLite: ", fileName)
	return conn, nil
}
