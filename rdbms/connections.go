package rdbms

import (
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms/shared"
	"github.com/xo/dburl"
)

// supportedDsnConnectionTypes is a map where keys are the connection types opened generically via dburl.
// Snowflake, Netezza and SQLite connections are handled explicitly so do not need to be here.
var supportedDsnConnectionTypes = map[string]struct{}{
	constants.ConnectionTypeSqlServer: struct{}{},
	constants.ConnectionTypePostgres:  struct{}{},
}

// isSupportedConnection returns true if it can look up the supplied connection type t in map of supported
// connections supportedDsnConnectionTypes.
func isSupportedConnection(connectionType string) bool {
	_, ok := supportedDsnConnectionTypes[connectionType]
	return ok
}

// OpenDbConnection opens a database connection using the supplied ConnectionDetails struct in c.
// The returned Connector owns exactly one database session.
func OpenDbConnection(log logger.Logger, c shared.ConnectionDetails) (db shared.Connector, err error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	switch c.Type {
	case constants.ConnectionTypeSnowflake:
		db, err = newSnowflakeConnection(log, c)
	case constants.ConnectionTypeNetezza:
		db, err = newNetezzaConnection(log, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeSqlite:
		db, err = newSqliteConnection(log, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeMock:
		db = shared.NewMockConnection(constants.ConnectionTypeMock)
	default:
		if isSupportedConnection(c.Type) { // if the connection type is supported...
			db, err = newConnectionWithDsn(log, shared.GetDsnConnectionDetails(&c))
		} else { // else we have an unsupported database...
			err = fmt.Errorf("unsupported database type, %q", c.Type)
		}
	}
	return
}

func newConnectionWithDsn(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	log.Info("Opening database connection: ", d)
	u, err := d.Parse()
	if err != nil { // if the DSN could not be parsed...
		return nil, err
	}
	db, err := sql.Open(u.Driver, u.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %v connection", u.OriginalScheme)
	}
	conn := shared.NewHpConnection(db, schemeToConnectionType(u))
	// Test the connection.
	if err = conn.DbSql.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "error connecting to database")
	}
	log.Info("Successful connection to: ", d)
	return conn, nil
}

// schemeToConnectionType maps dburl scheme aliases onto our connection type constants.
func schemeToConnectionType(u *dburl.URL) string {
	switch u.Driver {
	case "postgres":
		return constants.ConnectionTypePostgres
	case "sqlserver", "mssql":
		return constants.ConnectionTypeSqlServer
	default:
		return u.OriginalScheme
	}
}
