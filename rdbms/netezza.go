package rdbms

import (
	"database/sql"

	_ "github.com/IBM/nzgo/v12"
	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms/shared"
)

// newNetezzaConnection opens the Netezza database connection specified in d.
func newNetezzaConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	n := shared.NetezzaConnectionDetails{Dsn: d.Dsn}
	dsn, err := n.GetNzgoConnectionString()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("nzgo", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "error opening Netezza connection")
	}
	conn := shared.NewHpConnection(db, constants.ConnectionTypeNetezza)
	if err = conn.DbSql.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "error connecting to Netezza")
	}
	log.Info("Successful database connection to Netezza: ", n)
	return conn, nil
}
