package rdbms

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/helper"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms/shared"
	sf "github.com/snowflakedb/gosnowflake"
)

// DefaultSnowflakeConnectionKeyNames are the keys used in ConnectionDetails.Data
// when a Snowflake connection is described by its parts instead of a DSN.
var DefaultSnowflakeConnectionKeyNames = struct {
	AccountName  string
	DatabaseName string
	Warehouse    string
	SchemaName   string
	UserName     string
	Password     string
	RoleName     string
}{
	AccountName:  "accountName",
	DatabaseName: "databaseName",
	Warehouse:    "warehouse",
	SchemaName:   "schemaName",
	UserName:     "userName",
	Password:     "password",
	RoleName:     "roleName",
}

var snowflakePrefixRegexp = regexp.MustCompile("^snowflake://")

type SnowflakeConnectionDetails struct {
	Account   string `errorTxt:"Snowflake account" mandatory:"yes"`
	DBName    string `errorTxt:"Snowflake db name"`
	Schema    string `errorTxt:"Snowflake schema"`
	User      string `errorTxt:"Snowflake username" mandatory:"yes"`
	Password  string `errorTxt:"Snowflake password" mandatory:"yes"`
	Warehouse string `errorTxt:"Snowflake warehouse"`
	RoleName  string `errorTxt:"Snowflake role name"`
}

func (d SnowflakeConnectionDetails) String() string {
	return fmt.Sprintf("%v:%v@%v/%v?schema=%v&warehouse=%v&role=%v",
		d.User,
		"xxxxxxx",
		d.Account,
		d.DBName,
		d.Schema,
		d.Warehouse,
		d.RoleName,
	)
}

// GetSnowflakeConnectionDetails converts generic ConnectionDetails into SnowflakeConnectionDetails.
func GetSnowflakeConnectionDetails(c *shared.ConnectionDetails) *SnowflakeConnectionDetails {
	return &SnowflakeConnectionDetails{
		Password:  c.Data[DefaultSnowflakeConnectionKeyNames.Password],
		User:      c.Data[DefaultSnowflakeConnectionKeyNames.UserName],
		Schema:    c.Data[DefaultSnowflakeConnectionKeyNames.SchemaName],
		DBName:    c.Data[DefaultSnowflakeConnectionKeyNames.DatabaseName],
		Account:   c.Data[DefaultSnowflakeConnectionKeyNames.AccountName],
		Warehouse: c.Data[DefaultSnowflakeConnectionKeyNames.Warehouse],
		RoleName:  c.Data[DefaultSnowflakeConnectionKeyNames.RoleName],
	}
}

// SnowflakeConnectionDetailsToMap populates m with the parts of c, creating m if it is nil.
func SnowflakeConnectionDetailsToMap(m map[string]string, c *SnowflakeConnectionDetails) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[DefaultSnowflakeConnectionKeyNames.UserName] = c.User
	m[DefaultSnowflakeConnectionKeyNames.Password] = c.Password
	m[DefaultSnowflakeConnectionKeyNames.SchemaName] = c.Schema
	m[DefaultSnowflakeConnectionKeyNames.DatabaseName] = c.DBName
	m[DefaultSnowflakeConnectionKeyNames.RoleName] = c.RoleName
	m[DefaultSnowflakeConnectionKeyNames.AccountName] = c.Account
	m[DefaultSnowflakeConnectionKeyNames.Warehouse] = c.Warehouse
	return m
}

// newSnowflakeConnection opens the Snowflake database connection specified in c.
// A DSN takes priority over the individual connection parts.
// Once connected, the session's warehouse, database and schema are selected with USE statements.
func newSnowflakeConnection(log logger.Logger, c shared.ConnectionDetails) (shared.Connector, error) {
	d := GetSnowflakeConnectionDetails(&c)
	dsn := c.GetDsn()
	if dsn == "" { // if there is no DSN...
		// Build one from the parts.
		if err := helper.ValidateStructIsPopulated(d); err != nil {
			return nil, err
		}
		var err error
		if dsn, err = SnowflakeGetDSN(d); err != nil {
			return nil, err
		}
	} else { // else use the parts of the DSN for the session context...
		p, err := SnowflakeParseDSN(dsn)
		if err != nil {
			return nil, err
		}
		d = p
	}
	db, err := sql.Open("snowflake", strings.TrimPrefix(dsn, "snowflake://"))
	if err != nil {
		return nil, errors.Wrap(err, "error opening Snowflake connection")
	}
	conn := shared.NewHpConnection(db, constants.ConnectionTypeSnowflake)
	if err = conn.DbSql.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "error connecting to Snowflake")
	}
	log.Info("Successful database connection to Snowflake: ", d)
	if err = SetSnowflakeContext(log, conn, d.Warehouse, d.DBName, d.Schema); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// SetSnowflakeContext issues USE statements for each non-empty object on the session owned by conn.
func SetSnowflakeContext(log logger.Logger, conn shared.Connector, warehouse, database, schema string) error {
	stmts := []struct {
		kind string
		name string
	}{
		{"WAREHOUSE", warehouse},
		{"DATABASE", database},
		{"SCHEMA", schema},
	}
	for _, s := range stmts {
		if s.name == "" {
			continue
		}
		sqlText := fmt.Sprintf("USE %v %v", s.kind, s.name)
		log.Debug("setting session context: ", sqlText)
		if _, err := conn.Exec(sqlText); err != nil {
			return errors.Wrapf(err, "error setting session context using %q", sqlText)
		}
	}
	log.Info("Session context set to warehouse=", warehouse, " database=", database, " schema=", schema)
	return nil
}

// SnowflakeGetDSN constructs a DSN based on SnowflakeConnectionDetails.
// The prefix 'snowflake://' is added to the DSN.
func SnowflakeGetDSN(c *SnowflakeConnectionDetails) (string, error) {
	cfg := &sf.Config{
		Account:   c.Account,
		Database:  c.DBName,
		Schema:    c.Schema,
		User:      c.User,
		Password:  c.Password,
		Warehouse: c.Warehouse,
		Role:      c.RoleName,
	}
	dsn, err := sf.DSN(cfg)
	if err != nil {
		return "", err
	}
	if !snowflakePrefixRegexp.MatchString(dsn) { // if the prefix is missing...
		dsn = fmt.Sprintf("snowflake://%v", dsn)
	}
	return dsn, nil
}

// SnowflakeParseDSN converts a Snowflake DSN into native connection details.
// The prefix 'snowflake://' is removed from the DSN if it exists.
func SnowflakeParseDSN(d string) (*SnowflakeConnectionDetails, error) {
	if !snowflakePrefixRegexp.MatchString(d) {
		return nil, errors.New("unsupported Snowflake DSN format")
	}
	cfg, err := sf.ParseDSN(strings.TrimPrefix(d, "snowflake://"))
	if err != nil {
		return nil, err
	}
	retval := &SnowflakeConnectionDetails{
		User:      cfg.User,
		Password:  cfg.Password,
		Schema:    cfg.Schema,
		DBName:    cfg.Database,
		Account:   cfg.Account,
		RoleName:  cfg.Role,
		Warehouse: cfg.Warehouse,
	}
	if cfg.Region != "" { // if region exists in the parsed config...
		// Add it to our account settings.
		retval.Account = fmt.Sprintf("%v.%v", retval.Account, cfg.Region)
	}
	return retval, nil
}
