package loader

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/file"
	"github.com/relloyd/sqlsteps/helper"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms"
	"github.com/relloyd/sqlsteps/rdbms/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCsv = `ID,Oracle_Customer_Name,Oracle_Customer_Name_ID,Oracle_Invoice_Group,Oracle_Invoice_Name,Oracle_GL_Account
1,Acme,100,North,Acme Ltd,4000
2,Globex,200,South,Globex Inc,
3,Initech,300,East,"Initech, LLC",4002
`

func setup(t *testing.T, content string) (string, func()) {
	dir, err := ioutil.TempDir("", "loader-")
	require.NoError(t, err)
	fileName := filepath.Join(dir, "mapping.csv")
	require.NoError(t, ioutil.WriteFile(fileName, []byte(content), 0600))
	return fileName, func() { _ = os.RemoveAll(dir) }
}

func openSqlite(t *testing.T, log logger.Logger) shared.Connector {
	db, err := rdbms.OpenDbConnection(log, shared.ConnectionDetails{Type: constants.ConnectionTypeSqlite})
	require.NoError(t, err)
	return db
}

func TestLoad(t *testing.T) {
	log := logger.NewLogger("sqlsteps", "error", false)
	fileName, cleanup := setup(t, testCsv)
	defer cleanup()
	db := openSqlite(t, log)
	defer db.Close()
	cfg := Config{
		CsvFile:     fileName,
		Table:       rdbms.SchemaTable{Table: constants.LoaderTableDefault},
		Columns:     helper.CsvToStringSliceTrimSpaces(constants.LoaderColumnsDefault),
		BatchSize:   2,
		CreateTable: true,
	}
	res, err := Load(log, db, cfg)
	require.NoError(t, err)
	assert.Equal(t, Result{RowsRead: 3, RowsInserted: 3, RowsInTable: 3}, res)
	// Empty fields are NULL.
	v, err := rdbms.QueryScalar(context.Background(), log, db, "select count(*) from mapping_template_raw_CURSOR where Oracle_GL_Account is null")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	// A second load replaces the rows.
	res, err = Load(log, db, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.RowsInTable)
}

func TestLoad_HeaderMismatchChangesNothing(t *testing.T) {
	log := logger.NewLogger("sqlsteps", "error", false)
	fileName, cleanup := setup(t, strings.Replace(testCsv, "ID,Oracle_Customer_Name,", "Oracle_Customer_Name,ID,", 1))
	defer cleanup()
	m := shared.NewMockConnection(constants.ConnectionTypeSnowflake)
	_, err := Load(log, m, Config{
		CsvFile:     fileName,
		Table:       rdbms.SchemaTable{Schema: "finance", Table: "raw"},
		Columns:     helper.CsvToStringSliceTrimSpaces(constants.LoaderColumnsDefault),
		CreateTable: true,
	})
	var hm *file.HeaderMismatchError
	require.True(t, errors.As(err, &hm), "expected HeaderMismatchError; got %v", err)
	assert.Empty(t, m.Executed)
	assert.Equal(t, 0, m.Begins)
}

func TestLoad_InsertFailureRollsBack(t *testing.T) {
	log := logger.NewLogger("sqlsteps", "error", false)
	fileName, cleanup := setup(t, testCsv)
	defer cleanup()
	m := shared.NewMockConnection(constants.ConnectionTypeSnowflake)
	cols := helper.CsvToStringSliceTrimSpaces(constants.LoaderColumnsDefault)
	ins, err := shared.NewInsertGenerator(constants.ConnectionTypeSnowflake, "finance.raw", cols)
	require.NoError(t, err)
	ins.InitBatch(10)
	for i := 0; i < 3; i++ {
		_, _ = ins.AddValuesToBatch(make([]interface{}, len(cols)))
	}
	m.FailOn[ins.GetStatement()] = errors.New("insert failed")
	_, err = Load(log, m, Config{
		CsvFile: fileName,
		Table:   rdbms.SchemaTable{Schema: "finance", Table: "raw"},
		Columns: cols,
	})
	require.Error(t, err)
	assert.Equal(t, 1, m.Rollbacks)
	assert.Equal(t, 0, m.Commits)
	assert.Equal(t, "delete from finance.raw", m.Executed[0])
}

func TestLoad_MissingConfig(t *testing.T) {
	log := logger.NewLogger("sqlsteps", "error", false)
	m := shared.NewMockConnection("")
	_, err := Load(log, m, Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSV file")
	_, err = Load(log, m, Config{CsvFile: "/does/not/exist.csv", Table: rdbms.SchemaTable{Table: "t"}, Columns: []string{"a"}})
	var nf *file.FileNotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestCreateTableSql(t *testing.T) {
	st := rdbms.SchemaTable{Schema: "s", Table: "t"}
	assert.Equal(t, "create table if not exists s.t (a varchar, b varchar)",
		CreateTableSql(constants.ConnectionTypeSnowflake, st, []string{"a", "b"}))
	assert.Equal(t, "if not exists (select 1 from information_schema.tables where table_schema = 's' and table_name = 't') create table s.t (a varchar(max))",
		CreateTableSql(constants.ConnectionTypeSqlServer, st, []string{"a"}))
}

func TestCreateTableSql_SqlServerLookup(t *testing.T) {
	// Without a schema the session default is used.
	assert.Equal(t, "if not exists (select 1 from information_schema.tables where table_schema = schema_name() and table_name = 'raw') create table raw (a varchar(max))",
		CreateTableSql(constants.ConnectionTypeSqlServer, rdbms.SchemaTable{Table: "raw"}, []string{"a"}))
	// Quoted names are looked up without their quotes.
	st, err := rdbms.ParseSchemaTable(`"Fin"."O'Brien"`)
	require.NoError(t, err)
	assert.Equal(t, `if not exists (select 1 from information_schema.tables where table_schema = 'Fin' and table_name = 'O''Brien') create table "Fin"."O'Brien" (a varchar(max))`,
		CreateTableSql(constants.ConnectionTypeSqlServer, st, []string{"a"}))
}
