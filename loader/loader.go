// Package loader replaces the contents of a staging table with the rows of a CSV file.
package loader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/file"
	"github.com/relloyd/sqlsteps/helper"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms"
	"github.com/relloyd/sqlsteps/rdbms/shared"
)

// Config describes one CSV load.
type Config struct {
	CsvFile     string            `errorTxt:"CSV file" mandatory:"yes"`
	Table       rdbms.SchemaTable // target [schema.]table
	Columns     []string          // expected CSV header, in order; also the table columns
	BatchSize   int               // rows per INSERT statement
	CreateTable bool              // create the table when it does not exist
}

// Result summarises a load.
type Result struct {
	RowsRead     int
	RowsInserted int
	RowsInTable  int64
}

// Load validates the CSV header, creates the table if asked to, then deletes all existing rows and
// inserts the file's rows within a single transaction. Finally the table row count is verified.
// Nothing is changed when the header does not match.
func Load(log logger.Logger, db shared.Connector, cfg Config) (res Result, err error) {
	if err = helper.ValidateStructIsPopulated(cfg); err != nil {
		return
	}
	if len(cfg.Columns) == 0 {
		err = errors.New("please supply the expected CSV columns")
		return
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = constants.LoaderBatchSizeDefault
	}
	table := cfg.Table.String()
	// Open and validate the file before touching the database.
	f, err := file.NewCSVFileInput(log, cfg.CsvFile)
	if err != nil {
		return
	}
	defer func() {
		_ = f.Close()
	}()
	if err = f.ValidateHeader(cfg.Columns); err != nil {
		return
	}
	log.Info("CSV file ", cfg.CsvFile, " has the expected columns: ", strings.Join(cfg.Columns, ", "))
	// Create the table outside of the transaction since DDL commits implicitly on some databases.
	if cfg.CreateTable {
		ddl := CreateTableSql(db.GetType(), cfg.Table, cfg.Columns)
		log.Debug(ddl)
		if _, err = db.Exec(ddl); err != nil {
			err = errors.Wrapf(err, "unable to create table %v", table)
			return
		}
		log.Info("Table ", table, " created/verified successfully")
	}
	// Replace the table contents.
	tx, err := db.Begin()
	if err != nil {
		err = errors.Wrap(err, "unable to begin transaction")
		return
	}
	committed := false
	defer func() {
		if err != nil && !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("Rollback failed: ", rbErr)
			} else {
				log.Info("Load of ", table, " rolled back")
			}
		}
	}()
	if _, err = tx.Exec(fmt.Sprintf("delete from %v", table)); err != nil {
		err = errors.Wrapf(err, "unable to delete existing rows from %v", table)
		return
	}
	log.Info("Existing rows removed from ", table)
	ins, err := shared.NewInsertGenerator(db.GetType(), table, cfg.Columns)
	if err != nil {
		return
	}
	ins.InitBatch(cfg.BatchSize)
	flush := func() error {
		if ins.RowsInBatch() == 0 {
			return nil
		}
		if _, err := tx.Exec(ins.GetStatement(), ins.GetValues()...); err != nil {
			return errors.Wrapf(err, "error inserting batch into %v after %v rows", table, res.RowsInserted)
		}
		res.RowsInserted += ins.RowsInBatch()
		log.Debug("inserted ", res.RowsInserted, " rows so far")
		ins.InitBatch(cfg.BatchSize)
		return nil
	}
	for {
		var rec []string
		rec, err = f.Read()
		if err == io.EOF {
			err = nil
			break
		}
		if err != nil {
			return
		}
		res.RowsRead++
		var full bool
		if full, err = ins.AddValuesToBatch(csvRecordToValues(rec)); err != nil {
			err = errors.Wrapf(err, "bad CSV row %v", res.RowsRead)
			return
		}
		if full {
			if err = flush(); err != nil {
				return
			}
		}
	}
	if err = flush(); err != nil {
		return
	}
	if err = tx.Commit(); err != nil {
		err = errors.Wrap(err, "commit failed")
		return
	}
	committed = true
	log.Info(fmt.Sprintf("Inserted %v rows into %v", res.RowsInserted, table))
	// Verify.
	v, qErr := rdbms.QueryScalar(context.Background(), log, db, fmt.Sprintf("select count(*) from %v", table))
	if qErr != nil {
		return res, errors.Wrap(qErr, "unable to verify row count")
	}
	n, ok := v.(int64)
	if !ok {
		return res, errors.Errorf("unexpected row count value %v", v)
	}
	res.RowsInTable = n
	log.Info(fmt.Sprintf("Verification: %v rows in table", n))
	if n != int64(res.RowsInserted) {
		return res, errors.Errorf("verification failed: inserted %v rows but found %v in %v", res.RowsInserted, n, table)
	}
	return res, nil
}

// csvRecordToValues converts CSV fields to bind values; empty fields become NULL.
func csvRecordToValues(rec []string) []interface{} {
	retval := make([]interface{}, len(rec))
	for idx, v := range rec {
		if v == "" {
			retval[idx] = nil
		} else {
			retval[idx] = v
		}
	}
	return retval
}

// CreateTableSql returns DDL that creates table with every column as a string type, if it does not exist.
// SQL Server has no "if not exists" clause, so the table is looked up in information_schema first,
// defaulting to the session's schema when st has none.
func CreateTableSql(dbType string, st rdbms.SchemaTable, cols []string) string {
	colType := "varchar"
	switch dbType {
	case constants.ConnectionTypeSqlServer:
		colType = "varchar(max)"
	case constants.ConnectionTypeNetezza:
		colType = "varchar(4000)"
	}
	defs := make([]string, len(cols))
	for idx, c := range cols {
		defs[idx] = fmt.Sprintf("%v %v", c, colType)
	}
	if dbType == constants.ConnectionTypeSqlServer {
		schema := "schema_name()"
		if st.Schema != "" {
			schema = quoteLiteral(rdbms.CatalogName(st.Schema))
		}
		return fmt.Sprintf("if not exists (select 1 from information_schema.tables where table_schema = %v and table_name = %v) create table %v (%v)",
			schema, quoteLiteral(rdbms.CatalogName(st.Table)), st, strings.Join(defs, ", "))
	}
	return fmt.Sprintf("create table if not exists %v (%v)", st, strings.Join(defs, ", "))
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
