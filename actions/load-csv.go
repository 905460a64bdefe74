package actions

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/config"
	"github.com/relloyd/sqlsteps/helper"
	"github.com/relloyd/sqlsteps/loader"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms"
)

type LoadCsvConfig struct {
	CommonConfig
	CsvFile     string
	Table       string
	Columns     string // CSV of the expected header
	BatchSize   int
	CreateTable bool
}

// applyTo copies the non-empty loader settings onto cfg.
func (c *LoadCsvConfig) applyTo(cfg *config.Config) {
	if c.CsvFile != "" {
		cfg.Loader.CsvFile = c.CsvFile
	}
	if c.Table != "" {
		cfg.Loader.Table = c.Table
	}
	if c.Columns != "" {
		cfg.Loader.Columns = helper.CsvToStringSliceTrimSpaces(c.Columns)
	}
	if c.BatchSize > 0 {
		cfg.Loader.BatchSize = c.BatchSize
	}
	cfg.Loader.CreateTable = c.CreateTable
}

// RunLoadCsv replaces the contents of the staging table with the rows of the CSV file.
func RunLoadCsv(c *LoadCsvConfig) error {
	if c == nil {
		return errors.New("nil pointer to load config supplied")
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.applyTo(&cfg)
	if err = cfg.ValidateLoader(); err != nil {
		return err
	}
	if err = cfg.ValidateConnection(); err != nil {
		return err
	}
	log, closer, err := setupLogger(cfg, c.StackDumpOnPanic)
	if err != nil {
		return err
	}
	defer func() {
		_ = closer.Close()
	}()
	_, err = loadCsv(log, cfg)
	return err
}

func loadCsv(log logger.Logger, cfg config.Config) (loader.Result, error) {
	table, err := rdbms.ParseSchemaTable(cfg.Loader.Table)
	if err != nil {
		return loader.Result{}, &config.ConfigurationError{Reason: err.Error()}
	}
	db, err := openConnection(log, cfg.ConnectionDetails())
	if err != nil {
		return loader.Result{}, errors.Wrap(err, "unable to connect")
	}
	defer db.Close()
	res, err := loader.Load(log, db, loader.Config{
		CsvFile:     cfg.Loader.CsvFile,
		Table:       table,
		Columns:     cfg.Loader.Columns,
		BatchSize:   cfg.Loader.BatchSize,
		CreateTable: cfg.Loader.CreateTable,
	})
	if err != nil {
		log.Error("CSV load failed: ", err)
		return res, err
	}
	log.Info(fmt.Sprintf("CSV load complete: %v rows read, %v rows in %v", res.RowsRead, res.RowsInTable, cfg.Loader.Table))
	return res, nil
}
