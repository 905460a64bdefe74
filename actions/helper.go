package actions

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/config"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/sirupsen/logrus"
)

// CommonConfig holds the settings every command accepts.
// Non-empty values override those loaded from the config file and environment.
type CommonConfig struct {
	ConfigFile       string
	EnvFile          string
	SqlDir           string
	PipelineFile     string
	LogLevel         string
	LogFile          string
	StackDumpOnPanic bool
}

// loadConfig builds the effective configuration for an action.
func (c *CommonConfig) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.ConfigFile, c.EnvFile)
	if err != nil {
		return cfg, err
	}
	overrides := []struct {
		val    string
		target *string
	}{
		{c.SqlDir, &cfg.SqlDir},
		{c.PipelineFile, &cfg.PipelineFile},
		{c.LogLevel, &cfg.LogLevel},
		{c.LogFile, &cfg.LogFile},
	}
	for _, o := range overrides {
		if o.val != "" {
			*o.target = o.val
		}
	}
	if _, err = logrus.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, &config.ConfigurationError{Reason: fmt.Sprintf("bad log level %q", cfg.LogLevel)}
	}
	return cfg, nil
}

// setupLogger creates the logger for an action and optionally tees it to a log file.
// The returned closer is never nil.
func setupLogger(cfg config.Config, stackDumpOnPanic bool) (logger.Logger, io.Closer, error) {
	log := logger.NewLogger(constants.ServiceName, cfg.LogLevel, stackDumpOnPanic)
	if cfg.LogFile == "" {
		return log, nopCloser{}, nil
	}
	fileName := logFileName(cfg.LogFile, time.Now())
	f, err := log.TeeToFile(fileName)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to set up logging")
	}
	log.Debug("logging to file ", fileName)
	return log, f, nil
}

// logFileName expands the value "auto" into a daily log file name.
func logFileName(name string, now time.Time) string {
	if name == constants.LogFileAuto {
		return fmt.Sprintf("%v_%v.log", constants.ServiceName, now.Format(constants.TimeFormatLogFileDate))
	}
	return name
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
