package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/aws/s3"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/helper"
	"github.com/relloyd/sqlsteps/rdbms"
	"github.com/relloyd/sqlsteps/rdbms/shared"
	"gopkg.in/yaml.v2"
)

const (
	MainDir          = ".sqlsteps"
	MainFileFullName = "config.yaml"
	DotEnvFileName   = ".env"
	LogicalName      = "warehouse"
)

// FileNotFoundError denotes failing to find a configuration file that was explicitly requested.
type FileNotFoundError struct {
	name string
}

func (f FileNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", f.name)
}

// ConfigurationError lists settings that must be supplied before anything can be done.
type ConfigurationError struct {
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("configuration error: please supply values for %v", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("configuration error: %v", e.Reason)
}

// ConnectionConfig describes the warehouse session.
// For Snowflake either Dsn or the account, user and password must be set; other types need a Dsn.
type ConnectionConfig struct {
	Type      string `mapstructure:"type" yaml:"type"`
	Dsn       string `mapstructure:"dsn" yaml:"dsn,omitempty"`
	Account   string `mapstructure:"account" yaml:"account,omitempty" errorTxt:"SNOWFLAKE_ACCOUNT" mandatory:"yes"`
	User      string `mapstructure:"user" yaml:"user,omitempty" errorTxt:"SNOWFLAKE_USER" mandatory:"yes"`
	Password  string `mapstructure:"password" yaml:"password,omitempty" errorTxt:"SNOWFLAKE_PASSWORD" mandatory:"yes"`
	Warehouse string `mapstructure:"warehouse" yaml:"warehouse,omitempty"`
	Database  string `mapstructure:"database" yaml:"database,omitempty"`
	Schema    string `mapstructure:"schema" yaml:"schema,omitempty"`
	Role      string `mapstructure:"role" yaml:"role,omitempty"`
}

// LoaderConfig describes the CSV load into the staging table.
type LoaderConfig struct {
	CsvFile     string   `mapstructure:"csvFile" yaml:"csvFile,omitempty" errorTxt:"loader CSV file" mandatory:"yes"`
	Table       string   `mapstructure:"table" yaml:"table,omitempty" errorTxt:"loader table" mandatory:"yes"`
	Columns     []string `mapstructure:"columns" yaml:"columns,omitempty"`
	BatchSize   int      `mapstructure:"batchSize" yaml:"batchSize,omitempty"`
	CreateTable bool     `mapstructure:"createTable" yaml:"createTable"`
}

// S3Config is the location CSV files are staged to.
type S3Config struct {
	Url    string `mapstructure:"url" yaml:"url,omitempty" errorTxt:"S3 URL" mandatory:"yes"`
	Region string `mapstructure:"region" yaml:"region,omitempty" errorTxt:"S3 region" mandatory:"yes"`
}

// Config is built once at startup and passed to the actions.
type Config struct {
	Connection   ConnectionConfig  `mapstructure:"connection" yaml:"connection"`
	SqlDir       string            `mapstructure:"sqlDir" yaml:"sqlDir"`
	PipelineFile string            `mapstructure:"pipelineFile" yaml:"pipelineFile,omitempty"`
	LogLevel     string            `mapstructure:"logLevel" yaml:"logLevel"`
	LogFile      string            `mapstructure:"logFile" yaml:"logFile,omitempty"`
	Variables    map[string]string `mapstructure:"variables" yaml:"variables,omitempty"`
	Loader       LoaderConfig      `mapstructure:"loader" yaml:"loader"`
	S3           S3Config          `mapstructure:"s3" yaml:"s3"`
}

// Defaults returns the configuration used when nothing else is supplied.
func Defaults() Config {
	return Config{
		Connection: ConnectionConfig{
			Type:      constants.ConnectionTypeSnowflake,
			Warehouse: constants.SnowflakeWarehouseDefault,
			Database:  constants.SnowflakeDatabaseDefault,
			Schema:    constants.SnowflakeSchemaDefault,
		},
		SqlDir:    ".",
		LogLevel:  "info",
		Variables: make(map[string]string),
		Loader: LoaderConfig{
			Table:       constants.LoaderTableDefault,
			Columns:     helper.CsvToStringSliceTrimSpaces(constants.LoaderColumnsDefault),
			BatchSize:   constants.LoaderBatchSizeDefault,
			CreateTable: true,
		},
	}
}

// Load builds a Config from, in increasing order of precedence:
// defaults, the YAML fileName, the dotEnvFile and the process environment.
// Empty file names select the default locations, which may be absent.
func Load(fileName string, dotEnvFile string) (Config, error) {
	cfg := Defaults()
	explicit := fileName != ""
	if !explicit {
		fileName = DefaultConfigFileName()
	}
	if err := cfg.mergeYamlFile(fileName, explicit); err != nil {
		return cfg, err
	}
	explicit = dotEnvFile != ""
	if !explicit {
		dotEnvFile = DotEnvFileName
	}
	dotEnv, err := readDotEnv(dotEnvFile, explicit)
	if err != nil {
		return cfg, err
	}
	bindings := cfg.envBindings()
	for k, p := range bindings { // apply .env values...
		if v, ok := dotEnv[k]; ok && v != "" {
			*p = v
		}
	}
	helper.OverrideFromEnv(bindings) // process env wins.
	return cfg, nil
}

// DefaultConfigFileName returns ~/.sqlsteps/config.yaml.
func DefaultConfigFileName() string {
	return path.Join(mustGetConfigHomeDir(), MainFileFullName)
}

func (c *Config) mergeYamlFile(fileName string, mustExist bool) error {
	b, err := ioutil.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return FileNotFoundError{name: fileName}
			}
			return nil
		}
		return errors.Wrapf(err, "unable to read config file %q", fileName)
	}
	return c.MergeYaml(b)
}

// MergeYaml overlays the keys present in YAML document b onto c.
func (c *Config) MergeYaml(b []byte) error {
	data := make(map[string]interface{})
	if err := yaml.Unmarshal(b, &data); err != nil {
		return errors.Wrap(err, "unable to parse config YAML")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err = dec.Decode(data); err != nil {
		return errors.Wrap(err, "unable to decode config YAML")
	}
	return nil
}

func readDotEnv(fileName string, mustExist bool) (map[string]string, error) {
	if _, err := os.Stat(fileName); err != nil {
		if os.IsNotExist(err) && !mustExist {
			return map[string]string{}, nil
		}
		return nil, FileNotFoundError{name: fileName}
	}
	m, err := godotenv.Read(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read env file %q", fileName)
	}
	return m, nil
}

// envBindings maps each supported environment variable to the setting it overrides.
func (c *Config) envBindings() map[string]*string {
	return map[string]*string{
		"SNOWFLAKE_ACCOUNT":                     &c.Connection.Account,
		"SNOWFLAKE_USER":                        &c.Connection.User,
		"SNOWFLAKE_PASSWORD":                    &c.Connection.Password,
		"SNOWFLAKE_WAREHOUSE":                   &c.Connection.Warehouse,
		"SNOWFLAKE_DATABASE":                    &c.Connection.Database,
		"SNOWFLAKE_SCHEMA":                      &c.Connection.Schema,
		"SNOWFLAKE_ROLE":                        &c.Connection.Role,
		helper.GetEnvVarName("connection-type"): &c.Connection.Type,
		helper.GetEnvVarName("dsn"):             &c.Connection.Dsn,
		helper.GetEnvVarName("sql-dir"):         &c.SqlDir,
		helper.GetEnvVarName("pipeline-file"):   &c.PipelineFile,
		helper.GetEnvVarName("log-level"):       &c.LogLevel,
		helper.GetEnvVarName("log-file"):        &c.LogFile,
		helper.GetEnvVarName("csv-file"):        &c.Loader.CsvFile,
		helper.GetEnvVarName("table"):           &c.Loader.Table,
		helper.GetEnvVarName("s3-url"):          &c.S3.Url,
		helper.GetEnvVarName("s3-region"):       &c.S3.Region,
	}
}

// ValidateConnection returns a ConfigurationError if the connection cannot be opened as configured.
func (c *Config) ValidateConnection() error {
	conn := c.Connection
	switch conn.Type {
	case constants.ConnectionTypeSnowflake:
		if conn.Dsn != "" {
			return nil
		}
		if missing := helper.MissingMandatoryFields(conn); len(missing) > 0 {
			return &ConfigurationError{Missing: missing}
		}
	case constants.ConnectionTypeSqlite, constants.ConnectionTypeMock:
	case constants.ConnectionTypeSqlServer, constants.ConnectionTypePostgres, constants.ConnectionTypeNetezza:
		if conn.Dsn == "" {
			return &ConfigurationError{Missing: []string{helper.GetEnvVarName("dsn")}}
		}
	case "":
		return &ConfigurationError{Missing: []string{helper.GetEnvVarName("connection-type")}}
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unsupported connection type %q", conn.Type)}
	}
	return nil
}

// ValidateLoader returns a ConfigurationError if the CSV load is not fully described.
func (c *Config) ValidateLoader() error {
	missing := helper.MissingMandatoryFields(c.Loader)
	if len(c.Loader.Columns) == 0 {
		missing = append(missing, "loader columns")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// ValidateS3 returns a ConfigurationError if the staging bucket is not fully described.
func (c *Config) ValidateS3() error {
	if missing := helper.MissingMandatoryFields(c.S3); len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	if _, err := s3.ParseDSN(c.S3.Url, c.S3.Region); err != nil {
		return &ConfigurationError{Reason: err.Error()}
	}
	return nil
}

// ConnectionDetails converts the connection settings into the generic form used by rdbms.OpenDbConnection.
func (c *Config) ConnectionDetails() shared.ConnectionDetails {
	data := make(map[string]string)
	if c.Connection.Dsn != "" {
		data = shared.DsnConnectionDetailsToMap(data, &shared.DsnConnectionDetails{Dsn: c.Connection.Dsn})
	}
	if c.Connection.Type == constants.ConnectionTypeSnowflake {
		data = rdbms.SnowflakeConnectionDetailsToMap(data, &rdbms.SnowflakeConnectionDetails{
			Account:   c.Connection.Account,
			DBName:    c.Connection.Database,
			Schema:    c.Connection.Schema,
			User:      c.Connection.User,
			Password:  c.Connection.Password,
			Warehouse: c.Connection.Warehouse,
			RoleName:  c.Connection.Role,
		})
	}
	return shared.ConnectionDetails{Type: c.Connection.Type, LogicalName: LogicalName, Data: data}
}

// S3Bucket returns the parsed staging location.
func (c *Config) S3Bucket() (s3.AwsS3Bucket, error) {
	return s3.ParseDSN(c.S3.Url, c.S3.Region)
}

// Yaml renders c with the password hidden.
func (c Config) Yaml() ([]byte, error) {
	if c.Connection.Password != "" {
		c.Connection.Password = "xxxxx"
	}
	if c.Connection.Dsn != "" {
		c.Connection.Dsn = shared.DsnConnectionDetails{Dsn: c.Connection.Dsn}.String()
	}
	return yaml.Marshal(c)
}
