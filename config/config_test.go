package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	fileName := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(fileName, []byte(content), 0600))
	return fileName
}

func TestLoad_Precedence(t *testing.T) {
	dir, err := ioutil.TempDir("", "config-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	yamlFile := writeFile(t, dir, "config.yaml", `
connection:
  account: yaml-account
  user: yaml-user
  warehouse: YAML_WH
sqlDir: /sql
variables:
  bucket: s3://finance
loader:
  batchSize: "50"
`)
	envFile := writeFile(t, dir, ".env", "SNOWFLAKE_USER=dotenv-user\nSNOWFLAKE_PASSWORD=dotenv-pass\nSQLSTEPS_SQL_DIR=/dotenv-sql\n")
	require.NoError(t, os.Setenv("SQLSTEPS_SQL_DIR", "/env-sql"))
	defer os.Unsetenv("SQLSTEPS_SQL_DIR")
	cfg, err := Load(yamlFile, envFile)
	require.NoError(t, err)
	assert.Equal(t, "yaml-account", cfg.Connection.Account)                      // yaml over default
	assert.Equal(t, "dotenv-user", cfg.Connection.User)                          // .env over yaml
	assert.Equal(t, "dotenv-pass", cfg.Connection.Password)                      // .env only
	assert.Equal(t, "/env-sql", cfg.SqlDir)                                      // process env over .env
	assert.Equal(t, "YAML_WH", cfg.Connection.Warehouse)                         // yaml over default
	assert.Equal(t, constants.SnowflakeDatabaseDefault, cfg.Connection.Database) // default
	assert.Equal(t, 50, cfg.Loader.BatchSize)
	assert.Equal(t, "s3://finance", cfg.Variables["bucket"])
	assert.Len(t, cfg.Loader.Columns, 6)
	assert.NoError(t, cfg.ValidateConnection())
}

func TestLoad_MissingFiles(t *testing.T) {
	_, err := Load("/does/not/exist.yaml", "")
	var nf FileNotFoundError
	assert.True(t, errors.As(err, &nf))
	dir, err := ioutil.TempDir("", "config-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	yamlFile := writeFile(t, dir, "config.yaml", "sqlDir: x\n")
	_, err = Load(yamlFile, filepath.Join(dir, "missing.env"))
	assert.True(t, errors.As(err, &nf))
}

func TestMergeYaml_UnknownKey(t *testing.T) {
	cfg := Defaults()
	assert.Error(t, cfg.MergeYaml([]byte("bogus: 1\n")))
	assert.Error(t, cfg.MergeYaml([]byte("key: [unclosed")))
}

func TestValidateConnection(t *testing.T) {
	cfg := Defaults()
	err := cfg.ValidateConnection()
	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"SNOWFLAKE_ACCOUNT", "SNOWFLAKE_USER", "SNOWFLAKE_PASSWORD"}, ce.Missing)
	// A DSN is enough for Snowflake.
	cfg.Connection.Dsn = "snowflake://u:p@acct/db"
	assert.NoError(t, cfg.ValidateConnection())
	// Postgres needs a DSN.
	cfg = Defaults()
	cfg.Connection.Type = constants.ConnectionTypePostgres
	require.True(t, errors.As(cfg.ValidateConnection(), &ce))
	assert.Equal(t, []string{"SQLSTEPS_DSN"}, ce.Missing)
	// SQLite needs nothing.
	cfg.Connection.Type = constants.ConnectionTypeSqlite
	assert.NoError(t, cfg.ValidateConnection())
	// Unsupported.
	cfg.Connection.Type = "oracle"
	assert.Error(t, cfg.ValidateConnection())
}

func TestValidateLoaderAndS3(t *testing.T) {
	cfg := Defaults()
	var ce *ConfigurationError
	require.True(t, errors.As(cfg.ValidateLoader(), &ce))
	assert.Equal(t, []string{"loader CSV file"}, ce.Missing)
	cfg.Loader.CsvFile = "mapping.csv"
	assert.NoError(t, cfg.ValidateLoader())
	require.True(t, errors.As(cfg.ValidateS3(), &ce))
	cfg.S3 = S3Config{Url: "s3://bucket/prefix", Region: "eu-west-1"}
	assert.NoError(t, cfg.ValidateS3())
	b, err := cfg.S3Bucket()
	require.NoError(t, err)
	assert.Equal(t, "bucket", b.Name)
}

func TestConnectionDetails(t *testing.T) {
	cfg := Defaults()
	cfg.Connection.Account = "acct"
	cfg.Connection.User = "user"
	cfg.Connection.Password = "secret"
	c := cfg.ConnectionDetails()
	assert.Equal(t, constants.ConnectionTypeSnowflake, c.Type)
	assert.Equal(t, "acct", c.Data["accountName"])
	assert.Equal(t, "", c.GetDsn())
	assert.NotContains(t, c.String(), "secret")
	cfg.Connection.Type = constants.ConnectionTypeSqlite
	cfg.Connection.Dsn = "sqlite://local.db"
	c = cfg.ConnectionDetails()
	assert.Equal(t, "sqlite://local.db", c.GetDsn())
	assert.Len(t, c.Data, 1)
	// Rendering hides the password.
	cfg.Connection.Type = constants.ConnectionTypeSnowflake
	b, err := cfg.Yaml()
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
}
