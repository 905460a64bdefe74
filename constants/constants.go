package constants

const (
	TimeFormatYearSeconds      = "20060102T150405" // used for human readable file names
	TimeFormatYearSecondsRegex = "[0-9]{4}[0-9]{2}[0-9]{2}T[0-9]{6}"
	TimeFormatYearSecondsTZ    = "20060102T150405-0700"
	TimeFormatLogFileDate      = "20060102" // daily log file suffix
	EmojiBang                  = "\U0001F4A5"
	EnvVarPrefix               = "SQLSTEPS" // prefixed for environment variables in twelveFactorMode
	ServiceName                = "sqlsteps"
	LogFileAuto                = "auto" // --log-file value that selects the daily log file name
	StepNameAll                = "all"  // sentinel step selector meaning the full ordered pipeline
	StatementPreviewLen        = 200    // number of chars of a failing statement to log
	SqlPreviewLen              = 500    // number of chars of step SQL to debug log during dry runs
	LoaderBatchSizeDefault     = 500
	LoaderTableDefault         = "mapping_template_raw_CURSOR"
	LoaderColumnsDefault       = "ID,Oracle_Customer_Name,Oracle_Customer_Name_ID,Oracle_Invoice_Group,Oracle_Invoice_Name,Oracle_GL_Account"
	ConnectionTypeSnowflake    = "snowflake"
	ConnectionTypeNetezza      = "netezza"
	ConnectionTypeSqlServer    = "sqlserver"
	ConnectionTypePostgres     = "postgres"
	ConnectionTypeSqlite       = "sqlite"
	ConnectionTypeMock         = "mock"
	ConnectionTypeS3           = "s3"
	SnowflakeWarehouseDefault  = "COMPUTE_WH"
	SnowflakeDatabaseDefault   = "dataeng_stage"
	SnowflakeSchemaDefault     = "public"
)
