package actions

import (
	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/aws/s3"
)

type StageConfig struct {
	CommonConfig
	CsvFile  string
	S3Url    string
	S3Region string
	Key      string // object key relative to the bucket prefix; defaults to the file's base name
}

// RunStage uploads the CSV file to the S3 location read by the import step.
func RunStage(c *StageConfig) error {
	if c == nil {
		return errors.New("nil pointer to stage config supplied")
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if c.CsvFile != "" {
		cfg.Loader.CsvFile = c.CsvFile
	}
	if c.S3Url != "" {
		cfg.S3.Url = c.S3Url
	}
	if c.S3Region != "" {
		cfg.S3.Region = c.S3Region
	}
	if cfg.Loader.CsvFile == "" {
		return errors.New("please supply the CSV file to stage")
	}
	if err = cfg.ValidateS3(); err != nil {
		return err
	}
	log, closer, err := setupLogger(cfg, c.StackDumpOnPanic)
	if err != nil {
		return err
	}
	defer func() {
		_ = closer.Close()
	}()
	bucket, err := cfg.S3Bucket()
	if err != nil {
		return err
	}
	log.Info("Staging ", cfg.Loader.CsvFile, " to ", bucket)
	key, err := s3.UploadFile(log, newS3Client(bucket), cfg.Loader.CsvFile, c.Key)
	if err != nil {
		return err
	}
	log.Info("Staged file is available at ", bucket.String()+"/"+key)
	return nil
}
