package s3

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/logger"
)

// UploadFile puts the local file fileName to key, or to the file's base name when key is empty,
// then lists the bucket to confirm the object exists. It returns the key used.
func UploadFile(log logger.Logger, c BasicClient, fileName string, key string) (string, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return "", errors.Wrapf(err, "unable to open file %q for upload", fileName)
	}
	defer func() {
		_ = f.Close()
	}()
	if key == "" {
		key = filepath.Base(fileName)
	}
	log.Info("Uploading ", fileName, " to key ", key)
	if err = c.BufferPut(key, f); err != nil {
		return "", errors.Wrapf(err, "unable to upload %q", fileName)
	}
	keys, err := c.List(key)
	if err != nil {
		return "", errors.Wrapf(err, "unable to confirm upload of %q", key)
	}
	for _, k := range keys {
		if k == key {
			log.Info("Upload complete: ", key)
			return key, nil
		}
	}
	return "", errors.Errorf("uploaded key %q was not found in the bucket listing", key)
}
