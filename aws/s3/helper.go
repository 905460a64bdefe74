package s3

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/relloyd/sqlsteps/constants"
)

// AwsS3Bucket is the location that CSV files are staged to before the import step reads them.
type AwsS3Bucket struct {
	Name   string `errorTxt:"bucket name" mandatory:"yes"`
	Prefix string `errorTxt:"bucket prefix"`
	Region string `errorTxt:"bucket region" mandatory:"yes"`
}

func (d AwsS3Bucket) String() string {
	if d.Prefix == "" {
		return fmt.Sprintf("%v://%v", constants.ConnectionTypeS3, d.Name)
	}
	return fmt.Sprintf("%v://%v/%v", constants.ConnectionTypeS3, d.Name, d.Prefix)
}

// ParseDSN expects bucketPrefix to be of the form [s3://]<bucket>/<prefix>
// It returns an AwsS3Bucket populated with the components of bucketPrefix and the supplied region.
// If there is a parsing error it returns an error.
func ParseDSN(bucketPrefix string, region string) (retval AwsS3Bucket, err error) {
	expectedScheme := constants.ConnectionTypeS3
	if !strings.Contains(bucketPrefix, "://") { // if there is no scheme...
		bucketPrefix = expectedScheme + "://" + bucketPrefix
	}
	s3url, err := url.Parse(bucketPrefix)
	if err != nil {
		return retval, fmt.Errorf("error parsing S3 URL: %w", err)
	}
	if s3url.Scheme != expectedScheme {
		return retval, fmt.Errorf("expected S3 URL scheme %q but got %q", expectedScheme, s3url.Scheme)
	}
	if region == "" {
		return retval, fmt.Errorf("value expected for bucket region")
	}
	retval.Name = s3url.Host
	if retval.Name == "" {
		return retval, fmt.Errorf("DSN failed to parse bucket name")
	}
	retval.Prefix = strings.Trim(s3url.Path, "/")
	retval.Region = region
	return
}
