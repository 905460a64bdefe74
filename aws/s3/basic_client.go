package s3

import (
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// NewBasicClientForBucket returns a client for the bucket, region and prefix held in b.
// Credentials come from the usual AWS environment, shared config or instance role.
func NewBasicClientForBucket(b AwsS3Bucket) BasicClient {
	awsConfig := aws.NewConfig().WithRegion(b.Region)
	sess := session.Must(session.NewSession(awsConfig))
	return &basicClient{
		bucket: b.Name,
		prefix: b.Prefix,
		api:    s3.New(sess),
	}
}

type basicClient struct {
	bucket string
	prefix string
	api    s3iface.S3API
}

func (s *basicClient) List(key string) ([]string, error) {
	keys := make([]string, 0)
	full := s.getKeyWithPrefix(key)
	err := s.api.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(full),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, s.trimPrefix(aws.StringValue(obj.Key)))
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *basicClient) BufferPut(key string, dataBuf io.ReadSeeker) error {
	_, err := s.api.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKeyWithPrefix(key)),
		Body:   dataBuf,
	})
	return err
}

func (s *basicClient) getKeyWithPrefix(key string) string {
	if s.prefix != "" {
		return strings.TrimRight(s.prefix, "/") + "/" + key // ensure trailing slash after prefix.
	}
	return key
}

func (s *basicClient) trimPrefix(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, strings.TrimRight(s.prefix, "/")+"/")
}
