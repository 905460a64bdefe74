package actions

import (
	"github.com/relloyd/sqlsteps/aws/s3"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms"
	"github.com/relloyd/sqlsteps/rdbms/shared"
)

// ConnectionOpener opens the single warehouse session used by an action.
type ConnectionOpener func(log logger.Logger, c shared.ConnectionDetails) (shared.Connector, error)

// S3ClientFactory returns a client that can write to and list bucket b.
type S3ClientFactory func(b s3.AwsS3Bucket) s3.BasicClient

// Package level so tests can swap in mocks.
var (
	openConnection ConnectionOpener = rdbms.OpenDbConnection
	newS3Client    S3ClientFactory  = s3.NewBasicClientForBucket
)
