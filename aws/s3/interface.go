//go:generate mockgen -package mocks -destination mocks/interface.go -source=interface.go
package s3

import (
	"io"
)

// BasicClient can upload a file and then confirm it landed.
type BasicClient interface {
	Lister
	BufferPutter
}

type Lister interface {
	// List returns the keys that start with key, relative to the client's prefix.
	List(key string) (keys []string, err error)
}

// BufferPutter can be used to put a file to S3 since File implements Read and Seek.
type BufferPutter interface {
	BufferPut(key string, buf io.ReadSeeker) (err error)
}
