// Package s3 provides a host over S3-compatible object storage.
//
// Object stores have no directories. ObjectFS keeps a zero-length marker
// object named "dir/" for every directory it creates and treats any key
// below "dir/" as proof the directory exists, so buckets written by other
// tools are browsable too:
//
//	host, err := s3.New(s3.Config{
//	    Endpoint:  "localhost:9000",
//	    Bucket:    "assets",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	})
//	fsys := fspath.NewFileSystem(host, fspath.WithAuthority("assets"))
//
// Failures are reported as *fs.PathError values wrapping io/fs sentinels or
// syscall errnos, like the billy hosts.
package s3

import (
	"errors"

	"github.com/minio/minio-go/v7"
)

const (
	defaultMultipartThreshold = 5 * 1024 * 1024
	defaultRenameConcurrency  = 10
)

// Config holds S3 host configuration.
type Config struct {
	// Endpoint is the server address, such as "localhost:9000".
	Endpoint string

	// Bucket is the bucket holding every object of the host. Required.
	Bucket string

	// AccessKey and SecretKey authenticate against Endpoint.
	AccessKey string
	SecretKey string

	// UseSSL enables HTTPS.
	UseSSL bool

	// Prefix namespaces every key, so one bucket can hold several hosts.
	Prefix string

	// Client is a pre-configured client. When set, Endpoint, AccessKey,
	// SecretKey and UseSSL are ignored.
	Client *minio.Client

	// MultipartThreshold is the buffered size after which writes stream
	// through a multipart upload. Zero selects 5MiB.
	MultipartThreshold int64

	// MaxRenameConcurrency limits concurrent copies while renaming a
	// directory. Zero selects 10.
	MaxRenameConcurrency int
}

// validate checks that either Client or a complete set of connection
// fields is present.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return errors.New("bucket is required")
	}
	if c.MultipartThreshold < 0 {
		return errors.New("multipart threshold must not be negative")
	}
	if c.MaxRenameConcurrency < 0 {
		return errors.New("rename concurrency must not be negative")
	}
	if c.Client != nil {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New("endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return errors.New("access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return errors.New("secret key is required when client is not provided")
	}
	return nil
}
