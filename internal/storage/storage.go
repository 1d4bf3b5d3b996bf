package storage

import (
	"bytes"
	"io"
	"path"

	"myradio/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

// Client reads and writes whole objects under one bucket and key prefix.
type Client struct {
	backend StorageProvider
	bucket  string
	prefix  string
}

// New picks the backend from cfg.Store.Backend: "s3" talks to the
// configured S3/B2 endpoint, anything else uses the local data directory.
func New(cfg *config.Config) *Client {
	if cfg.Store.Backend == "s3" {
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.Storage.KeyID, cfg.Storage.AppKey, ""),
			Endpoint:         aws.String(cfg.Storage.Endpoint),
			Region:           aws.String(cfg.Storage.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		sess := session.Must(session.NewSession(s3Config))
		return NewClient(NewS3Provider(sess), cfg.Storage.Bucket, cfg.Storage.Prefix)
	}

	return NewClient(NewLocalProvider(cfg.Store.DataDir), "", "")
}

func NewClient(backend StorageProvider, bucket, prefix string) *Client {
	return &Client{backend: backend, bucket: bucket, prefix: prefix}
}

func (c *Client) key(name string) string {
	if c.prefix == "" {
		return name
	}
	return path.Join(c.prefix, name)
}

// ReadObject returns the full content of name, or ErrNotFound.
func (c *Client) ReadObject(name string) ([]byte, error) {
	obj, err := c.backend.Get(c.bucket, c.key(name))
	if err != nil {
		return nil, err
	}
	defer obj.Body.Close()
	return io.ReadAll(obj.Body)
}

// WriteObject replaces name with data.
func (c *Client) WriteObject(name string, data []byte, contentType, cacheControl string) error {
	return c.backend.Put(c.bucket, c.key(name), bytes.NewReader(data), contentType, cacheControl)
}
