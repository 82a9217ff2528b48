// Package storage persists raw receipt documents to S3-compatible object
// storage. Only the raw decoded XML is stored; the parsed record itself is
// never persisted.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Config holds the connection parameters of the object store.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// Client wraps a minio client bound to a single receipt bucket.
type Client struct {
	raw    *minio.Client
	bucket string
}

// New creates a storage client for the configured bucket.
func New(cfg Config) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &Client{
		raw:    client,
		bucket: cfg.Bucket,
	}, nil
}

// Save uploads the raw receipt document under the given blob name, creating
// the bucket on first use if it does not exist yet.
func (c *Client) Save(ctx context.Context, name string, content []byte) error {
	if c.raw == nil {
		return fmt.Errorf("storage client is nil")
	}

	exists, err := c.raw.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %q failed: %w", c.bucket, err)
	}
	if !exists {
		log.WithField("bucket", c.bucket).Info("Creating receipt bucket")
		if err := c.raw.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket %q failed: %w", c.bucket, err)
		}
	}

	reader := bytes.NewReader(content)
	_, err = c.raw.PutObject(ctx, c.bucket, name, reader, int64(len(content)), minio.PutObjectOptions{
		ContentType: "application/xml",
	})
	if err != nil {
		return fmt.Errorf("put object %q failed: %w", name, err)
	}

	log.WithFields(logrus.Fields{
		"bucket": c.bucket,
		"object": name,
		"size":   len(content),
	}).Info("Stored raw receipt document")
	return nil
}
