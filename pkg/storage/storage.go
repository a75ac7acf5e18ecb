package storage

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JoyKMondal/Mern-Blog-App/pkg/config"
)

// Client wraps a MinIO connection to a single bucket holding uploaded
// banner and profile images.
type Client struct {
	mc        *minio.Client
	bucket    string
	publicURL string
}

// NewClient connects to the S3-compatible object store and makes sure the
// upload bucket exists.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket error: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket error: %w", err)
		}
	}

	log.Println("Successfully connected to object storage!")
	return &Client{mc: mc, bucket: cfg.MinioBucket, publicURL: cfg.MinioPublicURL}, nil
}

// Upload stores an object and returns its public URL.
func (c *Client) Upload(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	_, err := c.mc.PutObject(ctx, c.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return fmt.Sprintf("%s/%s/%s", c.publicURL, c.bucket, name), nil
}

// List returns the keys of all objects in the upload bucket.
func (c *Client) List(ctx context.Context) ([]string, error) {
	var keys []string
	for object := range c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, object.Err
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}

// Download reads an object's contents.
func (c *Client) Download(ctx context.Context, name string) ([]byte, error) {
	object, err := c.mc.GetObject(ctx, c.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()
	return io.ReadAll(object)
}

// Remove deletes an object.
func (c *Client) Remove(ctx context.Context, name string) error {
	return c.mc.RemoveObject(ctx, c.bucket, name, minio.RemoveObjectOptions{})
}
