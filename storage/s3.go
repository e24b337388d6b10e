package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// UploadResult carries the public URL for rendering and the object key for
// later deletion.
type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// S3Client wraps the blob-storage operations this service needs.
type S3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	region   string
}

func NewS3Client(ctx context.Context, bucket, region string) (*S3Client, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Client{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		region:   region,
	}, nil
}

// Upload stores one object under folder/ with a generated key.
func (c *S3Client) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*UploadResult, error) {
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), path.Ext(filename))

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(c.bucket),
		Key:         awssdk.String(key),
		Body:        body,
		ContentType: awssdk.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	return &UploadResult{Key: key, URL: c.objectURL(key)}, nil
}

func (c *S3Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: awssdk.String(c.bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}

// Replace overwrites an existing object in place and returns its URL.
func (c *S3Client) Replace(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(c.bucket),
		Key:         awssdk.String(key),
		Body:        body,
		ContentType: awssdk.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 replace: %w", err)
	}
	return c.objectURL(key), nil
}

func (c *S3Client) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}
