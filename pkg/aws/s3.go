package aws

import (
	"bytes"
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectArchiver stores rendered artifacts.
type ObjectArchiver interface {
	Archive(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// S3Archiver uploads objects to a single bucket with the S3 transfer manager.
type S3Archiver struct {
	uploader *manager.Uploader
	bucket   string
}

// NewS3Client creates a new S3 client from AWS config. Path-style addressing is
// forced when a custom endpoint is configured.
func NewS3Client(cfg sdkaws.Config, pathStyle bool) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = pathStyle
	})
}

// NewS3Archiver returns nil when bucket is empty.
func NewS3Archiver(client *s3.Client, bucket string) *S3Archiver {
	if bucket == "" {
		return nil
	}
	return &S3Archiver{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
	}
}

// Archive uploads body under key and returns the object location.
func (a *S3Archiver) Archive(ctx context.Context, key, contentType string, body []byte) (string, error) {
	out, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(a.bucket),
		Key:         sdkaws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: sdkaws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to %s: %w", key, a.bucket, err)
	}
	return out.Location, nil
}
