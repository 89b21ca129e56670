package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/gracechapel/churchweb/config"
)

const presignExpiry = 15 * time.Minute

func newS3Client(ctx context.Context) (*s3.Client, error) {
	cfg := config.Get()
	if cfg.S3Bucket == "" || cfg.S3AccessKey == "" {
		return nil, fmt.Errorf("s3 storage not configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
	})
	return client, nil
}

// S3StorageKey builds a collision-resistant object key for an upload category.
func S3StorageKey(uploadType, filename string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%02d/%v_%s", uploadType, d.Year(), int(d.Month()), uuid.New(), filename)
}

// PresignS3Put returns a time-limited URL the client PUTs the file to
// directly, without proxying through this server.
func PresignS3Put(ctx context.Context, key, contentType string) (string, error) {
	client, err := newS3Client(ctx)
	if err != nil {
		return "", err
	}
	presignClient := s3.NewPresignClient(client)

	cfg := config.Get()
	bucket := cfg.S3Bucket
	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// DeleteS3Object removes an object from the bucket.
func DeleteS3Object(ctx context.Context, key string) error {
	client, err := newS3Client(ctx)
	if err != nil {
		return err
	}
	cfg := config.Get()
	bucket := cfg.S3Bucket
	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	return err
}

// PublicS3URL returns the public URL an object is served from once uploaded.
func PublicS3URL(key string) string {
	cfg := config.Get()
	if cfg.S3PublicBaseURL != "" {
		return strings.TrimRight(cfg.S3PublicBaseURL, "/") + "/" + key
	}
	if cfg.S3BaseEndpoint != "" {
		return strings.TrimRight(cfg.S3BaseEndpoint, "/") + "/" + cfg.S3Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.S3Bucket, cfg.S3Region, key)
}
