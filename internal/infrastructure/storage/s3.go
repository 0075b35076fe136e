// Package storage uploads pet images to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/honeynil/PetAdoptService/internal/config"
)

type ImageStorage interface {
	// Upload stores body under key and returns the URL the image is served from.
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Storage struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	slog.Info("image storage configured", "bucket", cfg.Bucket, "endpoint", cfg.Endpoint)
	return newS3Storage(client, cfg.Bucket, baseURL), nil
}

func newS3Storage(client putObjectAPI, bucket, baseURL string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		slog.Error("failed to upload object", "bucket", s.bucket, "key", key, "error", err)
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// ObjectKey builds a unique key for an image of petID, keeping the file extension.
func ObjectKey(petID int64, filename string) string {
	return fmt.Sprintf("pets/%d/%s%s", petID, uuid.NewString(), strings.ToLower(path.Ext(filename)))
}
