// Package storage uploads generated documents to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	catalogapp "github.com/stockroute/backend/internal/application/catalog"
	salesapp "github.com/stockroute/backend/internal/application/sales"
	"github.com/stockroute/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var (
	_ salesapp.ObjectUploader     = (*S3ObjectStorage)(nil)
	_ catalogapp.PictureUploader = (*S3ObjectStorage)(nil)
)

// S3ObjectStorage uploads objects with AWS S3 SDK v2.
// It works with any S3-compatible backend (AWS S3, MinIO, RustFS).
type S3ObjectStorage struct {
	client    *s3.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// S3ObjectStorageOption is a functional option for configuring S3ObjectStorage
type S3ObjectStorageOption func(*S3ObjectStorage)

// WithLogger sets a custom logger for S3ObjectStorage
func WithLogger(logger *zap.Logger) S3ObjectStorageOption {
	return func(s *S3ObjectStorage) {
		s.logger = logger
	}
}

// NewS3ObjectStorage creates the storage from configuration. Without static
// keys the default AWS credential chain is used.
func NewS3ObjectStorage(cfg *config.StorageConfig, opts ...S3ObjectStorageOption) (*S3ObjectStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, errors.New("storage access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint != "" {
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	storage := &S3ObjectStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicBaseURL(cfg, endpoint, region),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	return storage, nil
}

// publicBaseURL is the prefix under which uploaded objects are reachable
func publicBaseURL(cfg *config.StorageConfig, endpoint, region string) string {
	switch {
	case cfg.PublicURL != "":
		return strings.TrimRight(cfg.PublicURL, "/")
	case endpoint != "":
		return endpoint + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	}
}

// Upload stores body under key and returns the object's public URL
func (s *S3ObjectStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	// The SDK signs the payload, which needs a seekable body over plain HTTP.
	seeker, ok := body.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("read upload body: %w", err)
		}
		seeker = bytes.NewReader(data)
		size = int64(len(data))
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        seeker,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("Failed to upload object",
			zap.String("bucket", s.bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Debug("Object uploaded", zap.String("bucket", s.bucket), zap.String("key", key))
	return s.ObjectURL(key), nil
}

// ObjectURL returns the public URL of key
func (s *S3ObjectStorage) ObjectURL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}
