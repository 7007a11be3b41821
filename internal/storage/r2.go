package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
	"github.com/tasket/tasket-server/internal/config"
)

// r2URLMarker identifies attachment URLs that live in the object store.
const r2URLMarker = ".r2.cloudflarestorage.com"

// R2Store is the S3-compatible object store backend (Cloudflare R2). A store
// built without complete credentials stays usable but unconfigured: every
// operation is skipped by the caller.
type R2Store struct {
	client    *s3.Client
	bucket    string
	accountID string
}

func NewR2Store(cfg *config.Config, log *logrus.Logger) (*R2Store, error) {
	if !cfg.R2Configured() {
		log.Warn("object storage credentials incomplete, R2 backend disabled")
		return &R2Store{}, nil
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load object storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &R2Store{
		client:    client,
		bucket:    cfg.R2Bucket,
		accountID: cfg.R2AccountID,
	}, nil
}

func (s *R2Store) Configured() bool {
	return s.client != nil
}

// Put uploads the object and returns its public URL.
func (s *R2Store) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if !s.Configured() {
		return "", errors.New("object storage is not configured")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return fmt.Sprintf("https://%s.%s.r2.cloudflarestorage.com/%s", s.bucket, s.accountID, key), nil
}

// Delete removes the object with the given key.
func (s *R2Store) Delete(ctx context.Context, key string) error {
	if !s.Configured() {
		return errors.New("object storage is not configured")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Exists reports whether the object with the given key is present.
func (s *R2Store) Exists(ctx context.Context, key string) (bool, error) {
	if !s.Configured() {
		return false, errors.New("object storage is not configured")
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return true, nil
}
