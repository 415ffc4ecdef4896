package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"

	"github.com/guestsnap/guestsnap/internal/config"
)

const (
	maxAttempts  = 3
	retryBackoff = 200 * time.Millisecond
)

// S3Store talks to an S3-compatible media host (AWS S3 or MinIO with a
// custom endpoint). Put and Delete retry transient failures with
// exponential backoff before giving up.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
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
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := cfg.S3PublicBaseURL
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}

	return &S3Store{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimRight(publicBase, "/"),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) (string, error) {
	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewExponential(retryBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return err
		}

		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          body,
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(size),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return s.publicBaseURL + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewExponential(retryBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
