// Package storage uploads user-supplied files to object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"tournament-dashboard/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore stores a blob under key and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// putObjectAPI is the slice of the S3 client R2Store needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Store writes to a Cloudflare R2 bucket through its S3-compatible API.
type R2Store struct {
	client     putObjectAPI
	bucket     string
	cdnBaseURL string
}

// NewR2Store builds a store from cfg. It returns nil, nil when R2 is not
// configured so callers can run without uploads.
func NewR2Store(ctx context.Context, cfg config.R2Config) (*R2Store, error) {
	if !cfg.Enabled() {
		log.Println("⚠️ R2 not configured, image uploads disabled")
		return nil, nil
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	base := cfg.CDNBaseURL
	if base == "" {
		base = endpoint + "/" + cfg.Bucket
	}
	return newR2Store(client, cfg.Bucket, base), nil
}

func newR2Store(client putObjectAPI, bucket, cdnBaseURL string) *R2Store {
	return &R2Store{client: client, bucket: bucket, cdnBaseURL: strings.TrimRight(cdnBaseURL, "/")}
}

func (s *R2Store) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return s.cdnBaseURL + "/" + key, nil
}
