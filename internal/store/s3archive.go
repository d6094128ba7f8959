package store

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/brokeriq/renewal-monitor/internal/config"
)

// S3Archiver writes each sync snapshot to S3 for audit. Write-only:
// the serving path never reads archives back.
type S3Archiver struct {
	client *s3.Client
	bucket string
}

// NewS3Archiver creates an archiver from configuration, or nil when the
// archive is disabled.
func NewS3Archiver(ctx context.Context, cfg appconfig.ArchiveConfig) (*S3Archiver, error) {
	if !cfg.Enabled || cfg.S3Bucket == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if profile := cfg.GetAWSProfile(); profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &S3Archiver{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
	}, nil
}

// Archive uploads one snapshot under a date-partitioned key.
func (a *S3Archiver) Archive(ctx context.Context, snapshot []byte, syncedAt time.Time) error {
	key := fmt.Sprintf("renewals/%s/sync-%s.json",
		syncedAt.Format("2006/01/02"),
		syncedAt.Format("150405"))

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(snapshot),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot %s: %w", key, err)
	}
	return nil
}
