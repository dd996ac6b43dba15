package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sakarghimire/thumbnail-service/internal/config"
)

const bucketCheckTimeout = 5 * time.Second

// NewSession creates the AWS session shared by the S3 and DynamoDB clients.
func NewSession(cfg config.AWSConfig) (*session.Session, error) {
	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.MaxRetries >= 0 {
		awsCfg = awsCfg.WithMaxRetries(cfg.MaxRetries)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return sess, nil
}

// NewS3Client builds an S3 client, honouring endpoint overrides used with
// S3-compatible stores.
func NewS3Client(sess *session.Session, cfg config.AWSConfig) *s3.S3 {
	override := aws.NewConfig()
	if cfg.S3Endpoint != "" {
		override = override.WithEndpoint(cfg.S3Endpoint)
	}
	if cfg.S3ForcePathStyle {
		override = override.WithS3ForcePathStyle(true)
	}
	return s3.New(sess, override)
}

// NewDynamoDBClient builds a DynamoDB client for the metadata table.
func NewDynamoDBClient(sess *session.Session, cfg config.AWSConfig) *dynamodb.DynamoDB {
	override := aws.NewConfig()
	if cfg.DynamoDBEndpoint != "" {
		override = override.WithEndpoint(cfg.DynamoDBEndpoint)
	}
	return dynamodb.New(sess, override)
}

// NewMinIOClient connects to the MinIO server at cfg.Endpoint (host:port).
func NewMinIOClient(cfg config.MinIOConfig, region string) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", cfg.Endpoint, err)
	}
	return client, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket, region string) error {
	ctx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	switch {
	case err != nil:
		return fmt.Errorf("check bucket %q: %w", bucket, err)
	case exists:
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %q: %w", bucket, err)
	}
	return nil
}

// New returns the ObjectStore selected by cfg.Storage.Backend. The MinIO
// backend gets a single client, and the configured bucket is created on it
// when missing.
func New(ctx context.Context, cfg config.Config, sess *session.Session) (ObjectStore, error) {
	if cfg.Storage.Backend != config.BackendMinIO {
		return NewS3Store(NewS3Client(sess, cfg.AWS)), nil
	}

	client, err := NewMinIOClient(cfg.MinIO, cfg.AWS.Region)
	if err != nil {
		return nil, err
	}
	if err := ensureBucket(ctx, client, cfg.MinIO.Bucket, cfg.AWS.Region); err != nil {
		return nil, err
	}
	return NewMinIOStore(client), nil
}
