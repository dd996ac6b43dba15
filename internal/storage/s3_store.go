package storage

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
)

// s3API is the subset of the S3 client used by S3Store.
type s3API interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

var _ s3API = (*s3.S3)(nil)

// S3Store adapts the S3 client to ObjectStore.
type S3Store struct {
	client   s3API
	endpoint string
}

// NewS3Store wraps an S3 client. Thumbnail URLs are built from the client's
// resolved endpoint.
func NewS3Store(client *s3.S3) *S3Store {
	return &S3Store{client: client, endpoint: client.Endpoint}
}

func (s *S3Store) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, newError("get", bucket, key, translateS3Error(err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, newError("get", bucket, key, err)
	}
	return data, nil
}

func (s *S3Store) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		ACL:           aws.String(ACLPublicRead),
		Body:          bytes.NewReader(body),
		Bucket:        aws.String(bucket),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
		Key:           aws.String(key),
	})
	if err != nil {
		return newError("put", bucket, key, translateS3Error(err))
	}
	return nil
}

func (s *S3Store) URL(bucket, key string) string {
	return joinURL(s.endpoint, bucket, key)
}

func translateS3Error(err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return errors.Join(ErrObjectNotFound, err)
		}
	}
	return err
}
