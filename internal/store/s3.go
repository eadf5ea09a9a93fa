package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"smokebuddy/internal/types"
)

// S3ObjectClient abstracts the S3 operations used by S3Store for testability.
// *s3.Client satisfies it.
type S3ObjectClient interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Store keeps the record as a single JSON object. PutObject replaces the
// object atomically, which gives the same wholesale-overwrite semantics as
// the file backend.
type S3Store struct {
	client S3ObjectClient
	bucket string
	key    string
}

// Compile-time assertion that S3Store implements types.CounterRepository.
var _ types.CounterRepository = (*S3Store)(nil)

// NewS3Store creates an S3Store for s3://bucket/key.
func NewS3Store(client S3ObjectClient, bucket, key string) *S3Store {
	return &S3Store{client: client, bucket: bucket, key: key}
}

func (s *S3Store) location() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

// Load fetches the record, creating the default object on NoSuchKey.
func (s *S3Store) Load(ctx context.Context, defaultDate string) (*types.CounterRecord, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			rec := types.NewCounterRecord(defaultDate)
			if err := s.Save(ctx, rec); err != nil {
				return nil, err
			}
			return rec, nil
		}
		return nil, types.NewStorageError(fmt.Sprintf("failed to get %s", s.location()), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, types.NewStorageError(fmt.Sprintf("failed to read %s", s.location()), err)
	}
	return decodeRecord(data, s.location())
}

// Save overwrites the object with the encoded record.
func (s *S3Store) Save(ctx context.Context, rec *types.CounterRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return types.NewStorageError(fmt.Sprintf("failed to put %s", s.location()), err)
	}
	return nil
}

// Name identifies the store in health checks.
func (s *S3Store) Name() string { return "state_s3" }

// Check verifies that the bucket is reachable with the current credentials.
func (s *S3Store) Check(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}
