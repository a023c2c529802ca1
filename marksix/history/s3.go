package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config configures an S3 (or S3 compatible) client
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint custom endpoint for S3 compatible storages, path style addressing is used when set
	Endpoint string
}

// NewS3Client returns an s3 client using static credentials
func NewS3Client(cfg S3Config) *s3.Client {
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
				Source:          "marksix-config",
			}, nil
		})),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
}

// S3Source reads the history csv from a bucket
type S3Source struct {
	bucket string
	key    string
	client *s3.Client
}

var _ Source = (*S3Source)(nil)

type S3Option func(*S3Source)

func WithS3Bucket(bucket string) S3Option {
	return func(s *S3Source) {
		s.bucket = bucket
	}
}

func WithS3Key(key string) S3Option {
	return func(s *S3Source) {
		s.key = key
	}
}

func WithS3Client(clt *s3.Client) S3Option {
	return func(s *S3Source) {
		s.client = clt
	}
}

func NewS3Source(opts ...S3Option) *S3Source {
	ret := new(S3Source)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Load implements Source, a missing object returns ErrNotAvailable
func (s *S3Source) Load(ctx context.Context) ([]Record, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotAvailable
		}
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer resp.Body.Close()
	return ParseCSV(resp.Body)
}

// Save uploads records as csv to the source key
func (s *S3Source) Save(ctx context.Context, records []Record) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return err
	}
	return s.Put(ctx, s.key, bytes.NewReader(buf.Bytes()), "text/csv")
}

// Put uploads an arbitrary object into the source bucket
func (s *S3Source) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error {
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}); err != nil {
		return fmt.Errorf("failed to put object to S3: %w", err)
	}
	return nil
}
