// Package storage reads and publishes the input bundle in S3-compatible
// object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	infraconfig "github.com/Nadifnugraha/dicowi/internal/infrastructure/config"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/tableimport"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// ObjectClient is the part of the S3 API the source uses
type ObjectClient interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Ensure S3Source implements commerce.TableSource
var _ commerce.TableSource = (*S3Source)(nil)

// S3Source loads the bundle CSV files from a bucket. It is compatible with
// any S3-compatible storage (AWS S3, RustFS, MinIO, etc.)
type S3Source struct {
	client ObjectClient
	bucket string
	prefix string
	files  map[string]string
	logger *zap.Logger
}

// S3SourceOption is a functional option for configuring S3Source
type S3SourceOption func(*S3Source)

// WithLogger sets a custom logger for S3Source
func WithLogger(logger *zap.Logger) S3SourceOption {
	return func(s *S3Source) {
		s.logger = logger
	}
}

// WithFiles overrides the object name of each table
func WithFiles(files map[string]string) S3SourceOption {
	return func(s *S3Source) {
		s.files = files
	}
}

// NewS3Source creates a source over an existing client
func NewS3Source(client ObjectClient, bucket, prefix string, opts ...S3SourceOption) *S3Source {
	s := &S3Source{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewS3SourceFromConfig builds the S3 client from configuration
func NewS3SourceFromConfig(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3SourceOption) (*S3Source, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, errors.New("storage access key and secret key must be set together")
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return NewS3Source(client, cfg.Bucket, cfg.Prefix, opts...), nil
}

// normalizeEndpoint adds the scheme to a bare host. An empty endpoint
// selects AWS.
func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		return "", nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if useSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("invalid storage endpoint: %w", err)
	}
	return endpoint, nil
}

// Key returns the object key of table
func (s *S3Source) Key(table string) string {
	return path.Join(s.prefix, tableimport.FileName(s.files, table))
}

// Load implements commerce.TableSource
func (s *S3Source) Load(ctx context.Context) (commerce.Tables, error) {
	tables, report, err := tableimport.ReadTables(ctx, s.open)
	if err != nil {
		return commerce.Tables{}, err
	}

	tableimport.LogReport(s.logger.With(zap.String("bucket", s.bucket), zap.String("prefix", s.prefix)), report)
	return tables, nil
}

func (s *S3Source) open(ctx context.Context, table string) (io.ReadCloser, error) {
	key := s.Key(table)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("object s3://%s/%s not found: %w", s.bucket, key, err)
		}
		return nil, fmt.Errorf("failed to get object s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

// Publish writes every table of t as a CSV object under the prefix
func (s *S3Source) Publish(ctx context.Context, t commerce.Tables) error {
	for _, table := range commerce.TableNames {
		var buf bytes.Buffer
		if err := tableimport.WriteTable(&buf, table, t); err != nil {
			return err
		}

		key := s.Key(table)
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: aws.String("text/csv"),
		})
		if err != nil {
			return fmt.Errorf("failed to upload s3://%s/%s: %w", s.bucket, key, err)
		}

		s.logger.Debug("table uploaded",
			zap.String("table", table),
			zap.String("key", key),
			zap.Int("size", buf.Len()),
		)
	}
	return nil
}
