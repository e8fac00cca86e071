package webbuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// ErrTemplateNotFound is returned when no template exists for a mode.
var ErrTemplateNotFound = errors.New("ini template not found")

// TemplateSource reads ini templates by key, e.g. "templates/.webapp.dev.ini".
type TemplateSource interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// fileSource implements TemplateSource for the local ini directory.
type fileSource struct {
	dir    string
	logger zerolog.Logger
}

// NewFileSource creates a template source reading below dir.
func NewFileSource(dir string, logger zerolog.Logger) TemplateSource {
	return &fileSource{
		dir:    dir,
		logger: logger.With().Str("component", "ini-template-file").Logger(),
	}
}

func (s *fileSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug().Str("file", path).Msg("ini template not found")
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ini template %s: %w", path, err)
	}
	return file, nil
}

// s3API is the subset of the S3 client used for templates.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Source implements TemplateSource for templates kept in S3.
type s3Source struct {
	client s3API
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Source creates a template source reading prefix+key from bucket.
func NewS3Source(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (TemplateSource, error) {
	logger = logger.With().Str("component", "ini-template-s3").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 template source initialised")

	return newS3Source(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Source(client s3API, bucket, prefix string, logger zerolog.Logger) *s3Source {
	return &s3Source{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

func (s *s3Source) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey := s.prefix + key

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrTemplateNotFound, s.bucket, objectKey)
		}
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}

	return result.Body, nil
}

// fallbackSource tries the remote source first, then the local one.
type fallbackSource struct {
	remote TemplateSource
	local  TemplateSource
	logger zerolog.Logger
}

// NewFallbackSource creates a source that tries remote first and falls
// back to local. A nil remote reads local only.
func NewFallbackSource(remote, local TemplateSource, logger zerolog.Logger) TemplateSource {
	return &fallbackSource{
		remote: remote,
		local:  local,
		logger: logger.With().Str("component", "ini-template-fallback").Logger(),
	}
}

func (s *fallbackSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.remote != nil {
		rc, err := s.remote.Open(ctx, key)
		if err == nil {
			s.logger.Info().Str("key", key).Msg("loaded ini template from S3")
			return rc, nil
		}

		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("failed to load ini template from S3, falling back to local file system")
	}

	return s.local.Open(ctx, key)
}
