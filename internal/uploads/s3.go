package uploads

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	apperrors "carteira/internal/errors"
	"carteira/internal/logger"
)

// presignExpiry bounds the lifetime of generated download links.
const presignExpiry = 15 * time.Minute

// S3Options configures an S3Store. Endpoint is optional and switches the
// client to path-style addressing for MinIO and similar servers.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps files in an S3 bucket.
type S3Store struct {
	bucket  string
	client  objectAPI
	presign func(ctx context.Context, key string) (string, error)
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewS3Store loads AWS configuration and builds the bucket client.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	presigner := s3.NewPresignClient(client)

	return &S3Store{
		bucket: opts.Bucket,
		client: client,
		presign: func(ctx context.Context, key string) (string, error) {
			req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(opts.Bucket),
				Key:    aws.String(key),
			}, s3.WithPresignExpires(presignExpiry))
			if err != nil {
				return "", err
			}
			return req.URL, nil
		},
	}, nil
}

func (s *S3Store) Save(ctx context.Context, prefix, filename string, r io.Reader) (string, error) {
	key, err := NewKey(prefix, filename)
	if err != nil {
		return "", err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", apperrors.Wrap(apperrors.ErrUploadFailed, err)
	}

	logger.Get().Debugw("upload stored", "backend", "s3", "bucket", s.bucket, "key", key)
	return key, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUploadFailed, err)
	}
	return nil
}

func (s *S3Store) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	u, err := s.presign(ctx, key)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUploadFailed, err)
	}
	return u, nil
}
