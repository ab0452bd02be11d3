package uploader

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Config configures S3-compatible storage.
type S3Config struct {
	// Endpoint is a custom S3 endpoint (e.g. an R2 account endpoint). Leave
	// empty for AWS S3.
	Endpoint string

	// Region of the bucket; "auto" for R2.
	Region string

	// Bucket name.
	Bucket string

	// AccessKeyID and SecretAccessKey; when empty they are read from the
	// R2_* environment variables, then the AWS_* ones.
	AccessKeyID     string
	SecretAccessKey string

	// BaseURL is the public URL base for uploaded objects; derived from the
	// endpoint or bucket when empty.
	BaseURL string
}

// S3Uploader implements Uploader on top of the AWS SDK.
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Uploader builds an S3Uploader, resolving credentials from the config
// or the environment.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	accessKey := cfg.AccessKeyID
	if accessKey == "" {
		accessKey = firstEnv("R2_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	}
	secretKey := cfg.SecretAccessKey
	if secretKey == "" {
		secretKey = firstEnv("R2_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
	}
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("missing credentials: set R2_ACCESS_KEY_ID/R2_SECRET_ACCESS_KEY or AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // R2 requires path-style addressing
		}
	})

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = fmt.Sprintf("%s/%s", cfg.Endpoint, cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	log.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Str("baseURL", baseURL).
		Msg("S3 uploader initialized")

	return &S3Uploader{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

// Upload stores content at key.
func (u *S3Uploader) Upload(ctx context.Context, key string, content io.Reader, contentType string) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	log.Debug().Str("key", key).Msg("Uploaded")
	return nil
}

// Exists reports whether an object lives at key.
func (u *S3Uploader) Exists(ctx context.Context, key string) (bool, error) {
	_, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", key, err)
	}
	return true, nil
}

// GetURL returns the public URL for key.
func (u *S3Uploader) GetURL(key string) string {
	return fmt.Sprintf("%s/%s", u.baseURL, key)
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
