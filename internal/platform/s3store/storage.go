package s3store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yungbote/onboarding-backend/internal/platform/envutil"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Bucket    string
}

func ConfigFromEnv() Config {
	return Config{
		Endpoint:  envutil.String("MINIO_ENDPOINT", ""),
		AccessKey: envutil.String("MINIO_ACCESS_KEY", ""),
		SecretKey: envutil.String("MINIO_SECRET_KEY", ""),
		UseSSL:    envutil.Bool("MINIO_USE_SSL", false),
		Region:    envutil.String("MINIO_REGION", "us-east-1"),
		Bucket:    envutil.String("DOCUMENTS_BUCKET", ""),
	}
}

// Storage keeps uploaded documents in an S3-compatible bucket.
type Storage struct {
	client *minio.Client
	cfg    Config
	log    *logger.Logger
}

func New(log *logger.Logger, cfg Config) (*Storage, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Storage{client: client, cfg: cfg, log: log.With("service", "MinIOStorage")}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.cfg.Bucket, err)
	}
	s.log.Info("Created bucket", "bucket", s.cfg.Bucket)
	return nil
}

func (s *Storage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.cfg.Bucket, key, r, size, opts); err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return s.PublicURL(key), nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (s *Storage) PublicURL(key string) string {
	return ObjectURL(s.cfg, key)
}

func (s *Storage) Close() error { return nil }

func ObjectURL(cfg Config, key string) string {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, cfg.Endpoint, cfg.Bucket, strings.TrimLeft(key, "/"))
}
