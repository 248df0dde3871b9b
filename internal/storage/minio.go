package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig describes how to reach the object store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// MediaStore keeps restaurant photos and profile pictures in one bucket.
type MediaStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMediaStore connects to MinIO and creates the bucket if it is missing.
// A failed bucket check is logged rather than fatal so the API can still
// serve reads while the object store is down.
func NewMediaStore(ctx context.Context, cfg MinioConfig, logger *slog.Logger) (*MediaStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		logger.Warn("failed to check bucket existence", slog.String("bucket", cfg.Bucket), slog.String("error", err.Error()))
	} else if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			logger.Warn("failed to create bucket", slog.String("bucket", cfg.Bucket), slog.String("error", err.Error()))
		} else {
			logger.Info("created bucket", slog.String("bucket", cfg.Bucket))
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	logger.Info("connected to minio", slog.String("endpoint", cfg.Endpoint))
	return &MediaStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket),
	}, nil
}

// Upload stores the object under key and returns its public URL.
func (s *MediaStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.ObjectURL(key), nil
}

// ObjectURL returns the public URL of key.
func (s *MediaStore) ObjectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

// Remove deletes the object under key.
func (s *MediaStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// ObjectKey builds a storage key of the form "<prefix>/<owner>_<name>".
// Directory parts of name are dropped.
func ObjectKey(prefix, owner, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%s/%s_%s", prefix, owner, base)
}
