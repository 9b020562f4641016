package clipstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"clipvault/internal/config"
)

// S3Backend implements RemoteBackend against any S3-compatible object store.
// Keys are <prefix><filename>, one object per clip, no further partitioning.
type S3Backend struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3Backend builds a backend from storage config. It returns (nil, nil)
// when the remote tier is not configured, which callers treat as local-only
// operation rather than an error.
func NewS3Backend(cfg config.Storage) (*S3Backend, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" || strings.TrimSpace(cfg.Bucket) == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}

	return &S3Backend{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (b *S3Backend) key(name string) string {
	return b.prefix + name
}

// List returns all object names under the clip prefix.
func (b *S3Backend) List(ctx context.Context) ([]string, error) {
	var names []string
	objects := b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    b.prefix,
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, b.prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Exists reports whether an object with the clip's key is present.
func (b *S3Backend) Exists(ctx context.Context, name string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.bucket, b.key(name), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return false, nil
	}
	return false, fmt.Errorf("stat object %s: %w", name, err)
}

// Open returns a reader over the object's bytes.
func (b *S3Backend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, b.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", name, err)
	}
	return obj, nil
}

// Upload streams srcPath into the object store. Re-uploading the same name
// overwrites the existing object, so retries are duplicate-safe.
func (b *S3Backend) Upload(ctx context.Context, name, srcPath string, progress ProgressFunc) error {
	file, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open upload source: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat upload source: %w", err)
	}

	var reader io.Reader = file
	if progress != nil {
		reader = &progressReader{inner: file, total: info.Size(), fn: progress}
	}

	_, err = b.client.PutObject(ctx, b.bucket, b.key(name), reader, info.Size(), minio.PutObjectOptions{
		ContentType: "video/mp4",
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", name, err)
	}
	return nil
}

// Download fetches the object into destPath.
func (b *S3Backend) Download(ctx context.Context, name, destPath string) error {
	if err := b.client.FGetObject(ctx, b.bucket, b.key(name), destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("get object %s: %w", name, err)
	}
	return nil
}

// Remove deletes the object.
func (b *S3Backend) Remove(ctx context.Context, name string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, b.key(name), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", name, err)
	}
	return nil
}

// progressReader reports cumulative transfer progress as the object-store
// client consumes the file.
type progressReader struct {
	inner       io.Reader
	total       int64
	transferred int64
	fn          ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.transferred += int64(n)
		r.fn(r.transferred, r.total)
	}
	return n, err
}
