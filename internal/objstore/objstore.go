// Package objstore reads and writes files in S3-compatible object storage.
package objstore

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/resilience"
)

// Config holds the object storage endpoint and credentials.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// Client wraps a minio client.
type Client struct {
	mc    *minio.Client
	retry resilience.RetryConfig
}

// New creates a Client for cfg.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, eris.New("objstore: endpoint is not configured")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, eris.Wrap(err, "objstore: create client")
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("objstore", "request")
	return &Client{mc: mc, retry: retry}, nil
}

// Latest returns the key of the most recently modified object under prefix.
func (c *Client) Latest(ctx context.Context, bucket, prefix string) (string, error) {
	objects, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]minio.ObjectInfo, error) {
		var out []minio.ObjectInfo
		for obj := range c.mc.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
			if obj.Err != nil {
				return nil, obj.Err
			}
			out = append(out, obj)
		}
		return out, nil
	})
	if err != nil {
		return "", eris.Wrapf(err, "objstore: list %s/%s", bucket, prefix)
	}

	key, ok := latestKey(objects)
	if !ok {
		return "", eris.Errorf("objstore: no objects under %s/%s", bucket, prefix)
	}
	zap.L().Debug("objstore: latest object", zap.String("bucket", bucket), zap.String("key", key))
	return key, nil
}

// latestKey picks the object with the newest LastModified, skipping
// directory markers. Ties keep the first listed.
func latestKey(objects []minio.ObjectInfo) (string, bool) {
	var best *minio.ObjectInfo
	for i := range objects {
		o := &objects[i]
		if strings.HasSuffix(o.Key, "/") {
			continue
		}
		if best == nil || o.LastModified.After(best.LastModified) {
			best = o
		}
	}
	if best == nil {
		return "", false
	}
	return best.Key, true
}

// Download copies bucket/key into dir and returns the local path. The file
// keeps the key's base name so its extension still identifies the format.
func (c *Client) Download(ctx context.Context, bucket, key, dir string) (string, error) {
	dest := filepath.Join(dir, path.Base(key))
	err := resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		return c.mc.FGetObject(ctx, bucket, key, dest, minio.GetObjectOptions{})
	})
	if err != nil {
		return "", eris.Wrapf(err, "objstore: download %s/%s", bucket, key)
	}
	zap.L().Info("objstore: downloaded", zap.String("bucket", bucket), zap.String("key", key), zap.String("path", dest))
	return dest, nil
}

// Upload writes size bytes from r to bucket/key.
func (c *Client) Upload(ctx context.Context, bucket, key, contentType string, r io.Reader, size int64) error {
	_, err := c.mc.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return eris.Wrapf(err, "objstore: upload %s/%s", bucket, key)
	}
	zap.L().Info("objstore: uploaded", zap.String("bucket", bucket), zap.String("key", key), zap.Int64("bytes", size))
	return nil
}

// ParseURL splits "s3://bucket/key" into bucket and key. ok is false for any
// other form.
func ParseURL(raw string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(raw, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, key, true
}
