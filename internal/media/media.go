package media

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"go-vidtube/internal/model"
	"go-vidtube/internal/util"
)

// Asset is a stored media object. Duration is only set for video content.
type Asset struct {
	URL      string  `json:"url"`
	Duration float64 `json:"duration,omitempty"`
}

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
}

// ObjectStore is the media host: it puts staged files into an S3-compatible
// bucket and hands back durable public URLs.
type ObjectStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	prober  *Prober
}

func NewObjectStore(ctx context.Context, opts Options, prober *Prober) (*ObjectStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create media client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check media bucket: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("create media bucket: %w", err)
		}
		if err := client.SetBucketPolicy(ctx, opts.Bucket, publicReadPolicy(opts.Bucket)); err != nil {
			return nil, fmt.Errorf("set media bucket policy: %w", err)
		}
		slog.Info("media bucket created", "bucket", opts.Bucket)
	}

	base := strings.TrimRight(opts.PublicURL, "/")
	if base == "" {
		base = strings.TrimRight(client.EndpointURL().String(), "/")
	}

	return &ObjectStore{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: base + "/" + opts.Bucket,
		prober:  prober,
	}, nil
}

// Upload stores the file at localPath. Any failure is reported as
// model.ErrUploadFailed so callers never see a half-populated Asset.
func (s *ObjectStore) Upload(ctx context.Context, localPath string) (Asset, error) {
	info, err := os.Stat(localPath)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return Asset{}, fmt.Errorf("%w: local file unavailable: %s", model.ErrUploadFailed, localPath)
	}

	contentType := util.ContentTypeFor(localPath)
	key := objectKey(time.Now().UTC(), path.Ext(localPath))

	started := time.Now()
	if _, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return Asset{}, fmt.Errorf("%w: %v", model.ErrUploadFailed, err)
	}

	slog.Debug("media uploaded", "key", key, "size_bytes", info.Size(), "duration_ms", time.Since(started).Milliseconds())

	asset := Asset{URL: s.baseURL + "/" + key}
	if strings.HasPrefix(contentType, "video/") && s.prober != nil {
		seconds, probeErr := s.prober.Duration(ctx, localPath)
		if probeErr != nil {
			slog.Warn("could not probe video duration", "key", key, "error", probeErr)
		} else {
			asset.Duration = seconds
		}
	}

	return asset, nil
}

// Delete removes an asset previously returned by Upload. URLs that do not
// belong to this store are ignored.
func (s *ObjectStore) Delete(ctx context.Context, assetURL string) error {
	key, ok := s.keyFromURL(assetURL)
	if !ok {
		return nil
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete media object %q: %w", key, err)
	}
	return nil
}

func (s *ObjectStore) keyFromURL(assetURL string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(assetURL, prefix) {
		return "", false
	}

	key, err := url.PathUnescape(strings.TrimPrefix(assetURL, prefix))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

func objectKey(now time.Time, ext string) string {
	return now.Format("2006/01/02") + "/" + uuid.NewString() + strings.ToLower(ext)
}

func publicReadPolicy(bucket string) string {
	return `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},` +
		`"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::` + bucket + `/*"]}]}`
}
