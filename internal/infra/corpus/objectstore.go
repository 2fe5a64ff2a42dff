package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

// DefaultObjectKey names the corpus object when no key is configured.
const DefaultObjectKey = "faq/faq_data.json"

// ObjectStoreConfig points at an S3-compatible bucket such as Cloudflare R2.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Key       string
}

// ObjectStoreSource keeps the JSON corpus document in object storage.
type ObjectStoreSource struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

// NewObjectStoreSource constructs the source; no request is made until use.
func NewObjectStoreSource(cfg ObjectStoreConfig, logger *slog.Logger) (*ObjectStoreSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("object store bucket is required")
	}
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://"),
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}
	key := strings.TrimPrefix(strings.TrimSpace(cfg.Key), "/")
	if key == "" {
		key = DefaultObjectKey
	}
	return &ObjectStoreSource{
		client: client,
		bucket: cfg.Bucket,
		key:    key,
		logger: logger.With("component", "corpus.objectstore"),
	}, nil
}

func (s *ObjectStoreSource) Read(ctx context.Context) (faq.Document, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return faq.Document{}, s.mapError(err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return faq.Document{}, s.mapError(err)
	}
	return faq.DecodeDocument(data)
}

func (s *ObjectStoreSource) Write(ctx context.Context, doc faq.Document) error {
	data, err := faq.EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      "application/json",
		DisableMultipart: true,
	})
	if err != nil {
		return fmt.Errorf("put corpus object: %w", err)
	}
	return nil
}

func (s *ObjectStoreSource) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	s.logger.Info("created corpus bucket", "bucket", s.bucket)
	return nil
}

func (s *ObjectStoreSource) mapError(err error) error {
	if isObjectMissing(err) {
		return fmt.Errorf("%w: %s/%s", faq.ErrCorpusNotFound, s.bucket, s.key)
	}
	return fmt.Errorf("read corpus object: %w", err)
}

func isObjectMissing(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return true
	default:
		return false
	}
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

var _ faq.CorpusSource = (*ObjectStoreSource)(nil)
