package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"offerbridge/internal/offer"
)

// MinioConfig locates the vault bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps vault blobs as objects in one S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	codec  codec
}

// NewMinioStore connects and creates the bucket when it does not exist yet.
func NewMinioStore(ctx context.Context, cfg MinioConfig, sealer *Sealer) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check vault bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create vault bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, codec: codec{sealer: sealer}}, nil
}

func objectName(id string) string {
	return "offers/" + id
}

func (s *MinioStore) Put(ctx context.Context, id string, payload offer.Record) error {
	blob, err := s.codec.encode(payload)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, objectName(id), bytes.NewReader(blob), int64(len(blob)), minio.PutObjectOptions{
		ContentType: contentType(s.codec.sealer),
	})
	if err != nil {
		return fmt.Errorf("put vault blob %s: %w", id, err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, id string) (offer.Record, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName(id), minio.GetObjectOptions{})
	if err != nil {
		return nil, translateMinioErr(id, err)
	}
	defer obj.Close()

	blob, err := io.ReadAll(obj)
	if err != nil {
		return nil, translateMinioErr(id, err)
	}
	return s.codec.decode(blob)
}

func translateMinioErr(id string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return fmt.Errorf("get vault blob %s: %w", id, err)
}
