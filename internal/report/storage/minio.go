package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/smallbiznis/sevadesk/internal/config"
	"github.com/smallbiznis/sevadesk/internal/report/domain"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ObjectAPI is the subset of the minio client used for artifacts.
type ObjectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// MinIO stores artifacts as objects. A single PutObject call is atomic from a
// reader's point of view.
type MinIO struct {
	client ObjectAPI
	bucket string
	region string
	log    *zap.Logger
}

func NewMinIO(cfg config.MinIOConfig, log *zap.Logger) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, wrap("init", cfg.Endpoint, err)
	}
	return NewMinIOWithClient(client, cfg, log), nil
}

func NewMinIOWithClient(client ObjectAPI, cfg config.MinIOConfig, log *zap.Logger) *MinIO {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		bucket = "sevadesk-reports"
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MinIO{client: client, bucket: bucket, region: region, log: log.Named("report.storage.minio")}
}

func (m *MinIO) Kind() string {
	return config.ReportStorageMinIO
}

// EnsureBucket creates the report bucket when it does not exist yet.
func (m *MinIO) EnsureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return wrap("bucket", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
		return wrap("bucket", m.bucket, err)
	}
	m.log.Info("created report bucket", zap.String("bucket", m.bucket))
	return nil
}

func (m *MinIO) Put(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	info, err := m.client.PutObject(ctx, m.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: xlsxContentType,
	})
	if err != nil {
		return "", wrap("put", name, err)
	}
	m.log.Debug("report uploaded",
		zap.String("bucket", info.Bucket),
		zap.String("object", info.Key),
		zap.Int64("size", info.Size),
	)
	return fmt.Sprintf("s3://%s/%s", m.bucket, name), nil
}

func (m *MinIO) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if ok, err := m.Exists(ctx, name); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	obj, err := m.client.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrap("open", name, err)
	}
	return obj, nil
}

func (m *MinIO) Exists(ctx context.Context, name string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, wrap("stat", name, err)
	}
	return true, nil
}
