package database

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"chat_presence_service/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinIOClient definition minio client
type MinIOClient struct {
	Client     *minio.Client
	BucketName string
	// 對外可存取的 base url, 空值時使用 endpoint
	PublicURL string
}

// NewMinIOConnection create a new minio connection have retry
func NewMinIOConnection(ctx context.Context, d MinIOConnection) (*MinIOClient, error) {
	var mc *MinIOClient
	var err error

	for i := 1; i <= d.RetryCount; i++ {
		mc, err = NewMinioClient(ctx, d)
		if err == nil {
			logger.Log.Info("minIO connected", zap.String("endpoint", d.Endpoint), zap.Int("attempt", i))
			return mc, nil
		}

		logger.Log.Warn("minIO connect failed, retrying...",
			zap.String("endpoint", d.Endpoint),
			zap.Int("attempt", i),
			zap.Error(err),
		)
		time.Sleep(d.RetryInterval)
	}

	if err == nil {
		err = fmt.Errorf("retry count must be positive")
	}
	return nil, err
}

// NewMinioClient create a new minio, bucket 不存在時建立並設為公開讀取
func NewMinioClient(ctx context.Context, d MinIOConnection) (*MinIOClient, error) {
	minioClient, err := minio.New(d.Endpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(d.User, d.Password, ""),
			Secure: d.UseSSL,
		})
	if err != nil {
		return nil, fmt.Errorf("init minIO: %w", err)
	}

	exists, err := minioClient.BucketExists(ctx, d.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket [%s]: %w", d.BucketName, err)
	}

	if !exists {
		if err = minioClient.MakeBucket(ctx, d.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket [%s]: %w", d.BucketName, err)
		}
		if err = minioClient.SetBucketPolicy(ctx, d.BucketName, publicReadPolicy(d.BucketName)); err != nil {
			return nil, fmt.Errorf("set bucket [%s] policy: %w", d.BucketName, err)
		}
		logger.Log.Info("bucket created", zap.String("bucket", d.BucketName))
	}

	publicURL := d.PublicURL
	if publicURL == "" {
		scheme := "http"
		if d.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, d.Endpoint)
	}

	return &MinIOClient{
		Client:     minioClient,
		BucketName: d.BucketName,
		PublicURL:  strings.TrimRight(publicURL, "/"),
	}, nil
}

// UploadBytes upload in-memory object
func (m *MinIOClient) UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := m.Client.PutObject(ctx, m.BucketName, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// ObjectURL stable public url of an object
func (m *MinIOClient) ObjectURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", m.PublicURL, m.BucketName, url.PathEscape(objectName))
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}
