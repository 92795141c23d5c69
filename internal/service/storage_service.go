package service

import (
	"context"
	"net/url"
	"time"

	"vunderkids_backend/internal/config"
	"vunderkids_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const presignExpiry = 1 * time.Hour

// StorageService hands out presigned URLs for question media stored in
// object storage. A nil client degrades gracefully: media URLs come back
// empty instead of failing the content read.
type StorageService struct {
	Client *minio.Client
	Bucket string
}

func NewStorageService(cfg *config.StorageConfig) *StorageService {
	if cfg.MinioEndpoint == "" {
		logger.Log.Warn("Object storage not configured, question media disabled")
		return &StorageService{}
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		logger.Log.Error("Failed to create object storage client", zap.Error(err))
		return &StorageService{}
	}

	return &StorageService{Client: client, Bucket: cfg.MinioBucket}
}

// PresignedURL signs a read URL for one object key. Empty keys and a missing
// client both resolve to an empty URL.
func (s *StorageService) PresignedURL(ctx context.Context, objectKey string) string {
	if s.Client == nil || objectKey == "" {
		return ""
	}

	u, err := s.Client.PresignedGetObject(ctx, s.Bucket, objectKey, presignExpiry, url.Values{})
	if err != nil {
		logger.Log.Warn("Failed to presign object", zap.String("key", objectKey), zap.Error(err))
		return ""
	}
	return u.String()
}
