package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const imageKeyPrefix = "listings/"

var tracer = otel.Tracer("rental-listing-service/s3-storage")

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// S3Storage keeps listing images in a MinIO/S3 bucket and hands out path-style URLs.
type S3Storage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *logger.Logger
}

// NewS3Storage connects to endpoint and creates bucket when it does not exist yet.
func NewS3Storage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*S3Storage, error) {
	log.Info("Initializing S3 MinIO storage",
		zap.String("endpoint", endpoint), zap.String("bucket", bucketName), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Error("Failed to create MinIO client", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
		exists, errBucketExists := client.BucketExists(ctx, bucketName)
		if errBucketExists != nil || !exists {
			log.Error("Failed to make or verify bucket",
				zap.String("bucket", bucketName), zap.Error(err), zap.NamedError("exists_check_error", errBucketExists))
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", bucketName, err, errBucketExists)
		}
		log.Info("Bucket already exists", zap.String("bucket", bucketName))
	} else {
		log.Info("Bucket created", zap.String("bucket", bucketName))
	}

	return &S3Storage{
		client:  client,
		bucket:  bucketName,
		baseURL: fmt.Sprintf("%s/%s/", client.EndpointURL().String(), bucketName),
		logger:  log.Named("S3Storage"),
	}, nil
}

// UploadImage stores a base64 image, given either as a data URL or as bare base64,
// and returns its public URL.
func (s *S3Storage) UploadImage(ctx context.Context, image string) (string, error) {
	ctx, span := tracer.Start(ctx, "S3Storage.UploadImage")
	defer span.End()

	data, contentType, err := decodeImage(image)
	if err != nil {
		return "", err
	}

	objectKey := imageKeyPrefix + uuid.New().String() + imageExtensions[contentType]
	span.SetAttributes(attribute.String("s3.key", objectKey), attribute.Int("s3.size", len(data)))

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Error("PutObject failed", zap.String("bucket", s.bucket), zap.String("key", objectKey), zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	s.logger.Info("Image uploaded", zap.String("key", info.Key), zap.String("etag", info.ETag), zap.Int64("size", info.Size))
	return s.baseURL + objectKey, nil
}

// DeleteImage removes an object previously returned by UploadImage.
func (s *S3Storage) DeleteImage(ctx context.Context, url string) error {
	ctx, span := tracer.Start(ctx, "S3Storage.DeleteImage")
	defer span.End()

	objectKey, err := objectKeyFromURL(s.baseURL, url)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		span.RecordError(err)
		s.logger.Error("RemoveObject failed", zap.String("bucket", s.bucket), zap.String("key", objectKey), zap.Error(err))
		return fmt.Errorf("failed to remove object %s from bucket %s: %w", objectKey, s.bucket, err)
	}
	s.logger.Info("Image removed", zap.String("key", objectKey))
	return nil
}

// decodeImage accepts "data:<mime>;base64,<payload>" or a bare base64 payload.
// Payloads that are not images are rejected as invalid input.
func decodeImage(image string) ([]byte, string, error) {
	payload := strings.TrimSpace(image)
	declared := ""
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, "", domain.NewValidationError("image", "image must be a base64 data URL")
		}
		declared = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, "", domain.NewValidationError("image", "image is not valid base64")
	}

	contentType := declared
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", domain.NewValidationError("image", "unsupported image type %q", contentType)
	}
	return data, contentType, nil
}

func objectKeyFromURL(baseURL, url string) (string, error) {
	if !strings.HasPrefix(url, baseURL) || len(url) == len(baseURL) {
		return "", fmt.Errorf("image url %q is not in this bucket", url)
	}
	return strings.TrimPrefix(url, baseURL), nil
}
