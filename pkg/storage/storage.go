package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/lexpravo/intake-api/pkg/logger"
	"github.com/lexpravo/intake-api/pkg/metrics"
	"github.com/lexpravo/intake-api/pkg/slug"
	"go.uber.org/zap"
)

// Client is an S3-compatible object storage client holding staged and
// submitted application attachments (Yandex Object Storage in production).
type Client struct {
	s3Client   *s3.Client
	bucketName string
	endpoint   string
}

// NewClient creates a new object storage client using the S3 SDK
func NewClient(accessKeyID, secretAccessKey, bucketName, endpoint, region string) (*Client, error) {
	if endpoint == "" {
		endpoint = "https://storage.yandexcloud.net"
	}
	if region == "" {
		region = "ru-central1"
	}

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"", // session token not needed
		),
	})

	logger.Info("Object storage client initialized",
		zap.String("bucket", bucketName),
		zap.String("endpoint", endpoint),
		zap.String("region", region),
	)

	return &Client{
		s3Client:   s3Client,
		bucketName: bucketName,
		endpoint:   endpoint,
	}, nil
}

// Upload stores raw attachment bytes under the given key and returns the
// public URL of the stored object.
func (c *Client) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	start := time.Now()
	operation := "uploadAttachment"

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall("object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}

	metrics.StorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall("object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
	)

	// Format: {endpoint}/{bucket}/{key}
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucketName, key), nil
}

// Delete removes a stored object. Used when a client unstages an attachment.
func (c *Client) Delete(ctx context.Context, key string) error {
	start := time.Now()
	operation := "deleteAttachment"

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall("object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	metrics.StorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, "success").Inc()

	return nil
}

// GenerateKey builds a storage key for an uploaded file.
// Format: drafts/{sessionKey}/{uuid}-{slugged-filename}
func (c *Client) GenerateKey(sessionKey, originalFileName string) string {
	return fmt.Sprintf("drafts/%s/%s-%s", sessionKey, uuid.NewString(), slug.Filename(originalFileName))
}
