package client

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// MockS3Client implements S3ClientInterface for tests without AWS credentials
type MockS3Client struct {
	Bucket string
	Region string

	GenerateFileKeyFunc      func(kind, ownerID, fileExt string) (string, error)
	GeneratePresignedURLFunc func(ctx context.Context, kind, ownerID, fileName, contentType string) (string, string, error)
	DeleteFileFunc           func(ctx context.Context, key string) error
	GetFileURLFunc           func(key string) string
}

// NewMockS3Client creates a new mock S3 client for testing
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Bucket: "test-bucket",
		Region: "ap-northeast-2",
	}
}

func (m *MockS3Client) GenerateFileKey(kind, ownerID, fileExt string) (string, error) {
	if m.GenerateFileKeyFunc != nil {
		return m.GenerateFileKeyFunc(kind, ownerID, fileExt)
	}
	return generateFileKey(kind, ownerID, fileExt, time.Now())
}

func (m *MockS3Client) GeneratePresignedURL(ctx context.Context, kind, ownerID, fileName, contentType string) (string, string, error) {
	if m.GeneratePresignedURLFunc != nil {
		return m.GeneratePresignedURLFunc(ctx, kind, ownerID, fileName, contentType)
	}

	fileKey, err := m.GenerateFileKey(kind, ownerID, filepath.Ext(fileName))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate file key: %w", err)
	}
	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s?X-Amz-Expires=300", m.Bucket, m.Region, fileKey)
	return url, fileKey, nil
}

func (m *MockS3Client) DeleteFile(ctx context.Context, key string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, key)
	}
	return nil
}

func (m *MockS3Client) GetFileURL(key string) string {
	if m.GetFileURLFunc != nil {
		return m.GetFileURLFunc(key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.Bucket, m.Region, key)
}
