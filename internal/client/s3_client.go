package client

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appConfig "stars-workflow-api/internal/config"
)

// Media kinds accepted by GenerateFileKey
const (
	MediaKindSubmissions = "submissions"
	MediaKindThumbnails  = "thumbnails"
)

var validMediaKinds = map[string]bool{
	MediaKindSubmissions: true,
	MediaKindThumbnails:  true,
}

// S3ClientInterface is the media-storage collaborator used for submission uploads
type S3ClientInterface interface {
	GenerateFileKey(kind, ownerID, fileExt string) (string, error)
	GeneratePresignedURL(ctx context.Context, kind, ownerID, fileName, contentType string) (string, string, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(key string) string
}

// ExternalCallRecorder receives timing of calls made to S3
type ExternalCallRecorder interface {
	RecordExternalAPICall(endpoint, method string, statusCode int, duration time.Duration, err error)
}

// S3Client wraps the AWS S3 client and implements S3ClientInterface
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	region        string
	endpoint      string // set for MinIO
	uploadExpiry  time.Duration
	recorder      ExternalCallRecorder
}

// NewS3Client creates a new S3 client. An endpoint switches to MinIO mode with path-style addressing.
func NewS3Client(cfg *appConfig.S3Config, recorder ExternalCallRecorder) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for MinIO endpoint")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	} else if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	expiry := cfg.UploadExpiry
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}

	return &S3Client{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      cfg.Endpoint,
		uploadExpiry:  expiry,
		recorder:      recorder,
	}, nil
}

// GenerateFileKey generates a unique object key
// Format: workflow/{kind}/{ownerId}/{year}/{month}/{uuid}_{timestamp}.ext
func (c *S3Client) GenerateFileKey(kind, ownerID, fileExt string) (string, error) {
	return generateFileKey(kind, ownerID, fileExt, time.Now())
}

func generateFileKey(kind, ownerID, fileExt string, now time.Time) (string, error) {
	if !validMediaKinds[kind] {
		return "", fmt.Errorf("invalid media kind: %s (must be 'submissions' or 'thumbnails')", kind)
	}
	if ownerID == "" {
		return "", fmt.Errorf("owner id is required")
	}

	return fmt.Sprintf("workflow/%s/%s/%s/%s/%s_%d%s",
		kind, ownerID, now.Format("2006"), now.Format("01"), uuid.New().String(), now.Unix(), strings.ToLower(fileExt)), nil
}

// GeneratePresignedURL returns a presigned PUT URL and the object key it uploads to
func (c *S3Client) GeneratePresignedURL(ctx context.Context, kind, ownerID, fileName, contentType string) (string, string, error) {
	fileKey, err := c.GenerateFileKey(kind, ownerID, filepath.Ext(fileName))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate file key: %w", err)
	}

	start := time.Now()
	presigned, err := c.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(fileKey),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = c.uploadExpiry
	})
	c.record("s3/presign-put", "PUT", start, err)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return presigned.URL, fileKey, nil
}

// DeleteFile deletes an object from the bucket
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	start := time.Now()
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	c.record("s3/delete-object", "DELETE", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// GetFileURL returns the public URL for a key
func (c *S3Client) GetFileURL(key string) string {
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.endpoint, "/"), c.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}

func (c *S3Client) record(endpoint, method string, start time.Time, err error) {
	if c.recorder == nil {
		return
	}
	status := 200
	if err != nil {
		status = 500
	}
	c.recorder.RecordExternalAPICall(endpoint, method, status, time.Since(start), err)
}
