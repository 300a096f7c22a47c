package agent

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Storage - where rendered agent artifacts are published. Upload
// returns the public URL of the stored object.
type Storage interface {
	ObjectKey(resourceID string, ts int64, filename string) string
	ObjectURL(key string) string
	BaseStaticURL() string
	Upload(data []byte, key, contentType string) (string, error)
}

// StorageConfig ...
type StorageConfig struct {
	Bucket string
	Region string
}

// S3Storage implementation
type S3Storage struct {
	bucket string
	region string
	client *s3.S3
}

// InitS3Storage ...
func InitS3Storage(cfg StorageConfig) Storage {
	ssn := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	}))
	return &S3Storage{
		bucket: cfg.Bucket,
		region: cfg.Region,
		client: s3.New(ssn),
	}
}

// ObjectKey ...
func (s *S3Storage) ObjectKey(resourceID string, ts int64, filename string) string {
	return fmt.Sprintf("configs/%s/%d/%s", resourceID, ts, filename)
}

// ObjectURL ...
func (s *S3Storage) ObjectURL(key string) string {
	if s.region == "us-east-1" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// BaseStaticURL - prefix the agent binary archives live under.
func (s *S3Storage) BaseStaticURL() string {
	return s.ObjectURL("harvester")
}

// Upload ...
func (s *S3Storage) Upload(data []byte, key, contentType string) (string, error) {
	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	return s.ObjectURL(key), nil
}

// MemoryStorage - in-process storage for tests and local runs.
type MemoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

// InitMemoryStorage ...
func InitMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects: map[string][]byte{},
		types:   map[string]string{},
	}
}

// ObjectKey ...
func (s *MemoryStorage) ObjectKey(resourceID string, ts int64, filename string) string {
	return fmt.Sprintf("configs/%s/%d/%s", resourceID, ts, filename)
}

// ObjectURL ...
func (s *MemoryStorage) ObjectURL(key string) string {
	return "memory://" + key
}

// BaseStaticURL ...
func (s *MemoryStorage) BaseStaticURL() string {
	return "memory://harvester"
}

// Upload ...
func (s *MemoryStorage) Upload(data []byte, key, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	s.types[key] = contentType
	return s.ObjectURL(key), nil
}

// Object - stored content lookup for assertions.
func (s *MemoryStorage) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

// ContentType ...
func (s *MemoryStorage) ContentType(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[key]
}

// ContentTypeFor maps a filename to the MIME type used on upload.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(filename[strings.LastIndex(filename, ".")+1:])
	switch ext {
	case "yml", "yaml":
		return "text/yaml"
	case "sh":
		return "text/x-shellscript"
	case "bat":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
