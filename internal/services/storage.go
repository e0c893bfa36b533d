package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	StorageDriverLocal = "local"
	StorageDriverMinio = "minio"
)

var audioExtensions = map[string]string{
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
}

// RecordingStore keeps answer recordings addressed by object name.
type RecordingStore interface {
	Driver() string
	EnsureReady(ctx context.Context) error
	Save(ctx context.Context, filename string, data []byte) (string, error)
	Load(ctx context.Context, objectName string) ([]byte, error)
	Delete(ctx context.Context, objectName string) error
}

// AudioExtension validates the file extension and returns it with its content type.
// Browser recordings without a name are treated as webm.
func AudioExtension(filename string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".webm"
	}
	contentType, ok := audioExtensions[ext]
	if !ok {
		return "", "", errors.Wrapf(ErrValidation, "invalid audio file extension: %s", ext)
	}
	return ext, contentType, nil
}

func newObjectName(filename string) (string, string, error) {
	ext, contentType, err := AudioExtension(filename)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("recording_%s%s", uuid.New().String(), ext), contentType, nil
}

type localRecordingStore struct {
	uploadPath string
}

func NewLocalRecordingStore(uploadPath string) RecordingStore {
	return &localRecordingStore{
		uploadPath: uploadPath,
	}
}

func (s *localRecordingStore) Driver() string {
	return StorageDriverLocal
}

func (s *localRecordingStore) EnsureReady(ctx context.Context) error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *localRecordingStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	objectName, _, err := newObjectName(filename)
	if err != nil {
		return "", err
	}

	// Create destination file
	dst, err := os.Create(s.path(objectName))
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return objectName, nil
}

func (s *localRecordingStore) Load(ctx context.Context, objectName string) ([]byte, error) {
	data, err := os.ReadFile(s.path(objectName))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *localRecordingStore) Delete(ctx context.Context, objectName string) error {
	if err := os.Remove(s.path(objectName)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *localRecordingStore) path(objectName string) string {
	return filepath.Join(s.uploadPath, filepath.Base(objectName))
}

type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

type minioRecordingStore struct {
	client *minio.Client
	bucket string
	region string
}

func NewMinioRecordingStore(cfg MinioConfig) (RecordingStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create minio client")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return &minioRecordingStore{client: client, bucket: cfg.Bucket, region: region}, nil
}

func (s *minioRecordingStore) Driver() string {
	return StorageDriverMinio
}

func (s *minioRecordingStore) EnsureReady(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, "failed to check bucket")
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return errors.Wrap(err, "failed to create bucket")
	}
	log.WithField("bucket", s.bucket).Info("🪣 Recording bucket created")
	return nil
}

func (s *minioRecordingStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	objectName, contentType, err := newObjectName(filename)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload recording")
	}
	return objectName, nil
}

func (s *minioRecordingStore) Load(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get recording")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read recording")
	}
	return data, nil
}

func (s *minioRecordingStore) Delete(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, "failed to delete recording")
	}
	return nil
}
