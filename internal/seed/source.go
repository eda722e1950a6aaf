package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"evdash/internal/config"
)

const s3Scheme = "s3://"

// Source источник исходного файла набора данных
type Source interface {
	// Open открывает содержимое источника
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name возвращает имя источника; по расширению выбирается формат
	Name() string
}

// NewSource выбирает источник по адресу: s3://bucket/key или путь к локальному файлу
func NewSource(location string, s3cfg config.S3Config) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("seed source is not configured")
	}

	if !strings.HasPrefix(location, s3Scheme) {
		return FileSource{Path: location}, nil
	}

	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(s3cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3cfg.AccessKey, s3cfg.SecretKey, ""),
		Secure: s3cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &S3Source{client: client, Bucket: bucket, Key: key}, nil
}

// ParseS3Location разбирает адрес вида s3://bucket/path/to/key
func ParseS3Location(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 location: %s", location)
	}

	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("invalid s3 location %q, expected s3://bucket/key", location)
	}
	return bucket, key, nil
}

// FileSource локальный файл
type FileSource struct {
	Path string
}

// Open открывает файл
func (s FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	return f, nil
}

// Name возвращает путь к файлу
func (s FileSource) Name() string {
	return s.Path
}

// S3Source объект в S3-совместимом хранилище
type S3Source struct {
	client *minio.Client
	Bucket string
	Key    string
}

// Open загружает объект
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.Bucket, s.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3 object: %w", err)
	}

	// GetObject ленивый: ошибки доступа проявляются при первом обращении
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("failed to stat s3 object %s: %w", s.Name(), err)
	}
	return obj, nil
}

// Name возвращает адрес объекта
func (s *S3Source) Name() string {
	return s3Scheme + s.Bucket + "/" + s.Key
}
