package filestorage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API подмножество клиента s3, которое нужно хранилищу
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Options struct {
	Bucket   string
	Region   string
	Endpoint string // S3-совместимое хранилище (minio), пусто для AWS
	BaseURL  string
}

// S3FileStorage хранит файлы в бакете S3
type S3FileStorage struct {
	client  S3API
	bucket  string
	baseURL string
}

// NewS3FileStorage создает клиента из стандартной цепочки учетных данных AWS
func NewS3FileStorage(ctx context.Context, opts S3Options) (*S3FileStorage, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket name is not set")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", opts.Bucket)
	}

	return NewS3FileStorageWithClient(client, opts.Bucket, baseURL), nil
}

func NewS3FileStorageWithClient(client S3API, bucket, baseURL string) *S3FileStorage {
	return &S3FileStorage{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

func (s *S3FileStorage) Save(ctx context.Context, file *multipart.FileHeader, subPath string) (string, int64, error) {
	src, err := file.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	key := path.Join(subPath, path.Base(file.Filename))

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentLength: aws.Int64(file.Size),
	}
	if ct := file.Header.Get("Content-Type"); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", 0, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return key, file.Size, nil
}

// Delete удаляет объект. S3 не различает отсутствующие ключи, ошибки нет.
func (s *S3FileStorage) Delete(ctx context.Context, filePath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filePath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *S3FileStorage) GetFullPath(relativePath string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, relativePath)
}

func (s *S3FileStorage) BaseURL() string {
	return s.baseURL
}
