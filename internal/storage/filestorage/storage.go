package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleverframework/clever-v0-galleries/internal/storage"
)

// FileStorage хранилище байтов файлов изображений.
// Пути, которые возвращает Save, относительны и сохраняются в записи media.
type FileStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader, subPath string) (filePath string, fileSize int64, err error)
	Delete(ctx context.Context, filePath string) error
	GetFullPath(relativePath string) string
	BaseURL() string
}

// LocalFileStorage реализация для локальной файловой системы
type LocalFileStorage struct {
	baseDir string // например "./uploads"
	baseURL string // например "http://localhost:8080/uploads"
}

func NewLocalFileStorage(baseDir, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: baseURL,
	}, nil
}

func (s *LocalFileStorage) Save(ctx context.Context, file *multipart.FileHeader, subPath string) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	relPath := filepath.Join(subPath, filepath.Base(file.Filename))
	fullPath := filepath.Join(s.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directories: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(dst, src)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(fullPath)
			return "", 0, fmt.Errorf("failed to copy file: %w", copyErr)
		}
	case <-ctx.Done():
		<-done
		_ = os.Remove(fullPath)
		return "", 0, ctx.Err()
	}

	return relPath, size, nil
}

// Delete удаляет файл. Отсутствующий файл дает storage.ErrFileNotFound.
func (s *LocalFileStorage) Delete(ctx context.Context, filePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.GetFullPath(filePath))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", filePath, storage.ErrFileNotFound)
	}
	return err
}

// GetFullPath возвращает полный путь к файлу на диске
func (s *LocalFileStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.baseDir, relativePath)
}

func (s *LocalFileStorage) BaseURL() string {
	return s.baseURL
}

// PublicURL собирает адрес файла для клиентов
func PublicURL(store FileStorage, relativePath string) string {
	if relativePath == "" {
		return ""
	}
	base := strings.TrimRight(store.BaseURL(), "/")
	return base + "/" + filepath.ToSlash(strings.TrimLeft(relativePath, "/"))
}
