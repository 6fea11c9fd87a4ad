package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"
	"github.com/cleverframework/clever-v0-galleries/internal/lib/logger/sl"
	"github.com/cleverframework/clever-v0-galleries/internal/repository"
	"github.com/cleverframework/clever-v0-galleries/internal/storage"
	"github.com/cleverframework/clever-v0-galleries/internal/storage/filestorage"
	"github.com/cleverframework/clever-v0-galleries/internal/transport/http/dto"

	"github.com/google/uuid"
)

const uploadDir = "galleries"

// MediaService файловое хранилище изображений: запись в БД плюс байты файла
type MediaService struct {
	log         *slog.Logger
	repo        repository.MediaRepository
	fileStorage filestorage.FileStorage
	maxSize     int64
}

func NewMediaService(
	log *slog.Logger,
	repo repository.MediaRepository,
	fileStorage filestorage.FileStorage,
	maxSize int64,
) *MediaService {
	return &MediaService{
		log:         log,
		repo:        repo,
		fileStorage: fileStorage,
		maxSize:     maxSize,
	}
}

func (s *MediaService) UploadMedia(ctx context.Context, input dto.MediaUploadInput) (*models.Media, error) {
	const op = "media_service.UploadMedia"

	log := s.log.With(
		slog.String("op", op),
		slog.String("filename", input.File.Filename),
	)

	log.Info("upload media")

	if s.maxSize > 0 && input.File.Size > s.maxSize {
		log.Warn("file too large", slog.Int64("size", input.File.Size))
		return nil, fmt.Errorf("%s: %w", op, storage.ErrFileTooLarge)
	}
	if ct := input.File.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		log.Warn("not an image", slog.String("content_type", ct))
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidFileType)
	}

	id := uuid.New()

	filePath, fileSize, err := s.fileStorage.Save(ctx, input.File, path.Join(uploadDir, id.String()))
	if err != nil {
		log.Error("failed to save file", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	media := input.ToDomain(id, filePath, fileSize)

	if err := media.Validate(); err != nil {
		_ = s.fileStorage.Delete(ctx, filePath)
		log.Error("media validation failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	createdMedia, err := s.repo.CreateMedia(ctx, media)
	if err != nil {
		_ = s.fileStorage.Delete(ctx, filePath)
		log.Error("failed to save media to database", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("media uploaded", slog.String("id", createdMedia.ID.String()))

	return createdMedia, nil
}

// FindByID ищет запись файла по ссылке из галереи.
// Ссылка, которая не является UUID, считается отсутствующей.
func (s *MediaService) FindByID(ctx context.Context, ref string) (*models.Media, error) {
	const op = "media_service.FindByID"

	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", op, ref, storage.ErrFileNotFound)
	}

	media, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return media, nil
}

// DeleteByID удаляет байты файла, затем запись.
// Уже удаленные байты не считаются ошибкой.
func (s *MediaService) DeleteByID(ctx context.Context, ref string) error {
	const op = "media_service.DeleteByID"

	log := s.log.With(
		slog.String("op", op),
		slog.String("ref", ref),
	)

	media, err := s.FindByID(ctx, ref)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.fileStorage.Delete(ctx, media.StoragePath); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
		log.Error("failed to delete file", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.DeleteMedia(ctx, media.ID); err != nil {
		log.Error("failed to delete media record", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("media deleted")

	return nil
}

// URL публичный адрес файла
func (s *MediaService) URL(media *models.Media) string {
	if media == nil {
		return ""
	}
	return filestorage.PublicURL(s.fileStorage, media.StoragePath)
}
