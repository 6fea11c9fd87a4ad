package dto

import (
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"
)

type MediaUploadInput struct {
	File           *multipart.FileHeader `json:"-" form:"file" validate:"required"`
	CustomMetadata map[string]any        `json:"metadata,omitempty"`

	Width  *int `json:"width,omitempty" validate:"omitempty,min=1"`
	Height *int `json:"height,omitempty" validate:"omitempty,min=1"`
}

// ToDomain преобразует DTO в доменную модель
func (input *MediaUploadInput) ToDomain(id uuid.UUID, filePath string, fileSize int64) *models.Media {
	return &models.Media{
		ID:               id,
		CreatedAt:        time.Now().UTC(),
		OriginalFilename: input.File.Filename,
		StoragePath:      filePath,
		FileSize:         fileSize,
		MimeType:         input.File.Header.Get("Content-Type"),
		Width:            input.Width,
		Height:           input.Height,
		Metadata:         input.CustomMetadata,
	}
}

// MediaResponse файл изображения в ответах API
type MediaResponse struct {
	ID               uuid.UUID `json:"id"`
	URL              string    `json:"url"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type,omitempty"`
	FileSize         int64     `json:"file_size"`
	Width            *int      `json:"width,omitempty"`
	Height           *int      `json:"height,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewMediaResponse(m *models.Media, url string) *MediaResponse {
	if m == nil {
		return nil
	}
	return &MediaResponse{
		ID:               m.ID,
		URL:              url,
		OriginalFilename: m.OriginalFilename,
		MimeType:         m.MimeType,
		FileSize:         m.FileSize,
		Width:            m.Width,
		Height:           m.Height,
		CreatedAt:        m.CreatedAt,
	}
}
