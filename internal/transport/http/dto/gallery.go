package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"
)

type CreateGalleryRequest struct {
	Slug    string `json:"slug" validate:"required,max=32"`
	Title   string `json:"title" validate:"required,max=32"`
	Comment string `json:"comment" validate:"max=64"`
	Private bool   `json:"private"`
}

// ToDomain новая галерея всегда создается без изображений
func (r CreateGalleryRequest) ToDomain() models.Gallery {
	return models.Gallery{
		Slug:    r.Slug,
		Title:   r.Title,
		Comment: r.Comment,
		Private: r.Private,
		Images:  models.ImageRefs{},
	}
}

// UpdateGalleryRequest частичное обновление: nil означает "не менять".
// Список изображений здесь не редактируется.
type UpdateGalleryRequest struct {
	Slug    *string `json:"slug,omitempty" validate:"omitempty,min=1,max=32"`
	Title   *string `json:"title,omitempty" validate:"omitempty,min=1,max=32"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=64"`
	Private *bool   `json:"private,omitempty"`
}

// Apply переносит заданные поля на галерею
func (r UpdateGalleryRequest) Apply(g *models.Gallery) {
	if r.Slug != nil {
		g.Slug = *r.Slug
	}
	if r.Title != nil {
		g.Title = *r.Title
	}
	if r.Comment != nil {
		g.Comment = *r.Comment
	}
	if r.Private != nil {
		g.Private = *r.Private
	}
}

type AddImagesRequest struct {
	Images []string `json:"images" validate:"required,min=1,dive,required"`
}

type RemoveImagesRequest struct {
	Images []string `json:"images" validate:"required,min=1,dive,required"`
}

type ListGalleriesRequest struct {
	Skip    int      `query:"skip" validate:"gte=0"`
	Limit   int      `query:"limit" validate:"gte=0"`
	Slugs   []string `query:"slug"`
	Private *bool    `query:"private"`
}

type GalleryResponse struct {
	ID        uuid.UUID        `json:"id"`
	Slug      string           `json:"slug"`
	Title     string           `json:"title"`
	Comment   string           `json:"comment"`
	Private   bool             `json:"private"`
	Images    []*MediaResponse `json:"images"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type GallerySummaryResponse struct {
	ID         uuid.UUID      `json:"id"`
	Slug       string         `json:"slug"`
	Title      string         `json:"title"`
	Comment    string         `json:"comment"`
	Private    bool           `json:"private"`
	ImageCount int            `json:"image_count"`
	Preview    *MediaResponse `json:"preview"`
	CreatedAt  time.Time      `json:"created_at"`
}

type GalleryListResponse struct {
	Items []GallerySummaryResponse `json:"items"`
	Total int                      `json:"total"`
	Skip  int                      `json:"skip"`
	Limit int                      `json:"limit"`
}

// CascadeDeleteResponse галерея удалена, но часть файлов осталась
type CascadeDeleteResponse struct {
	ID         uuid.UUID `json:"id"`
	FailedRefs []string  `json:"failed_refs"`
}
