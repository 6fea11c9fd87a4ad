package repository

import (
	"context"

	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"

	"github.com/google/uuid"
)

type GalleryRepository interface {
	CreateGallery(ctx context.Context, gallery models.Gallery) (models.Gallery, error)
	GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error)
	GetGalleryBySlug(ctx context.Context, slug string) (models.Gallery, error)
	GetGalleries(ctx context.Context, filter models.GalleryFilter, skip, limit int) ([]models.Gallery, error)
	CountGalleries(ctx context.Context, filter models.GalleryFilter) (int, error)
	UpdateGallery(ctx context.Context, gallery models.Gallery) error
	UpdateImages(ctx context.Context, id uuid.UUID, images models.ImageRefs) error
	DeleteGallery(ctx context.Context, id uuid.UUID) error
}

type MediaRepository interface {
	CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	DeleteMedia(ctx context.Context, id uuid.UUID) error
}

type OrphanRepository interface {
	AddOrphans(ctx context.Context, refs ...string) error
	GetOrphans(ctx context.Context) ([]string, error)
	RemoveOrphans(ctx context.Context, refs ...string) error
}
