package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"
	"github.com/cleverframework/clever-v0-galleries/internal/lib/logger/sl"
	"github.com/cleverframework/clever-v0-galleries/internal/lib/validate"
	"github.com/cleverframework/clever-v0-galleries/internal/metrics"
	"github.com/cleverframework/clever-v0-galleries/internal/repository"
	"github.com/cleverframework/clever-v0-galleries/internal/storage"
	"github.com/cleverframework/clever-v0-galleries/internal/transport/http/dto"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	PageSize           int
	MaxPageSize        int
	ResolveConcurrency int
}

type GalleryService struct {
	log       *slog.Logger
	repo      repository.GalleryRepository
	orphans   repository.OrphanRepository
	files     FileStore
	images    *ImageManager
	validate  *validator.Validate
	pageSize  int
	maxPage   int
	fanoutMax int
}

func NewGalleryService(
	log *slog.Logger,
	repo repository.GalleryRepository,
	orphans repository.OrphanRepository,
	files FileStore,
	opts Options,
) *GalleryService {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.MaxPageSize < opts.PageSize {
		opts.MaxPageSize = opts.PageSize
	}

	images := NewImageManager(log, files, repo, opts.ResolveConcurrency)

	return &GalleryService{
		log:       log,
		repo:      repo,
		orphans:   orphans,
		files:     files,
		images:    images,
		validate:  validate.New(),
		pageSize:  opts.PageSize,
		maxPage:   opts.MaxPageSize,
		fanoutMax: images.concurrency,
	}
}

// CreateGallery создает галерею с пустым списком изображений
func (s *GalleryService) CreateGallery(ctx context.Context, req dto.CreateGalleryRequest) (models.Gallery, error) {
	const op = "service.GalleryService.CreateGallery"

	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", req.Slug),
	)

	log.Info("creating gallery")

	if err := validate.Struct(s.validate, req); err != nil {
		log.Warn("invalid gallery", sl.Err(err))
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	gallery, err := s.repo.CreateGallery(ctx, req.ToDomain())
	if err != nil {
		log.Error("failed to create gallery", sl.Err(err))
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery created", slog.String("id", gallery.ID.String()))

	return gallery, nil
}

// GetGallery возвращает галерею с разрешенными изображениями
func (s *GalleryService) GetGallery(ctx context.Context, id uuid.UUID) (*models.LoadedGallery, error) {
	const op = "service.GalleryService.GetGallery"

	gallery, err := s.repo.GetGalleryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.load(ctx, op, gallery)
}

// GetGalleryBySlug то же, что GetGallery, но по slug
func (s *GalleryService) GetGalleryBySlug(ctx context.Context, slug string) (*models.LoadedGallery, error) {
	const op = "service.GalleryService.GetGalleryBySlug"

	gallery, err := s.repo.GetGalleryBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.load(ctx, op, gallery)
}

func (s *GalleryService) load(ctx context.Context, op string, gallery models.Gallery) (*models.LoadedGallery, error) {
	files, err := s.images.ResolveAndReconcile(ctx, &gallery)
	if err != nil {
		s.log.Error("failed to load gallery images",
			slog.String("op", op),
			slog.String("gallery_id", gallery.ID.String()),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.LoadedGallery{Gallery: gallery, Files: files}, nil
}

// ListGalleries возвращает страницу галерей с превью и общее количество
func (s *GalleryService) ListGalleries(
	ctx context.Context,
	filter models.GalleryFilter,
	skip, limit int,
) (models.GalleryPage, error) {
	const op = "service.GalleryService.ListGalleries"

	log := s.log.With(
		slog.String("op", op),
		slog.Int("skip", skip),
		slog.Int("limit", limit),
	)

	if skip < 0 {
		skip = 0
	}
	limit = s.pageLimit(limit)

	var (
		galleries []models.Gallery
		total     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		galleries, err = s.repo.GetGalleries(gctx, filter, skip, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.CountGalleries(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to list galleries", sl.Err(err))
		return models.GalleryPage{}, fmt.Errorf("%s: %w", op, err)
	}

	summaries := make([]models.GallerySummary, len(galleries))

	pg, pctx := errgroup.WithContext(ctx)
	pg.SetLimit(s.fanoutMax)
	for i := range galleries {
		pg.Go(func() error {
			preview, err := s.images.LoadPreview(pctx, &galleries[i])
			if err != nil {
				return err
			}
			summaries[i] = models.GallerySummary{
				Gallery:    galleries[i],
				ImageCount: len(galleries[i].Images),
				Preview:    preview,
			}
			return nil
		})
	}
	if err := pg.Wait(); err != nil {
		log.Error("failed to load previews", sl.Err(err))
		return models.GalleryPage{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.GalleryPage{
		Items: summaries,
		Total: total,
		Skip:  skip,
		Limit: limit,
	}, nil
}

func (s *GalleryService) pageLimit(limit int) int {
	switch {
	case limit <= 0:
		return s.pageSize
	case limit > s.maxPage:
		return s.maxPage
	default:
		return limit
	}
}

// EditGallery частично обновляет поля галереи. Изображения так не меняются.
func (s *GalleryService) EditGallery(ctx context.Context, id uuid.UUID, req dto.UpdateGalleryRequest) (models.Gallery, error) {
	const op = "service.GalleryService.EditGallery"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
	)

	log.Info("updating gallery")

	if err := validate.Struct(s.validate, req); err != nil {
		log.Warn("invalid gallery update", sl.Err(err))
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	gallery, err := s.repo.GetGalleryByID(ctx, id)
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	req.Apply(&gallery)

	if err := s.repo.UpdateGallery(ctx, gallery); err != nil {
		log.Error("failed to update gallery", sl.Err(err))
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery updated")

	return gallery, nil
}

// DeleteGallery удаляет файлы галереи, затем саму галерею.
// Галерея удаляется, даже если часть файлов удалить не удалось: такие
// ссылки попадают в журнал сирот и возвращаются в *models.CascadeDeleteError.
func (s *GalleryService) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	const op = "service.GalleryService.DeleteGallery"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
	)

	log.Info("deleting gallery")

	gallery, err := s.repo.GetGalleryByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cascadeErr := s.images.DeleteAllImages(ctx, &gallery)

	var failed *models.CascadeDeleteError
	if errors.As(cascadeErr, &failed) {
		if err := s.orphans.AddOrphans(ctx, failed.Refs...); err != nil {
			log.Error("failed to record orphaned files", slog.Any("refs", failed.Refs), sl.Err(err))
		}
	}

	if err := s.repo.DeleteGallery(ctx, id); err != nil {
		log.Error("failed to delete gallery", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if cascadeErr != nil {
		log.Warn("gallery deleted with leftover files", sl.Err(cascadeErr))
		return fmt.Errorf("%s: %w", op, cascadeErr)
	}

	log.Info("gallery deleted", slog.Int("files", len(gallery.Images)))

	return nil
}

// AddImages дописывает файлы в конец галереи
func (s *GalleryService) AddImages(ctx context.Context, id uuid.UUID, ids []string) (models.Gallery, error) {
	const op = "service.GalleryService.AddImages"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
		slog.Int("count", len(ids)),
	)

	if err := validateImageIDs(ids); err != nil {
		log.Warn("invalid image ids", sl.Err(err))
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	gallery, err := s.repo.GetGalleryByID(ctx, id)
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.images.AppendImages(&gallery, ids); err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateImages(ctx, gallery.ID, gallery.Images); err != nil {
		log.Error("failed to save images", sl.Err(err))
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("images added")

	return gallery, nil
}

// RemoveImages отвязывает файлы от галереи, не удаляя их из хранилища
func (s *GalleryService) RemoveImages(ctx context.Context, id uuid.UUID, ids []string) (models.Gallery, error) {
	const op = "service.GalleryService.RemoveImages"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
		slog.Int("count", len(ids)),
	)

	if err := validateImageIDs(ids); err != nil {
		log.Warn("invalid image ids", sl.Err(err))
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	gallery, err := s.repo.GetGalleryByID(ctx, id)
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	before := len(gallery.Images)

	if err := s.images.RemoveImages(&gallery, ids); err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateImages(ctx, gallery.ID, gallery.Images); err != nil {
		log.Error("failed to save images", sl.Err(err))
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("images removed", slog.Int("removed", before-len(gallery.Images)))

	return gallery, nil
}

// PurgeOrphans повторяет удаление файлов, оставшихся от удаленных галерей.
// Неудачные ссылки остаются в журнале до следующего запуска.
func (s *GalleryService) PurgeOrphans(ctx context.Context) (int, error) {
	const op = "service.GalleryService.PurgeOrphans"

	log := s.log.With(slog.String("op", op))

	refs, err := s.orphans.GetOrphans(ctx)
	if err != nil {
		log.Error("failed to read orphan ledger", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	done := make([]string, 0, len(refs))
	for _, ref := range refs {
		err := s.files.DeleteByID(ctx, ref)
		if err != nil && !errors.Is(err, storage.ErrFileNotFound) {
			log.Warn("orphan still not deletable", slog.String("ref", ref), sl.Err(err))
			continue
		}
		done = append(done, ref)
	}

	if err := s.orphans.RemoveOrphans(ctx, done...); err != nil {
		log.Error("failed to update orphan ledger", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	metrics.OrphansPurged.Add(float64(len(done)))
	log.Info("orphans purged", slog.Int("purged", len(done)), slog.Int("left", len(refs)-len(done)))

	return len(done), nil
}
