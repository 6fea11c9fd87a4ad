package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"
	"github.com/cleverframework/clever-v0-galleries/internal/lib/logger/sl"
	"github.com/cleverframework/clever-v0-galleries/internal/metrics"
	"github.com/cleverframework/clever-v0-galleries/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultResolveConcurrency = 8

// FileStore записи файлов, на которые ссылаются галереи.
// Отсутствующий файл обозначается storage.ErrFileNotFound.
type FileStore interface {
	FindByID(ctx context.Context, ref string) (*models.Media, error)
	DeleteByID(ctx context.Context, ref string) error
}

// ImagesWriter точечная запись списка изображений галереи
type ImagesWriter interface {
	UpdateImages(ctx context.Context, id uuid.UUID, images models.ImageRefs) error
}

// ImageManager поддерживает упорядоченный список ссылок на изображения галереи
// и чинит его, когда файлы пропадают из хранилища.
type ImageManager struct {
	log         *slog.Logger
	files       FileStore
	writer      ImagesWriter
	concurrency int
}

func NewImageManager(log *slog.Logger, files FileStore, writer ImagesWriter, concurrency int) *ImageManager {
	if concurrency <= 0 {
		concurrency = defaultResolveConcurrency
	}

	return &ImageManager{
		log:         log,
		files:       files,
		writer:      writer,
		concurrency: concurrency,
	}
}

// AppendImages добавляет ссылки в конец списка в порядке ids.
// Изменяет только gallery в памяти, запись остается за вызывающим.
func (m *ImageManager) AppendImages(gallery *models.Gallery, ids []string) error {
	if err := validateImageIDs(ids); err != nil {
		return err
	}

	start := nextOrder(gallery.Images)
	for i, id := range ids {
		gallery.Images = append(gallery.Images, models.ImageRef{
			Ref:   id,
			Order: start + i,
		})
	}

	return nil
}

// RemoveImages убирает ссылки из галереи и перенумеровывает оставшиеся с нуля.
// Ссылки, которых нет в галерее, пропускаются. Сами файлы не удаляются.
func (m *ImageManager) RemoveImages(gallery *models.Gallery, ids []string) error {
	if err := validateImageIDs(ids); err != nil {
		return err
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	survivors := make(models.ImageRefs, 0, len(gallery.Images))
	for _, img := range sortImages(gallery.Images) {
		if _, ok := drop[img.Ref]; ok {
			continue
		}
		survivors = append(survivors, models.ImageRef{Ref: img.Ref, Order: len(survivors)})
	}

	gallery.Images = survivors

	return nil
}

// ResolveAndReconcile возвращает файлы галереи по возрастанию order.
// Ссылки на отсутствующие файлы выбрасываются, выжившие перенумеровываются
// с нуля, и если список изменился, он сохраняется.
func (m *ImageManager) ResolveAndReconcile(ctx context.Context, gallery *models.Gallery) ([]models.Media, error) {
	const op = "service.ImageManager.ResolveAndReconcile"

	log := m.log.With(
		slog.String("op", op),
		slog.String("gallery_id", gallery.ID.String()),
	)

	sorted := sortImages(gallery.Images)
	resolved := make([]*models.Media, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for i, img := range sorted {
		g.Go(func() error {
			media, err := m.lookup(gctx, img.Ref)
			if err != nil {
				return err
			}
			resolved[i] = media
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("failed to resolve images", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	files := make([]models.Media, 0, len(sorted))
	survivors := make(models.ImageRefs, 0, len(sorted))
	changed := false

	for i, media := range resolved {
		if media == nil {
			changed = true
			continue
		}
		order := len(survivors)
		if sorted[i].Order != order {
			changed = true
		}
		survivors = append(survivors, models.ImageRef{Ref: sorted[i].Ref, Order: order})
		files = append(files, *media)
	}

	if !changed {
		return files, nil
	}

	dropped := len(sorted) - len(survivors)

	if err := m.writer.UpdateImages(ctx, gallery.ID, survivors); err != nil {
		log.Error("failed to persist reconciled images", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	gallery.Images = survivors
	metrics.ReconcileDroppedRefs.Add(float64(dropped))

	log.Info("image list reconciled",
		slog.Int("dropped", dropped),
		slog.Int("kept", len(survivors)),
	)

	return files, nil
}

// LoadPreview возвращает файл с наименьшим order или nil.
// Ничего не записывает.
func (m *ImageManager) LoadPreview(ctx context.Context, gallery *models.Gallery) (*models.Media, error) {
	const op = "service.ImageManager.LoadPreview"

	if len(gallery.Images) == 0 {
		return nil, nil
	}

	first := gallery.Images[0]
	for _, img := range gallery.Images[1:] {
		if img.Order < first.Order {
			first = img
		}
	}

	media, err := m.lookup(ctx, first.Ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return media, nil
}

// DeleteAllImages удаляет каждый файл галереи, не останавливаясь на первой ошибке.
// Уже отсутствующий файл считается удаленным.
func (m *ImageManager) DeleteAllImages(ctx context.Context, gallery *models.Gallery) error {
	const op = "service.ImageManager.DeleteAllImages"

	log := m.log.With(
		slog.String("op", op),
		slog.String("gallery_id", gallery.ID.String()),
	)

	failed := &models.CascadeDeleteError{}

	for _, img := range sortImages(gallery.Images) {
		err := m.files.DeleteByID(ctx, img.Ref)
		if err == nil || errors.Is(err, storage.ErrFileNotFound) {
			continue
		}

		log.Warn("failed to delete file", slog.String("ref", img.Ref), sl.Err(err))
		failed.Add(img.Ref, err)
	}

	if err := failed.ErrOrNil(); err != nil {
		metrics.CascadeDeleteFailures.Add(float64(len(failed.Refs)))
		return err
	}

	return nil
}

// lookup возвращает nil без ошибки, если файла нет
func (m *ImageManager) lookup(ctx context.Context, ref string) (*models.Media, error) {
	media, err := m.files.FindByID(ctx, ref)
	if errors.Is(err, storage.ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.LookupError{Ref: ref, Err: err}
	}
	return media, nil
}

func sortImages(images models.ImageRefs) models.ImageRefs {
	sorted := slices.Clone(images)
	slices.SortStableFunc(sorted, func(a, b models.ImageRef) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return sorted
}

// nextOrder продолжает нумерацию после существующих ссылок
func nextOrder(images models.ImageRefs) int {
	next := len(images)
	for _, img := range images {
		if img.Order >= next {
			next = img.Order + 1
		}
	}
	return next
}

func validateImageIDs(ids []string) error {
	if len(ids) == 0 {
		return models.NewValidationError("images", "Images are required")
	}

	verr := &models.ValidationError{}
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			verr.Errors = append(verr.Errors, models.FieldError{
				Param: "images",
				Msg:   "Image id is required",
				Value: strconv.Itoa(i),
			})
		}
	}
	if len(verr.Errors) > 0 {
		return verr
	}

	return nil
}
