package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"
	"github.com/cleverframework/clever-v0-galleries/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	galleriesTable = "galleries"

	uniqueViolation = "23505"
)

var galleryColumns = []string{
	"id",
	"slug",
	"title",
	"comment",
	"private",
	"images",
	"created_at",
	"updated_at",
}

type GalleryRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewGalleryRepo(db *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateGallery создает новую галерею и возвращает ее с присвоенным ID
func (r *GalleryRepo) CreateGallery(ctx context.Context, gallery models.Gallery) (models.Gallery, error) {
	const op = "repository.GalleryRepo.CreateGallery"

	if gallery.Images == nil {
		gallery.Images = models.ImageRefs{}
	}

	query, args, err := r.sb.Insert(galleriesTable).
		Columns(
			"slug",
			"title",
			"comment",
			"private",
			"images",
		).
		Values(
			gallery.Slug,
			gallery.Title,
			gallery.Comment,
			gallery.Private,
			gallery.Images,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&gallery.ID, &gallery.CreatedAt, &gallery.UpdatedAt)
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, mapWriteError(err))
	}

	return gallery, nil
}

// GetGalleryByID возвращает галерею по ID
func (r *GalleryRepo) GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGalleryByID"

	return r.getOne(ctx, op, squirrel.Eq{"id": id})
}

// GetGalleryBySlug возвращает галерею по slug
func (r *GalleryRepo) GetGalleryBySlug(ctx context.Context, slug string) (models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGalleryBySlug"

	return r.getOne(ctx, op, squirrel.Eq{"slug": slug})
}

func (r *GalleryRepo) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (models.Gallery, error) {
	query, args, err := r.sb.Select(galleryColumns...).
		From(galleriesTable).
		Where(where).
		ToSql()
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	gallery, err := scanGallery(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Gallery{}, fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
		}
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return gallery, nil
}

// GetGalleries возвращает страницу галерей, новые первыми
func (r *GalleryRepo) GetGalleries(
	ctx context.Context,
	filter models.GalleryFilter,
	skip int,
	limit int,
) ([]models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGalleries"

	queryBuilder := applyGalleryFilter(r.sb.Select(galleryColumns...).From(galleriesTable), filter).
		OrderBy("created_at DESC", "id")

	if skip > 0 {
		queryBuilder = queryBuilder.Offset(uint64(skip))
	}
	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	galleries := make([]models.Gallery, 0)
	for rows.Next() {
		gallery, err := scanGallery(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		galleries = append(galleries, gallery)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return galleries, nil
}

// CountGalleries возвращает количество галерей, подходящих под фильтр
func (r *GalleryRepo) CountGalleries(ctx context.Context, filter models.GalleryFilter) (int, error) {
	const op = "repository.GalleryRepo.CountGalleries"

	query, args, err := applyGalleryFilter(r.sb.Select("COUNT(*)").From(galleriesTable), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

// UpdateGallery обновляет поля галереи. Список изображений не трогается.
func (r *GalleryRepo) UpdateGallery(ctx context.Context, gallery models.Gallery) error {
	const op = "repository.GalleryRepo.UpdateGallery"

	query, args, err := r.sb.Update(galleriesTable).
		Set("slug", gallery.Slug).
		Set("title", gallery.Title).
		Set("comment", gallery.Comment).
		Set("private", gallery.Private).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": gallery.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}

// UpdateImages перезаписывает только список изображений
func (r *GalleryRepo) UpdateImages(ctx context.Context, id uuid.UUID, images models.ImageRefs) error {
	const op = "repository.GalleryRepo.UpdateImages"

	if images == nil {
		images = models.ImageRefs{}
	}

	query, args, err := r.sb.Update(galleriesTable).
		Set("images", images).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}

// DeleteGallery удаляет галерею по ID
func (r *GalleryRepo) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	const op = "repository.GalleryRepo.DeleteGallery"

	query, args, err := r.sb.Delete(galleriesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}

func applyGalleryFilter(b squirrel.SelectBuilder, filter models.GalleryFilter) squirrel.SelectBuilder {
	if len(filter.Slugs) > 0 {
		b = b.Where(squirrel.Eq{"slug": filter.Slugs})
	}
	if filter.Private != nil {
		b = b.Where(squirrel.Eq{"private": *filter.Private})
	}
	return b
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGallery(row rowScanner) (models.Gallery, error) {
	var gallery models.Gallery
	err := row.Scan(
		&gallery.ID,
		&gallery.Slug,
		&gallery.Title,
		&gallery.Comment,
		&gallery.Private,
		&gallery.Images,
		&gallery.CreatedAt,
		&gallery.UpdatedAt,
	)
	return gallery, err
}

// mapWriteError превращает нарушение уникальности slug в ошибку валидации
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return models.NewValidationError("slug", "Slug already used")
	}
	return err
}
