package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"
	"github.com/cleverframework/clever-v0-galleries/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var mediaColumns = []string{
	"id",
	"created_at",
	"original_filename",
	"storage_path",
	"file_size",
	"mime_type",
	"width",
	"height",
	"metadata",
}

type MediaRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewMediaRepository(db *pgxpool.Pool) *MediaRepo {
	return &MediaRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *MediaRepo) CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error) {
	const op = "repository.media_repository.CreateMedia"

	query, args, err := r.sb.Insert("media").
		Columns(mediaColumns...).
		Values(
			media.ID,
			media.CreatedAt,
			media.OriginalFilename,
			media.StoragePath,
			media.FileSize,
			media.MimeType,
			media.Width,
			media.Height,
			media.Metadata,
		).
		Suffix("RETURNING " + strings.Join(mediaColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	createdMedia, err := scanMedia(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create media: %w", op, err)
	}

	return createdMedia, nil
}

func (r *MediaRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	const op = "repository.media_repository.FindByID"

	query, args, err := r.sb.Select(mediaColumns...).
		From("media").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	media, err := scanMedia(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrFileNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get media: %w", op, err)
	}

	return media, nil
}

func (r *MediaRepo) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	const op = "repository.media_repository.DeleteMedia"

	query, args, err := r.sb.Delete("media").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete media: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrFileNotFound)
	}

	return nil
}

func scanMedia(row rowScanner) (*models.Media, error) {
	var m models.Media
	err := row.Scan(
		&m.ID,
		&m.CreatedAt,
		&m.OriginalFilename,
		&m.StoragePath,
		&m.FileSize,
		&m.MimeType,
		&m.Width,
		&m.Height,
		&m.Metadata,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
