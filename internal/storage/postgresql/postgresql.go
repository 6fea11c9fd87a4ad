package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// New открывает пул соединений и проверяет доступность базы
func New(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	const op = "storage.postgresql.New"

	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return db, nil
}

// Migrate создает таблицы, если их еще нет
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	const op = "storage.postgresql.Migrate"

	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: statement %d: %w", op, i, err)
		}
	}

	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS media (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		original_filename TEXT NOT NULL,
		storage_path TEXT NOT NULL,
		file_size BIGINT NOT NULL,
		mime_type TEXT NOT NULL DEFAULT '',
		width INT,
		height INT,
		metadata JSONB
	)`,
	`CREATE TABLE IF NOT EXISTS galleries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		slug VARCHAR(32) UNIQUE NOT NULL,
		title VARCHAR(32) NOT NULL,
		comment VARCHAR(64) NOT NULL DEFAULT '',
		private BOOLEAN NOT NULL DEFAULT false,
		images JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS galleries_created_at_idx ON galleries (created_at DESC)`,
}
