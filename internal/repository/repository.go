package repository

import (
	redisapp "github.com/cleverframework/clever-v0-galleries/internal/storage/redis"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	db      *pgxpool.Pool
	Gallery GalleryRepository
	Media   MediaRepository
	Orphan  OrphanRepository
}

func New(db *pgxpool.Pool, redisClient *redisapp.Client) *Repository {
	return &Repository{
		db:      db,
		Gallery: NewGalleryRepo(db),
		Media:   NewMediaRepository(db),
		Orphan:  NewRedisOrphanRepo(redisClient),
	}
}

func (r *Repository) Close() {
	r.db.Close()
}
