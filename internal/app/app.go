package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	httpapp "github.com/cleverframework/clever-v0-galleries/internal/app/http"
	"github.com/cleverframework/clever-v0-galleries/internal/config"
	"github.com/cleverframework/clever-v0-galleries/internal/lib/logger/sl"
	"github.com/cleverframework/clever-v0-galleries/internal/repository"
	galleryservice "github.com/cleverframework/clever-v0-galleries/internal/services/gallery_service"
	mediaservice "github.com/cleverframework/clever-v0-galleries/internal/services/media_service"
	"github.com/cleverframework/clever-v0-galleries/internal/storage/filestorage"
	"github.com/cleverframework/clever-v0-galleries/internal/storage/postgresql"
	redisapp "github.com/cleverframework/clever-v0-galleries/internal/storage/redis"
	httprouters "github.com/cleverframework/clever-v0-galleries/internal/transport/http"
)

type App struct {
	log            *slog.Logger
	HTTPServer     *httpapp.Server
	GalleryService *galleryservice.GalleryService
	repo           *repository.Repository
	redis          *redisapp.Client
}

// New собирает зависимости: PostgreSQL, Redis, файловое хранилище, сервисы и HTTP
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	pool, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisClient := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
	if err := redisClient.HealthCheck(ctx); err != nil {
		log.Warn("redis is unavailable, orphan ledger writes will fail", sl.Err(err))
	}

	repo := repository.New(pool, redisClient)

	fileStorage, err := newFileStorage(ctx, cfg.FileStorage)
	if err != nil {
		repo.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mediaService := mediaservice.NewMediaService(log, repo.Media, fileStorage, cfg.FileStorage.MaxSize)

	galleryService := galleryservice.NewGalleryService(log, repo.Gallery, repo.Orphan, mediaService, galleryservice.Options{
		PageSize:           cfg.Galleries.PageSize,
		MaxPageSize:        cfg.Galleries.MaxPageSize,
		ResolveConcurrency: cfg.Galleries.ResolveConcurrency,
	})

	routers := httprouters.NewRouter(log, galleryService, mediaService)
	server := httpapp.New(log, cfg.Auth.Secret, cfg.HTTP.Host, cfg.HTTP.Port, cfg.HTTP.Timeout, routers)

	if cfg.FileStorage.Driver == config.DriverLocal {
		if u, err := url.Parse(cfg.FileStorage.BaseURL); err == nil && u.Path != "" && u.Path != "/" {
			server.ServeFiles(u.Path, cfg.FileStorage.BaseDir)
		}
	}

	return &App{
		log:            log,
		HTTPServer:     server,
		GalleryService: galleryService,
		repo:           repo,
		redis:          redisClient,
	}, nil
}

func newFileStorage(ctx context.Context, cfg config.FileStorageConfig) (filestorage.FileStorage, error) {
	switch cfg.Driver {
	case config.DriverS3:
		return filestorage.NewS3FileStorage(ctx, filestorage.S3Options{
			Bucket:   cfg.S3.Bucket,
			Region:   cfg.S3.Region,
			Endpoint: cfg.S3.Endpoint,
			BaseURL:  cfg.BaseURL,
		})
	default:
		return filestorage.NewLocalFileStorage(cfg.BaseDir, cfg.BaseURL)
	}
}

// Close освобождает соединения с хранилищами
func (a *App) Close() {
	a.repo.Close()

	if err := a.redis.Close(); err != nil {
		a.log.Error("failed to close redis", sl.Err(err))
	}
}
