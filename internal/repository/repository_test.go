package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"
	"github.com/cleverframework/clever-v0-galleries/internal/repository"
	"github.com/cleverframework/clever-v0-galleries/internal/storage"
	"github.com/cleverframework/clever-v0-galleries/internal/storage/postgresql/postgresqltest"
	redisapp "github.com/cleverframework/clever-v0-galleries/internal/storage/redis"

	"github.com/brianvoe/gofakeit"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCtx = context.Background()
)

func newGallery() models.Gallery {
	return models.Gallery{
		Slug:    "g-" + uuid.NewString()[:8],
		Title:   gofakeit.Word(),
		Comment: gofakeit.Word(),
	}
}

func TestGalleryRepo(t *testing.T) {
	db := postgresqltest.Setup(t)
	repo := repository.NewGalleryRepo(db)

	t.Run("create assigns id and empty images", func(t *testing.T) {
		created, err := repo.CreateGallery(testCtx, newGallery())
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := repo.GetGalleryByID(testCtx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Slug, got.Slug)
		assert.Equal(t, created.Title, got.Title)
		assert.Empty(t, got.Images)
	})

	t.Run("duplicate slug is a validation error", func(t *testing.T) {
		g := newGallery()
		_, err := repo.CreateGallery(testCtx, g)
		require.NoError(t, err)

		_, err = repo.CreateGallery(testCtx, g)
		require.Error(t, err)

		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.True(t, verr.Has("slug"))
	})

	t.Run("get by slug", func(t *testing.T) {
		created, err := repo.CreateGallery(testCtx, newGallery())
		require.NoError(t, err)

		got, err := repo.GetGalleryBySlug(testCtx, created.Slug)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetGalleryByID(testCtx, uuid.New())
		assert.ErrorIs(t, err, storage.ErrGalleryNotFound)

		_, err = repo.GetGalleryBySlug(testCtx, "missing-slug")
		assert.ErrorIs(t, err, storage.ErrGalleryNotFound)

		assert.ErrorIs(t, repo.DeleteGallery(testCtx, uuid.New()), storage.ErrGalleryNotFound)
		assert.ErrorIs(t, repo.UpdateImages(testCtx, uuid.New(), nil), storage.ErrGalleryNotFound)
	})

	t.Run("update fields keeps images", func(t *testing.T) {
		created, err := repo.CreateGallery(testCtx, newGallery())
		require.NoError(t, err)

		images := models.ImageRefs{{Ref: "a", Order: 0}, {Ref: "b", Order: 1}}
		require.NoError(t, repo.UpdateImages(testCtx, created.ID, images))

		created.Title = "renamed"
		created.Private = true
		created.Images = nil
		require.NoError(t, repo.UpdateGallery(testCtx, created))

		got, err := repo.GetGalleryByID(testCtx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Title)
		assert.True(t, got.Private)
		assert.Equal(t, images, got.Images)
	})

	t.Run("list and count with filter", func(t *testing.T) {
		a, err := repo.CreateGallery(testCtx, newGallery())
		require.NoError(t, err)
		b, err := repo.CreateGallery(testCtx, newGallery())
		require.NoError(t, err)

		filter := models.GalleryFilter{Slugs: []string{a.Slug, b.Slug}}

		total, err := repo.CountGalleries(testCtx, filter)
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		page, err := repo.GetGalleries(testCtx, filter, 0, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)

		rest, err := repo.GetGalleries(testCtx, filter, 1, 10)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.NotEqual(t, page[0].ID, rest[0].ID)

		private := true
		hidden, err := repo.CountGalleries(testCtx, models.GalleryFilter{Slugs: filter.Slugs, Private: &private})
		require.NoError(t, err)
		assert.Zero(t, hidden)
	})

	t.Run("delete", func(t *testing.T) {
		created, err := repo.CreateGallery(testCtx, newGallery())
		require.NoError(t, err)

		require.NoError(t, repo.DeleteGallery(testCtx, created.ID))

		_, err = repo.GetGalleryByID(testCtx, created.ID)
		assert.ErrorIs(t, err, storage.ErrGalleryNotFound)
	})
}

func TestMediaRepo(t *testing.T) {
	db := postgresqltest.Setup(t)
	repo := repository.NewMediaRepository(db)

	width, height := 640, 480
	media := &models.Media{
		ID:               uuid.New(),
		CreatedAt:        time.Now().UTC().Truncate(time.Microsecond),
		OriginalFilename: "test.jpg",
		StoragePath:      "galleries/test.jpg",
		FileSize:         1024,
		MimeType:         "image/jpeg",
		Width:            &width,
		Height:           &height,
		Metadata:         models.Metadata{"author": "test"},
	}

	t.Run("create and find", func(t *testing.T) {
		created, err := repo.CreateMedia(testCtx, media)
		require.NoError(t, err)
		assert.Equal(t, media.ID, created.ID)

		found, err := repo.FindByID(testCtx, media.ID)
		require.NoError(t, err)
		assert.Equal(t, media.StoragePath, found.StoragePath)
		assert.Equal(t, "test", found.Metadata["author"])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := repo.FindByID(testCtx, uuid.New())
		assert.ErrorIs(t, err, storage.ErrFileNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteMedia(testCtx, media.ID))
		assert.ErrorIs(t, repo.DeleteMedia(testCtx, media.ID), storage.ErrFileNotFound)
	})
}

func NewMockClient() (*redisapp.Client, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return &redisapp.Client{Client: db}, mock
}

func setupOrphanRepo() (*repository.RedisOrphanRepo, redismock.ClientMock) {
	db, mock := NewMockClient()
	return repository.NewRedisOrphanRepo(db), mock
}

func TestAddOrphans(t *testing.T) {
	repo, mock := setupOrphanRepo()

	t.Run("successful add", func(t *testing.T) {
		mock.ExpectSAdd("galleries:orphans", "a", "b").SetVal(2)
		err := repo.AddOrphans(testCtx, "a", "b")
		assert.NoError(t, err)
	})

	t.Run("nothing to add", func(t *testing.T) {
		assert.NoError(t, repo.AddOrphans(testCtx))
	})

	t.Run("redis error", func(t *testing.T) {
		mock.ExpectSAdd("galleries:orphans", "a").SetErr(redis.ErrClosed)
		err := repo.AddOrphans(testCtx, "a")
		assert.ErrorIs(t, err, redis.ErrClosed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrphans(t *testing.T) {
	repo, mock := setupOrphanRepo()

	t.Run("members", func(t *testing.T) {
		mock.ExpectSMembers("galleries:orphans").SetVal([]string{"a", "b"})
		refs, err := repo.GetOrphans(testCtx)
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, refs)
	})

	t.Run("redis error", func(t *testing.T) {
		mock.ExpectSMembers("galleries:orphans").SetErr(redis.ErrClosed)
		_, err := repo.GetOrphans(testCtx)
		assert.ErrorIs(t, err, redis.ErrClosed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveOrphans(t *testing.T) {
	repo, mock := setupOrphanRepo()

	t.Run("successful remove", func(t *testing.T) {
		mock.ExpectSRem("galleries:orphans", "a").SetVal(1)
		assert.NoError(t, repo.RemoveOrphans(testCtx, "a"))
	})

	t.Run("redis error", func(t *testing.T) {
		mock.ExpectSRem("galleries:orphans", "a").SetErr(redis.ErrClosed)
		assert.ErrorIs(t, repo.RemoveOrphans(testCtx, "a"), redis.ErrClosed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
