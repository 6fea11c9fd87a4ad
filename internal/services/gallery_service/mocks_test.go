package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// callLog общая лента вызовов, чтобы проверять порядок между моками
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type MockGalleryRepository struct {
	mock.Mock
	log *callLog
}

func (m *MockGalleryRepository) CreateGallery(ctx context.Context, gallery models.Gallery) (models.Gallery, error) {
	args := m.Called(ctx, gallery)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryRepository) GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryRepository) GetGalleryBySlug(ctx context.Context, slug string) (models.Gallery, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryRepository) GetGalleries(ctx context.Context, filter models.GalleryFilter, skip, limit int) ([]models.Gallery, error) {
	args := m.Called(ctx, filter, skip, limit)
	galleries, _ := args.Get(0).([]models.Gallery)
	return galleries, args.Error(1)
}

func (m *MockGalleryRepository) CountGalleries(ctx context.Context, filter models.GalleryFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockGalleryRepository) UpdateGallery(ctx context.Context, gallery models.Gallery) error {
	args := m.Called(ctx, gallery)
	return args.Error(0)
}

func (m *MockGalleryRepository) UpdateImages(ctx context.Context, id uuid.UUID, images models.ImageRefs) error {
	args := m.Called(ctx, id, images)
	return args.Error(0)
}

func (m *MockGalleryRepository) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	m.log.add("DeleteGallery")
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockFileStore struct {
	mock.Mock
	log *callLog
}

func (m *MockFileStore) FindByID(ctx context.Context, ref string) (*models.Media, error) {
	args := m.Called(ctx, ref)
	media, _ := args.Get(0).(*models.Media)
	return media, args.Error(1)
}

func (m *MockFileStore) DeleteByID(ctx context.Context, ref string) error {
	m.log.add("DeleteByID:" + ref)
	args := m.Called(ctx, ref)
	return args.Error(0)
}

type MockOrphanRepository struct {
	mock.Mock
}

func (m *MockOrphanRepository) AddOrphans(ctx context.Context, refs ...string) error {
	args := m.Called(ctx, refs)
	return args.Error(0)
}

func (m *MockOrphanRepository) GetOrphans(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	refs, _ := args.Get(0).([]string)
	return refs, args.Error(1)
}

func (m *MockOrphanRepository) RemoveOrphans(ctx context.Context, refs ...string) error {
	args := m.Called(ctx, refs)
	return args.Error(0)
}

// media возвращает запись файла, у которой имя совпадает со ссылкой
func media(ref string) *models.Media {
	return &models.Media{ID: uuid.New(), OriginalFilename: ref, StoragePath: "galleries/" + ref}
}

func filenames(files []models.Media) []string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.OriginalFilename)
	}
	return names
}
