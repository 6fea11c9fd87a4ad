package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpapp "github.com/cleverframework/clever-v0-galleries/internal/app/http"
	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"
	"github.com/cleverframework/clever-v0-galleries/internal/lib/jwt"
	"github.com/cleverframework/clever-v0-galleries/internal/storage"
	httprouters "github.com/cleverframework/clever-v0-galleries/internal/transport/http"
	"github.com/cleverframework/clever-v0-galleries/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const secret = "test-secret"

type MockGalleryService struct {
	mock.Mock
}

func (m *MockGalleryService) CreateGallery(ctx context.Context, req dto.CreateGalleryRequest) (models.Gallery, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryService) GetGallery(ctx context.Context, id uuid.UUID) (*models.LoadedGallery, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*models.LoadedGallery)
	return g, args.Error(1)
}

func (m *MockGalleryService) GetGalleryBySlug(ctx context.Context, slug string) (*models.LoadedGallery, error) {
	args := m.Called(ctx, slug)
	g, _ := args.Get(0).(*models.LoadedGallery)
	return g, args.Error(1)
}

func (m *MockGalleryService) ListGalleries(ctx context.Context, filter models.GalleryFilter, skip, limit int) (models.GalleryPage, error) {
	args := m.Called(ctx, filter, skip, limit)
	return args.Get(0).(models.GalleryPage), args.Error(1)
}

func (m *MockGalleryService) EditGallery(ctx context.Context, id uuid.UUID, req dto.UpdateGalleryRequest) (models.Gallery, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryService) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGalleryService) AddImages(ctx context.Context, id uuid.UUID, ids []string) (models.Gallery, error) {
	args := m.Called(ctx, id, ids)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryService) RemoveImages(ctx context.Context, id uuid.UUID, ids []string) (models.Gallery, error) {
	args := m.Called(ctx, id, ids)
	return args.Get(0).(models.Gallery), args.Error(1)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) UploadMedia(ctx context.Context, input dto.MediaUploadInput) (*models.Media, error) {
	args := m.Called(ctx, input)
	media, _ := args.Get(0).(*models.Media)
	return media, args.Error(1)
}

func (m *MockMediaService) URL(media *models.Media) string {
	return "http://cdn.test/" + media.StoragePath
}

type RoutersTestSuite struct {
	suite.Suite
	galleries *MockGalleryService
	media     *MockMediaService
	handler   http.Handler
	token     string
}

func (s *RoutersTestSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.galleries = new(MockGalleryService)
	s.media = new(MockMediaService)

	routers := httprouters.NewRouter(log, s.galleries, s.media)
	s.handler = httpapp.New(log, secret, "", "0", 0, routers).Handler()

	token, err := jwt.NewAdminToken(secret, "tests", time.Hour)
	require.NoError(s.T(), err)
	s.token = token
}

func TestRoutersTestSuite(t *testing.T) {
	suite.Run(t, new(RoutersTestSuite))
}

func (s *RoutersTestSuite) do(method, target, body string, admin bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *RoutersTestSuite) TestCreateGallery() {
	s.Run("requires admin token", func() {
		rec := s.do(http.MethodPost, "/api/v1/galleries", `{"slug":"a","title":"b"}`, false)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.galleries.AssertNotCalled(s.T(), "CreateGallery", mock.Anything, mock.Anything)
	})

	s.Run("created", func() {
		id := uuid.New()
		req := dto.CreateGalleryRequest{Slug: "summer", Title: "Summer"}
		s.galleries.On("CreateGallery", mock.Anything, req).
			Return(models.Gallery{ID: id, Slug: "summer", Title: "Summer"}, nil).Once()

		rec := s.do(http.MethodPost, "/api/v1/galleries", `{"slug":"summer","title":"Summer"}`, true)
		s.Equal(http.StatusCreated, rec.Code)

		data := decode(s.T(), rec)["data"].(map[string]any)
		s.Equal(id.String(), data["id"])
		s.Empty(data["images"])
	})

	s.Run("validation errors are listed per field", func() {
		s.galleries.On("CreateGallery", mock.Anything, dto.CreateGalleryRequest{Title: "t"}).
			Return(models.Gallery{}, models.NewValidationError("slug", "slug is required")).Once()

		rec := s.do(http.MethodPost, "/api/v1/galleries", `{"title":"t"}`, true)
		s.Equal(http.StatusBadRequest, rec.Code)

		errs := decode(s.T(), rec)["errors"].([]any)
		s.Require().Len(errs, 1)
		s.Equal("slug", errs[0].(map[string]any)["param"])
	})
}

func (s *RoutersTestSuite) TestGetGallery() {
	s.Run("with images", func() {
		id := uuid.New()
		loaded := &models.LoadedGallery{
			Gallery: models.Gallery{ID: id, Slug: "s", Title: "t"},
			Files:   []models.Media{{ID: uuid.New(), StoragePath: "galleries/a.jpg"}},
		}
		s.galleries.On("GetGallery", mock.Anything, id).Return(loaded, nil).Once()

		rec := s.do(http.MethodGet, "/api/v1/galleries/"+id.String(), "", false)
		s.Equal(http.StatusOK, rec.Code)

		images := decode(s.T(), rec)["data"].(map[string]any)["images"].([]any)
		s.Require().Len(images, 1)
		s.Equal("http://cdn.test/galleries/a.jpg", images[0].(map[string]any)["url"])
	})

	s.Run("not found", func() {
		id := uuid.New()
		s.galleries.On("GetGallery", mock.Anything, id).Return(nil, storage.ErrGalleryNotFound).Once()

		rec := s.do(http.MethodGet, "/api/v1/galleries/"+id.String(), "", false)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("invalid id", func() {
		rec := s.do(http.MethodGet, "/api/v1/galleries/nope", "", false)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("file store outage", func() {
		id := uuid.New()
		s.galleries.On("GetGallery", mock.Anything, id).
			Return(nil, &models.LookupError{Ref: "a", Err: errors.New("timeout")}).Once()

		rec := s.do(http.MethodGet, "/api/v1/galleries/"+id.String(), "", false)
		s.Equal(http.StatusBadGateway, rec.Code)
	})

	s.Run("by slug", func() {
		loaded := &models.LoadedGallery{Gallery: models.Gallery{ID: uuid.New(), Slug: "summer"}}
		s.galleries.On("GetGalleryBySlug", mock.Anything, "summer").Return(loaded, nil).Once()

		rec := s.do(http.MethodGet, "/api/v1/galleries/slug/summer", "", false)
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *RoutersTestSuite) TestListGalleries() {
	private := false
	filter := models.GalleryFilter{Slugs: []string{"a", "b"}, Private: &private}
	items := []models.GallerySummary{{
		Gallery:    models.Gallery{ID: uuid.New(), Slug: "a"},
		ImageCount: 3,
		Preview:    &models.Media{ID: uuid.New(), StoragePath: "galleries/p.jpg"},
	}}
	page := models.GalleryPage{Items: items, Total: 11, Skip: 10, Limit: 5}
	s.galleries.On("ListGalleries", mock.Anything, filter, 10, 5).Return(page, nil).Once()

	rec := s.do(http.MethodGet, "/api/v1/galleries?skip=10&limit=5&slug=a&slug=b&private=false", "", false)
	s.Equal(http.StatusOK, rec.Code)
	s.galleries.AssertExpectations(s.T())

	data := decode(s.T(), rec)["data"].(map[string]any)
	s.EqualValues(11, data["total"])
	first := data["items"].([]any)[0].(map[string]any)
	s.EqualValues(3, first["image_count"])
	s.Equal("http://cdn.test/galleries/p.jpg", first["preview"].(map[string]any)["url"])

	s.Run("slug filter only", func() {
		slugs := models.GalleryFilter{Slugs: []string{"a", "b"}}
		s.galleries.On("ListGalleries", mock.Anything, slugs, 0, 0).
			Return(models.GalleryPage{Items: []models.GallerySummary{}, Limit: 20}, nil).Once()

		rec := s.do(http.MethodGet, "/api/v1/galleries?slug=a&slug=b", "", false)
		s.Equal(http.StatusOK, rec.Code)
		s.galleries.AssertExpectations(s.T())
	})

	s.Run("applied limit is reported", func() {
		s.galleries.On("ListGalleries", mock.Anything, models.GalleryFilter{}, 0, 1000).
			Return(models.GalleryPage{Items: []models.GallerySummary{}, Limit: 100}, nil).Once()

		rec := s.do(http.MethodGet, "/api/v1/galleries?limit=1000", "", false)
		s.Equal(http.StatusOK, rec.Code)
		s.EqualValues(100, decode(s.T(), rec)["data"].(map[string]any)["limit"])
	})

	s.Run("negative skip", func() {
		rec := s.do(http.MethodGet, "/api/v1/galleries?skip=-1", "", false)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RoutersTestSuite) TestDeleteGallery() {
	s.Run("clean delete", func() {
		id := uuid.New()
		s.galleries.On("DeleteGallery", mock.Anything, id).Return(nil).Once()

		rec := s.do(http.MethodDelete, "/api/v1/galleries/"+id.String(), "", true)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("leftover files", func() {
		id := uuid.New()
		cascade := &models.CascadeDeleteError{}
		cascade.Add("A", errors.New("busy"))
		s.galleries.On("DeleteGallery", mock.Anything, id).Return(cascade).Once()

		rec := s.do(http.MethodDelete, "/api/v1/galleries/"+id.String(), "", true)
		s.Equal(http.StatusAccepted, rec.Code)

		data := decode(s.T(), rec)["data"].(map[string]any)
		s.Equal([]any{"A"}, data["failed_refs"])
	})
}

func (s *RoutersTestSuite) TestAddImages() {
	s.Run("empty list rejected", func() {
		rec := s.do(http.MethodPost, "/api/v1/galleries/"+uuid.NewString()+"/images", `{"images":[]}`, true)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.galleries.AssertNotCalled(s.T(), "AddImages", mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("appended", func() {
		id := uuid.New()
		gallery := models.Gallery{ID: id, Images: models.ImageRefs{{Ref: "X", Order: 0}}}
		s.galleries.On("AddImages", mock.Anything, id, []string{"X"}).Return(gallery, nil).Once()

		rec := s.do(http.MethodPost, "/api/v1/galleries/"+id.String()+"/images", `{"images":["X"]}`, true)
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *RoutersTestSuite) TestUpdateGallery() {
	id := uuid.New()
	title := "New"
	s.galleries.On("EditGallery", mock.Anything, id, dto.UpdateGalleryRequest{Title: &title}).
		Return(models.Gallery{ID: id, Title: title}, nil).Once()

	rec := s.do(http.MethodPut, "/api/v1/galleries/"+id.String(), `{"title":"New"}`, true)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("New", decode(s.T(), rec)["data"].(map[string]any)["title"])
}

func (s *RoutersTestSuite) TestRemoveImages() {
	s.Run("requires admin token", func() {
		rec := s.do(http.MethodDelete, "/api/v1/galleries/"+uuid.NewString()+"/images", `{"images":["A"]}`, false)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("empty list rejected", func() {
		rec := s.do(http.MethodDelete, "/api/v1/galleries/"+uuid.NewString()+"/images", `{"images":[]}`, true)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.galleries.AssertNotCalled(s.T(), "RemoveImages", mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("removed", func() {
		id := uuid.New()
		gallery := models.Gallery{ID: id, Images: models.ImageRefs{{Ref: "B", Order: 0}}}
		s.galleries.On("RemoveImages", mock.Anything, id, []string{"A"}).Return(gallery, nil).Once()

		rec := s.do(http.MethodDelete, "/api/v1/galleries/"+id.String()+"/images", `{"images":["A"]}`, true)
		s.Equal(http.StatusOK, rec.Code)
		s.galleries.AssertExpectations(s.T())
	})

	s.Run("unknown gallery", func() {
		id := uuid.New()
		s.galleries.On("RemoveImages", mock.Anything, id, []string{"A"}).
			Return(models.Gallery{}, storage.ErrGalleryNotFound).Once()

		rec := s.do(http.MethodDelete, "/api/v1/galleries/"+id.String()+"/images", `{"images":["A"]}`, true)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *RoutersTestSuite) TestGetGalleryImagesBySlug() {
	loaded := &models.LoadedGallery{
		Gallery: models.Gallery{ID: uuid.New(), Slug: "summer"},
		Files:   []models.Media{{ID: uuid.New(), StoragePath: "galleries/a.jpg"}},
	}
	s.galleries.On("GetGalleryBySlug", mock.Anything, "summer").Return(loaded, nil).Once()

	rec := s.do(http.MethodGet, "/api/v1/galleries/slug/summer/images", "", false)
	s.Equal(http.StatusOK, rec.Code)

	images := decode(s.T(), rec)["data"].([]any)
	s.Require().Len(images, 1)
	s.Equal("http://cdn.test/galleries/a.jpg", images[0].(map[string]any)["url"])
}
