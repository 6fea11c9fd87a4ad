package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cleverframework/clever-v0-galleries/internal/domain/models"
	"github.com/cleverframework/clever-v0-galleries/internal/lib/logger/sl"
	"github.com/cleverframework/clever-v0-galleries/internal/storage"
	"github.com/cleverframework/clever-v0-galleries/internal/transport/http/dto"
	"github.com/cleverframework/clever-v0-galleries/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	_ "github.com/cleverframework/clever-v0-galleries/docs"
)

type GalleryService interface {
	CreateGallery(ctx context.Context, req dto.CreateGalleryRequest) (models.Gallery, error)
	GetGallery(ctx context.Context, id uuid.UUID) (*models.LoadedGallery, error)
	GetGalleryBySlug(ctx context.Context, slug string) (*models.LoadedGallery, error)
	ListGalleries(ctx context.Context, filter models.GalleryFilter, skip, limit int) (models.GalleryPage, error)
	EditGallery(ctx context.Context, id uuid.UUID, req dto.UpdateGalleryRequest) (models.Gallery, error)
	DeleteGallery(ctx context.Context, id uuid.UUID) error
	AddImages(ctx context.Context, id uuid.UUID, ids []string) (models.Gallery, error)
	RemoveImages(ctx context.Context, id uuid.UUID, ids []string) (models.Gallery, error)
}

type MediaService interface {
	UploadMedia(ctx context.Context, input dto.MediaUploadInput) (*models.Media, error)
	URL(media *models.Media) string
}

type Routers struct {
	log            *slog.Logger
	GalleryService GalleryService
	MediaService   MediaService
}

func NewRouter(log *slog.Logger, galleryService GalleryService, mediaService MediaService) *Routers {
	return &Routers{
		log:            log,
		GalleryService: galleryService,
		MediaService:   mediaService,
	}
}

// ListGalleries godoc
// @Summary Список галерей
// @Description Страница галерей, новые первыми. Каждый элемент содержит превью и количество изображений.
// @Tags galleries
// @Produce json
// @Param skip query int false "Сколько пропустить" minimum(0)
// @Param limit query int false "Размер страницы" minimum(0)
// @Param slug query []string false "Фильтр по slug" collectionFormat(multi)
// @Param private query bool false "Фильтр по приватности"
// @Success 200 {object} response.Response{data=dto.GalleryListResponse}
// @Failure 400 {object} response.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/galleries [get]
func (r *Routers) ListGalleries(c echo.Context) error {
	const op = "http.routers.ListGalleries"

	log := r.log.With(slog.String("op", op))

	var req dto.ListGalleriesRequest
	var private string

	err := echo.QueryParamsBinder(c).
		Int("skip", &req.Skip).
		Int("limit", &req.Limit).
		Strings("slug", &req.Slugs).
		String("private", &private).
		BindError()
	if err != nil {
		log.Warn("invalid query", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if private != "" {
		v, err := strconv.ParseBool(private)
		if err != nil {
			return c.JSON(http.StatusBadRequest, response.ValidationFailed(
				models.NewValidationError("private", "private must be a boolean")))
		}
		req.Private = &v
	}

	if err := c.Validate(req); err != nil {
		return r.respondError(c, log, err)
	}

	filter := models.GalleryFilter{Slugs: req.Slugs, Private: req.Private}

	page, err := r.GalleryService.ListGalleries(c.Request().Context(), filter, req.Skip, req.Limit)
	if err != nil {
		return r.respondError(c, log, err)
	}

	resp := dto.GalleryListResponse{
		Items: make([]dto.GallerySummaryResponse, 0, len(page.Items)),
		Total: page.Total,
		Skip:  page.Skip,
		Limit: page.Limit,
	}
	for _, item := range page.Items {
		resp.Items = append(resp.Items, dto.GallerySummaryResponse{
			ID:         item.ID,
			Slug:       item.Slug,
			Title:      item.Title,
			Comment:    item.Comment,
			Private:    item.Private,
			ImageCount: item.ImageCount,
			Preview:    r.mediaResponse(item.Preview),
			CreatedAt:  item.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(resp))
}

// GetGallery godoc
// @Summary Получить галерею
// @Description Галерея с изображениями по порядку. Ссылки на удаленные файлы убираются из галереи.
// @Tags galleries
// @Produce json
// @Param id path string true "ID галереи" format(uuid)
// @Success 200 {object} response.Response{data=dto.GalleryResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/galleries/{id} [get]
func (r *Routers) GetGallery(c echo.Context) error {
	const op = "http.routers.GetGallery"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidID)
	}

	gallery, err := r.GalleryService.GetGallery(c.Request().Context(), id)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.galleryResponse(gallery)))
}

// GetGalleryBySlug godoc
// @Summary Получить галерею по slug
// @Tags galleries
// @Produce json
// @Param slug path string true "Slug галереи"
// @Success 200 {object} response.Response{data=dto.GalleryResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/galleries/slug/{slug} [get]
func (r *Routers) GetGalleryBySlug(c echo.Context) error {
	const op = "http.routers.GetGalleryBySlug"

	log := r.log.With(slog.String("op", op))

	gallery, err := r.GalleryService.GetGalleryBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.galleryResponse(gallery)))
}

// GetGalleryImages godoc
// @Summary Изображения галереи
// @Tags galleries
// @Produce json
// @Param id path string true "ID галереи" format(uuid)
// @Success 200 {object} response.Response{data=[]dto.MediaResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/galleries/{id}/images [get]
func (r *Routers) GetGalleryImages(c echo.Context) error {
	const op = "http.routers.GetGalleryImages"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidID)
	}

	gallery, err := r.GalleryService.GetGallery(c.Request().Context(), id)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.galleryResponse(gallery).Images))
}

// GetGalleryImagesBySlug godoc
// @Summary Изображения галереи по slug
// @Tags galleries
// @Produce json
// @Param slug path string true "Slug галереи"
// @Success 200 {object} response.Response{data=[]dto.MediaResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/galleries/slug/{slug}/images [get]
func (r *Routers) GetGalleryImagesBySlug(c echo.Context) error {
	const op = "http.routers.GetGalleryImagesBySlug"

	log := r.log.With(slog.String("op", op))

	gallery, err := r.GalleryService.GetGalleryBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.galleryResponse(gallery).Images))
}

// CreateGallery godoc
// @Summary Создать галерею
// @Description Новая галерея создается без изображений
// @Tags galleries
// @Accept json
// @Produce json
// @Param request body dto.CreateGalleryRequest true "Данные галереи"
// @Success 201 {object} response.Response{data=dto.GalleryResponse}
// @Failure 400 {object} response.ValidationErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/galleries [post]
func (r *Routers) CreateGallery(c echo.Context) error {
	const op = "http.routers.CreateGallery"

	log := r.log.With(slog.String("op", op))

	var req dto.CreateGalleryRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	gallery, err := r.GalleryService.CreateGallery(c.Request().Context(), req)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(
		r.galleryResponse(&models.LoadedGallery{Gallery: gallery}),
	))
}

// UpdateGallery godoc
// @Summary Изменить галерею
// @Description Частичное обновление slug, title, comment, private. Изображения добавляются отдельным запросом.
// @Tags galleries
// @Accept json
// @Produce json
// @Param id path string true "ID галереи" format(uuid)
// @Param request body dto.UpdateGalleryRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=dto.GalleryResponse}
// @Failure 400 {object} response.ValidationErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id} [put]
func (r *Routers) UpdateGallery(c echo.Context) error {
	const op = "http.routers.UpdateGallery"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidID)
	}

	var req dto.UpdateGalleryRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	gallery, err := r.GalleryService.EditGallery(c.Request().Context(), id, req)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(
		r.galleryResponse(&models.LoadedGallery{Gallery: gallery}),
	))
}

// DeleteGallery godoc
// @Summary Удалить галерею
// @Description Удаляет галерею и все ее файлы. Если часть файлов удалить не удалось, галерея все равно удаляется и возвращается 202 со списком оставшихся файлов.
// @Tags galleries
// @Produce json
// @Param id path string true "ID галереи" format(uuid)
// @Success 204
// @Success 202 {object} response.Response{data=dto.CascadeDeleteResponse}
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id} [delete]
func (r *Routers) DeleteGallery(c echo.Context) error {
	const op = "http.routers.DeleteGallery"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidID)
	}

	err = r.GalleryService.DeleteGallery(c.Request().Context(), id)

	var cascade *models.CascadeDeleteError
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.As(err, &cascade):
		log.Warn("gallery deleted with leftover files", slog.Any("refs", cascade.Refs))
		return c.JSON(http.StatusAccepted, response.Response{
			Status:  "success",
			Message: "gallery deleted, some files are queued for cleanup",
			Data:    dto.CascadeDeleteResponse{ID: id, FailedRefs: cascade.Refs},
		})
	default:
		return r.respondError(c, log, err)
	}
}

// AddImages godoc
// @Summary Добавить изображения
// @Description Добавляет файлы в конец галереи в указанном порядке
// @Tags galleries
// @Accept json
// @Produce json
// @Param id path string true "ID галереи" format(uuid)
// @Param request body dto.AddImagesRequest true "ID файлов"
// @Success 200 {object} response.Response{data=dto.GalleryResponse}
// @Failure 400 {object} response.ValidationErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id}/images [post]
func (r *Routers) AddImages(c echo.Context) error {
	const op = "http.routers.AddImages"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidID)
	}

	var req dto.AddImagesRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return r.respondError(c, log, err)
	}

	gallery, err := r.GalleryService.AddImages(c.Request().Context(), id, req.Images)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(
		r.galleryResponse(&models.LoadedGallery{Gallery: gallery}),
	))
}

// RemoveImages godoc
// @Summary Отвязать изображения
// @Description Убирает файлы из галереи и перенумеровывает оставшиеся. Сами файлы остаются в хранилище.
// @Tags galleries
// @Accept json
// @Produce json
// @Param id path string true "ID галереи" format(uuid)
// @Param request body dto.RemoveImagesRequest true "ID файлов"
// @Success 200 {object} response.Response{data=dto.GalleryResponse}
// @Failure 400 {object} response.ValidationErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id}/images [delete]
func (r *Routers) RemoveImages(c echo.Context) error {
	const op = "http.routers.RemoveImages"

	log := r.log.With(slog.String("op", op))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidID)
	}

	var req dto.RemoveImagesRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return r.respondError(c, log, err)
	}

	gallery, err := r.GalleryService.RemoveImages(c.Request().Context(), id, req.Images)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(
		r.galleryResponse(&models.LoadedGallery{Gallery: gallery}),
	))
}

// UploadMedia godoc
// @Summary Загрузка изображения
// @Description Загружает файл изображения. Полученный id передается в добавление изображений галереи.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл изображения"
// @Param metadata formData string false "Дополнительные метаданные в JSON-формате"
// @Param width formData integer false "Ширина в пикселях"
// @Param height formData integer false "Высота в пикселях"
// @Success 201 {object} response.Response{data=dto.MediaResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 415 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/files [post]
func (r *Routers) UploadMedia(c echo.Context) error {
	const op = "http.routers.UploadMedia"

	log := r.log.With(slog.String("op", op))

	file, err := c.FormFile("file")
	if err != nil {
		log.Warn("empty file in request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrFileRequired)
	}

	input, err := parseMediaUploadInput(c)
	if err != nil {
		log.Warn("invalid upload form", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}
	input.File = file

	if err := c.Validate(input); err != nil {
		return r.respondError(c, log, err)
	}

	media, err := r.MediaService.UploadMedia(c.Request().Context(), *input)
	if err != nil {
		return r.respondError(c, log, err)
	}

	log.Info("media uploaded",
		slog.String("media_id", media.ID.String()),
		slog.Int64("file_size", media.FileSize),
	)

	return c.JSON(http.StatusCreated, response.SuccessResponse(r.mediaResponse(media)))
}

func parseMediaUploadInput(c echo.Context) (*dto.MediaUploadInput, error) {
	input := &dto.MediaUploadInput{}

	if metaStr := c.FormValue("metadata"); metaStr != "" {
		if err := json.Unmarshal([]byte(metaStr), &input.CustomMetadata); err != nil {
			return nil, err
		}
	}

	if widthStr := c.FormValue("width"); widthStr != "" {
		width, err := strconv.Atoi(widthStr)
		if err != nil {
			return nil, err
		}
		input.Width = &width
	}
	if heightStr := c.FormValue("height"); heightStr != "" {
		height, err := strconv.Atoi(heightStr)
		if err != nil {
			return nil, err
		}
		input.Height = &height
	}

	return input, nil
}

// respondError переводит ошибки сервисов в HTTP ответы
func (r *Routers) respondError(c echo.Context, log *slog.Logger, err error) error {
	var (
		verr   *models.ValidationError
		lookup *models.LookupError
	)

	switch {
	case errors.As(err, &verr):
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ValidationFailed(verr))
	case errors.Is(err, storage.ErrGalleryNotFound):
		return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
	case errors.Is(err, storage.ErrFileTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, storage.ErrInvalidFileType), models.IsMediaValidationError(err):
		return c.JSON(http.StatusUnsupportedMediaType, response.ErrInvalidFileType)
	case errors.As(err, &lookup):
		log.Error("file store lookup failed", slog.String("ref", lookup.Ref), sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrStorageUnavailable)
	default:
		log.Error("request failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}
}

func (r *Routers) galleryResponse(g *models.LoadedGallery) dto.GalleryResponse {
	images := make([]*dto.MediaResponse, 0, len(g.Files))
	for i := range g.Files {
		images = append(images, r.mediaResponse(&g.Files[i]))
	}

	return dto.GalleryResponse{
		ID:        g.ID,
		Slug:      g.Slug,
		Title:     g.Title,
		Comment:   g.Comment,
		Private:   g.Private,
		Images:    images,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func (r *Routers) mediaResponse(m *models.Media) *dto.MediaResponse {
	if m == nil {
		return nil
	}
	return dto.NewMediaResponse(m, r.MediaService.URL(m))
}
