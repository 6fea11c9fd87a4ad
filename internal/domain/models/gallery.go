package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Gallery представляет собой модель галереи
type Gallery struct {
	ID        uuid.UUID `json:"id" db:"id"`                 // Уникальный идентификатор галереи
	Slug      string    `json:"slug" db:"slug"`             // Уникальный URL-идентификатор
	Title     string    `json:"title" db:"title"`           // Заголовок галереи
	Comment   string    `json:"comment" db:"comment"`       // Комментарий (может быть пустым)
	Private   bool      `json:"private" db:"private"`       // Скрыта из публичных списков
	Images    ImageRefs `json:"-" db:"images"`              // Ссылки на файлы, порядок задает Order
	CreatedAt time.Time `json:"created_at" db:"created_at"` // Дата создания
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // Дата последнего обновления
}

// ImageRef ссылка на запись файлового хранилища
type ImageRef struct {
	Ref   string `json:"ref"`
	Order int    `json:"order"`
}

// ImageRefs хранится в колонке JSONB
type ImageRefs []ImageRef

// Value реализует интерфейс driver.Valuer для сериализации ImageRefs в JSONB
func (r ImageRefs) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB в ImageRefs
func (r *ImageRefs) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = ImageRefs{}
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("unsupported image refs type %T", value)
	}
}

// GalleryFilter условия выборки списка галерей
type GalleryFilter struct {
	Slugs   []string
	Private *bool
}

// LoadedGallery галерея вместе с разрешенными файлами изображений
type LoadedGallery struct {
	Gallery
	Files []Media
}

// GallerySummary элемент списка галерей с превью
type GallerySummary struct {
	Gallery
	ImageCount int
	Preview    *Media
}

// GalleryPage страница списка галерей. Skip и Limit те, что реально применены.
type GalleryPage struct {
	Items []GallerySummary
	Total int
	Skip  int
	Limit int
}
