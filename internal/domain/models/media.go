package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Metadata map[string]interface{}

// Media представляет файл изображения в системе
type Media struct {
	ID               uuid.UUID `json:"id" db:"id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	StoragePath      string    `json:"storage_path" db:"storage_path"`
	FileSize         int64     `json:"file_size" db:"file_size"`
	MimeType         string    `json:"mime_type,omitempty" db:"mime_type"`
	Width            *int      `json:"width,omitempty" db:"width"`
	Height           *int      `json:"height,omitempty" db:"height"`
	Metadata         Metadata  `json:"metadata,omitempty" db:"metadata"`
}

// Value реализует интерфейс driver.Valuer для сериализации Metadata в JSONB
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB в Metadata
func (m *Metadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata type %T", value)
	}
}

// NewMedia создает новый экземпляр Media с заполненными обязательными полями
func NewMedia(filename, path string, size int64) *Media {
	return &Media{
		ID:               uuid.New(),
		CreatedAt:        time.Now().UTC(),
		OriginalFilename: filename,
		StoragePath:      path,
		FileSize:         size,
		Metadata:         make(Metadata),
	}
}

// Validate проверяет корректность данных файла изображения
func (m *Media) Validate() error {
	var validationErrors []string

	if m.OriginalFilename == "" {
		validationErrors = append(validationErrors, "original filename is required")
	}
	if len(m.OriginalFilename) > 255 {
		validationErrors = append(validationErrors, "original filename must be 255 characters or less")
	}
	if m.StoragePath == "" {
		validationErrors = append(validationErrors, "storage path is required")
	}
	if m.FileSize <= 0 {
		validationErrors = append(validationErrors, "file size must be positive")
	}

	if m.MimeType != "" && !strings.HasPrefix(m.MimeType, "image/") {
		validationErrors = append(validationErrors,
			fmt.Sprintf("invalid mime type '%s', only images are accepted", m.MimeType))
	}
	if len(m.MimeType) > 100 {
		validationErrors = append(validationErrors, "mime type must be 100 characters or less")
	}

	if (m.Width != nil && *m.Width <= 0) || (m.Height != nil && *m.Height <= 0) {
		validationErrors = append(validationErrors, "width and height must be positive values")
	}

	if m.Metadata != nil {
		if raw, err := json.Marshal(m.Metadata); err == nil {
			if len(raw) > 1*1024*1024 { // 1MB
				validationErrors = append(validationErrors, "metadata too large (max 1MB)")
			}
		} else {
			validationErrors = append(validationErrors,
				fmt.Sprintf("invalid metadata format: %v", err))
		}
	}

	if len(validationErrors) > 0 {
		return &MediaValidationError{
			Errors: validationErrors,
		}
	}

	return nil
}

// MediaValidationError кастомный тип ошибки для валидации
type MediaValidationError struct {
	Errors []string
}

func (e *MediaValidationError) Error() string {
	return fmt.Sprintf("media validation failed: %s", strings.Join(e.Errors, "; "))
}

// IsMediaValidationError проверяет, является ли ошибка ошибкой валидации
func IsMediaValidationError(err error) bool {
	var target *MediaValidationError
	return errors.As(err, &target)
}
