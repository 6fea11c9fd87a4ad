package models

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError описывает нарушение ограничения одного поля
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
	Value string `json:"value,omitempty"`
}

// ValidationError входные данные нарушают ограничения полей.
// Возвращается до любой записи в хранилище.
type ValidationError struct {
	Errors []FieldError
}

func NewValidationError(param, msg string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Param: param, Msg: msg}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Param, fe.Msg))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Has сообщает, есть ли ошибка для указанного поля
func (e *ValidationError) Has(param string) bool {
	for _, fe := range e.Errors {
		if fe.Param == param {
			return true
		}
	}
	return false
}

// IsValidationError проверяет, является ли ошибка ошибкой валидации
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// LookupError сбой обращения к файловому хранилищу, отличный от "не найдено"
type LookupError struct {
	Ref string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup of file %q failed: %v", e.Ref, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// CascadeDeleteError часть файлов галереи не удалось удалить
type CascadeDeleteError struct {
	Refs []string
	Errs []error
}

func (e *CascadeDeleteError) Error() string {
	return fmt.Sprintf("failed to delete %d file(s): %s", len(e.Refs), strings.Join(e.Refs, ", "))
}

func (e *CascadeDeleteError) Unwrap() []error {
	return e.Errs
}

// Add регистрирует неудачное удаление ссылки
func (e *CascadeDeleteError) Add(ref string, err error) {
	e.Refs = append(e.Refs, ref)
	e.Errs = append(e.Errs, err)
}

// ErrOrNil возвращает nil, если ошибок не было
func (e *CascadeDeleteError) ErrOrNil() error {
	if e == nil || len(e.Refs) == 0 {
		return nil
	}
	return e
}
