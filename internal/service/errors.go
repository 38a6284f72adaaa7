package service

import "errors"

// Классы ошибок операций. Конкретная ошибка оборачивает один из них:
// fmt.Errorf("%w: slot is not swappable", ErrConflict)
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnavailable      = errors.New("unavailable")
)

// Причины ErrValidation для названия слота
var (
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTooLong  = errors.New("title is too long")
)

// requireCaller проверяет, что вызывающий пользователь известен
func requireCaller(callerID int64) error {
	if callerID <= 0 {
		return ErrUnauthorized
	}
	return nil
}
