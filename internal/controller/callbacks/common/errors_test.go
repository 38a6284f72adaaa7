package common

import (
	"fmt"
	"testing"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessageValidationCauses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"time range", fmt.Errorf("%w: %w", service.ErrValidation, model.ErrTimeRange), "Окончание должно быть позже начала"},
		{"empty title", fmt.Errorf("%w: %w", service.ErrValidation, service.ErrTitleRequired), "Название не может быть пустым"},
		{"long title", fmt.Errorf("%w: %w", service.ErrValidation, service.ErrTitleTooLong), "Максимум 200 символов"},
		{"other validation", fmt.Errorf("%w: nothing to update", service.ErrValidation), "Неверные данные"},
		{"storage", fmt.Errorf("%w: commit transaction", service.ErrUnavailable), "временно недоступен"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, ErrorMessage(tt.err), tt.want)
		})
	}

	assert.NotContains(t, ErrorMessage(fmt.Errorf("%w: %w", service.ErrValidation, service.ErrTitleRequired)), "Окончание")
}
