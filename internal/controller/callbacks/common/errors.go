package common

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
	ErrNoDialogData  = errors.New("dialog data not found")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, service.ErrUnauthorized):
		return "❌ Пользователь не найден. Используйте /start"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	case errors.Is(err, ErrNoDialogData):
		return "❌ Данные диалога устарели, начните заново"
	case errors.Is(err, model.ErrTimeRange):
		return "❌ Окончание должно быть позже начала."
	case errors.Is(err, service.ErrTitleRequired):
		return "❌ Название не может быть пустым."
	case errors.Is(err, service.ErrTitleTooLong):
		return fmt.Sprintf("❌ Название слишком длинное. Максимум %d символов.", service.MaxTitleLength)
	case errors.Is(err, service.ErrValidation):
		return "❌ Неверные данные: проверьте название и время"
	case errors.Is(err, service.ErrNotFound):
		return "❌ Слот или запрос не найден"
	case errors.Is(err, service.ErrForbidden):
		return "❌ У вас нет доступа к этому слоту"
	case errors.Is(err, service.ErrInvalidOperation):
		return "❌ Нельзя обменяться слотом с самим собой"
	case errors.Is(err, service.ErrConflict):
		return "⚠️ Состояние слота изменилось. Обновите список и попробуйте снова"
	case errors.Is(err, service.ErrUnavailable):
		return "❌ Сервис временно недоступен. Попробуйте позже"
	default:
		return "❌ Произошла ошибка"
	}
}
