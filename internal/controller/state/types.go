package state

import "context"

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Создание слота
	StateNewSlotTitle UserState = "new_slot_title"
	StateNewSlotStart UserState = "new_slot_start"
	StateNewSlotEnd   UserState = "new_slot_end"

	// Редактирование слота
	StateEditSlotTitle UserState = "edit_slot_title"
	StateEditSlotTime  UserState = "edit_slot_time"
)

// Ключи временных данных диалога
const (
	KeySlotID    = "slot_id"
	KeyTitle     = "title"
	KeyStart     = "start"
	KeyWantedID  = "wanted_slot_id"
	KeyMessageID = "message_id"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]string
}

// Store - хранилище состояний диалогов. Ошибки бэкенда логируются внутри,
// при сбое пользователь считается вне диалога.
type Store interface {
	GetState(ctx context.Context, telegramID int64) UserState
	SetState(ctx context.Context, telegramID int64, state UserState)
	GetData(ctx context.Context, telegramID int64, key string) (string, bool)
	SetData(ctx context.Context, telegramID int64, key, value string)
	GetAllData(ctx context.Context, telegramID int64) map[string]string
	ClearState(ctx context.Context, telegramID int64)
}
