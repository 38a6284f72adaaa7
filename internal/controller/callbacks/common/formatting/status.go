package formatting

import "github.com/Freeeeeet/slot_swap_bot/internal/model"

// StatusDisplay представляет отображение статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetSlotStatusDisplay возвращает emoji и текст для статуса слота
func GetSlotStatusDisplay(status model.SlotStatus) StatusDisplay {
	displays := map[model.SlotStatus]StatusDisplay{
		model.SlotStatusBusy:        {"🔴", "Занят"},
		model.SlotStatusSwappable:   {"🔄", "Готов к обмену"},
		model.SlotStatusSwapPending: {"⏳", "Ожидает обмена"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// GetSwapStatusDisplay возвращает emoji и текст для статуса запроса на обмен
func GetSwapStatusDisplay(status model.SwapStatus) StatusDisplay {
	displays := map[model.SwapStatus]StatusDisplay{
		model.SwapStatusPending:  {"⏳", "Ожидает ответа"},
		model.SwapStatusAccepted: {"✅", "Принят"},
		model.SwapStatusRejected: {"🚫", "Отклонён"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}
