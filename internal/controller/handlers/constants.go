package handlers

import "github.com/Freeeeeet/slot_swap_bot/internal/service"

// Ограничения ввода в диалогах
const (
	SlotTitleMaxLength = service.MaxTitleLength
)
