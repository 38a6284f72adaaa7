package common

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/google/uuid"
)

// Callback data. Telegram ограничивает её 64 байтами, поэтому в кнопку
// кладётся не больше одного UUID.
const (
	CbMySlots  = "myslots"
	CbNewSlot  = "new_slot"
	CbMarket   = "market"
	CbIncoming = "incoming"
	CbOutgoing = "outgoing"
	CbNoop     = "noop"

	PrefixSlot      = "slot:"
	PrefixStatus    = "status:" // status:<id>:<STATUS>
	PrefixEditTitle = "edit_title:"
	PrefixEditTime  = "edit_time:"
	PrefixDelete    = "delete:"
	PrefixDeleteYes = "delete_yes:"
	PrefixWant      = "want:"
	PrefixOffer     = "offer:"
	PrefixRequest   = "req:"
	PrefixAccept    = "accept:"
	PrefixReject    = "reject:"
)

// Data собирает callback data из префикса и идентификатора
func Data(prefix string, id uuid.UUID) string {
	return prefix + id.String()
}

// StatusData собирает callback смены статуса слота
func StatusData(id uuid.UUID, status model.SlotStatus) string {
	return fmt.Sprintf("%s%s:%s", PrefixStatus, id, status)
}

// ParseUUID извлекает идентификатор из callback data
// Например: "slot:6f1c...e2" -> 6f1c...e2
func ParseUUID(data, prefix string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return uuid.Nil, ErrInvalidFormat
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return id, nil
}

// ParseStatusData разбирает "status:<id>:<STATUS>"
func ParseStatusData(data string) (uuid.UUID, model.SlotStatus, error) {
	raw, ok := strings.CutPrefix(data, PrefixStatus)
	if !ok {
		return uuid.Nil, "", ErrInvalidFormat
	}
	idText, statusText, ok := strings.Cut(raw, ":")
	if !ok {
		return uuid.Nil, "", ErrInvalidFormat
	}
	id, err := uuid.Parse(idText)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	status, err := model.ParseSlotStatus(statusText)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return id, status, nil
}
