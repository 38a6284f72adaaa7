package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "PENDING"  // Ожидает ответа получателя
	SwapStatusAccepted SwapStatus = "ACCEPTED" // Слоты обменяны
	SwapStatusRejected SwapStatus = "REJECTED" // Отклонён или отменён автоматически
)

func ParseSwapStatus(s string) (SwapStatus, error) {
	switch st := SwapStatus(s); st {
	case SwapStatusPending, SwapStatusAccepted, SwapStatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("unknown swap status %q", s)
	}
}

// Terminal сообщает, что запрос уже разрешён и больше не меняется
func (s SwapStatus) Terminal() bool {
	return s == SwapStatusAccepted || s == SwapStatusRejected
}

type SwapRequest struct {
	ID              uuid.UUID  `json:"id"`
	RequesterID     int64      `json:"requester_id"`
	ReceiverID      int64      `json:"receiver_id"`
	OfferedSlotID   uuid.UUID  `json:"offered_slot_id"`
	RequestedSlotID uuid.UUID  `json:"requested_slot_id"`
	Status          SwapStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	OfferedSlot   *Slot `json:"offered_slot,omitempty"`
	RequestedSlot *Slot `json:"requested_slot,omitempty"`
	Requester     *User `json:"requester,omitempty"`
	Receiver      *User `json:"receiver,omitempty"`
}

// References сообщает, ссылается ли запрос на слот
func (r *SwapRequest) References(slotID uuid.UUID) bool {
	return r.OfferedSlotID == slotID || r.RequestedSlotID == slotID
}
