package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusBusy        SlotStatus = "BUSY"
	SlotStatusSwappable   SlotStatus = "SWAPPABLE"
	SlotStatusSwapPending SlotStatus = "SWAP_PENDING" // Заблокирован активным запросом на обмен
)

// ParseSlotStatus проверяет значение, пришедшее из хранилища или от пользователя
func ParseSlotStatus(s string) (SlotStatus, error) {
	switch st := SlotStatus(s); st {
	case SlotStatusBusy, SlotStatusSwappable, SlotStatusSwapPending:
		return st, nil
	default:
		return "", fmt.Errorf("unknown slot status %q", s)
	}
}

// Locked сообщает, что слот удерживается запросом на обмен
func (s SlotStatus) Locked() bool {
	return s == SlotStatusSwapPending
}

// Actor - кто инициирует переход состояния слота
type Actor int

const (
	ActorOwner Actor = iota
	ActorCoordinator
)

// slotTransitions - единственная таблица разрешённых переходов
var slotTransitions = map[SlotStatus]map[SlotStatus]Actor{
	SlotStatusBusy: {
		SlotStatusSwappable: ActorOwner,
	},
	SlotStatusSwappable: {
		SlotStatusBusy:        ActorOwner,
		SlotStatusSwapPending: ActorCoordinator,
	},
	SlotStatusSwapPending: {
		SlotStatusBusy:      ActorCoordinator,
		SlotStatusSwappable: ActorCoordinator,
	},
}

// CanTransition проверяет, может ли actor перевести слот из from в to.
// Переход в то же состояние разрешён владельцу для незаблокированного слота.
func CanTransition(from, to SlotStatus, actor Actor) bool {
	if from == to {
		return actor == ActorOwner && !from.Locked()
	}
	allowed, ok := slotTransitions[from][to]
	return ok && allowed == actor
}

type Slot struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Status    SlotStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Заполняется сервисами для отображения (не из БД)
	Owner *User `json:"owner,omitempty"`
}

// ErrTimeRange - интервал слота пуст или перевёрнут
var ErrTimeRange = errors.New("invalid time range")

// ValidateTimes проверяет инвариант start < end
func ValidateTimes(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrTimeRange)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s must be before end %s", ErrTimeRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

// SlotPatch - частичное изменение описательных полей слота, nil означает "без изменений"
type SlotPatch struct {
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
}

// Empty сообщает, что патч ничего не меняет
func (p SlotPatch) Empty() bool {
	return p.Title == nil && p.StartTime == nil && p.EndTime == nil
}

// Apply возвращает копию слота с применёнными полями
func (p SlotPatch) Apply(slot Slot) Slot {
	if p.Title != nil {
		slot.Title = *p.Title
	}
	if p.StartTime != nil {
		slot.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		slot.EndTime = *p.EndTime
	}
	return slot
}
