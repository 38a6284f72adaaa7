package state

import (
	"context"
	"sync"
)

// Manager хранит состояния в памяти процесса
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData // telegramID -> UserData
}

var _ Store = (*Manager)(nil)

// NewManager создаёт новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		states: make(map[int64]*UserData),
	}
}

func (sm *Manager) GetState(_ context.Context, telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		return userData.State
	}
	return StateNone
}

// SetState устанавливает состояние. StateNone удаляет запись вместе с данными.
func (sm *Manager) SetState(_ context.Context, telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.states, telegramID)
		return
	}

	sm.entry(telegramID).State = state
}

func (sm *Manager) GetData(_ context.Context, telegramID int64, key string) (string, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		value, ok := userData.Data[key]
		return value, ok
	}
	return "", false
}

func (sm *Manager) SetData(_ context.Context, telegramID int64, key, value string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.entry(telegramID).Data[key] = value
}

// GetAllData возвращает копию данных диалога
func (sm *Manager) GetAllData(_ context.Context, telegramID int64) map[string]string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	result := make(map[string]string)
	if userData, exists := sm.states[telegramID]; exists {
		for k, v := range userData.Data {
			result[k] = v
		}
	}
	return result
}

func (sm *Manager) ClearState(_ context.Context, telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// entry вызывается под mu
func (sm *Manager) entry(telegramID int64) *UserData {
	userData, exists := sm.states[telegramID]
	if !exists {
		userData = &UserData{State: StateNone, Data: make(map[string]string)}
		sm.states[telegramID] = userData
	}
	return userData
}
