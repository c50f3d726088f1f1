package state

import (
	"sync"
)

// Manager хранит состояние диалога по chatID
type Manager struct {
	mu    sync.RWMutex
	chats map[int64]*ChatData
}

// NewManager создаёт новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		chats: make(map[int64]*ChatData),
	}
}

// GetState получает текущий шаг диалога
func (sm *Manager) GetState(chatID int64) DialogState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if chat, exists := sm.chats[chatID]; exists {
		return chat.State
	}
	return StateNone
}

// SetState устанавливает шаг диалога, данные чата сохраняются
func (sm *Manager) SetState(chatID int64, state DialogState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.chatLocked(chatID).State = state
}

// GetData получает значение по ключу
func (sm *Manager) GetData(chatID int64, key string) (string, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if chat, exists := sm.chats[chatID]; exists {
		value, ok := chat.Data[key]
		return value, ok
	}
	return "", false
}

// SetData сохраняет значение по ключу
func (sm *Manager) SetData(chatID int64, key, value string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.chatLocked(chatID).Data[key] = value
}

// Patient телефон и имя пациента, если знакомство завершено
func (sm *Manager) Patient(chatID int64) (phone, name string, ok bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	chat, exists := sm.chats[chatID]
	if !exists {
		return "", "", false
	}
	phone, name = chat.Data[KeyPhone], chat.Data[KeyName]
	return phone, name, phone != "" && name != ""
}

// ClearState забывает чат целиком
func (sm *Manager) ClearState(chatID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.chats, chatID)
}

func (sm *Manager) chatLocked(chatID int64) *ChatData {
	chat, exists := sm.chats[chatID]
	if !exists {
		chat = &ChatData{Data: make(map[string]string)}
		sm.chats[chatID] = chat
	}
	return chat
}
