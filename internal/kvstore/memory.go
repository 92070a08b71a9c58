package kvstore

import (
	"context"
	"sync"
)

// Memory - потокобезопасное хранилище в памяти процесса.
// Используется как сессионное хранилище вкладки и как долговременное в режиме "memory".
type Memory struct {
	mu       sync.RWMutex
	data     map[string]string
	quota    int // максимальный суммарный размер ключей и значений в байтах, 0 - без ограничений
	size     int
	disabled bool
}

// NewMemory создает пустое хранилище без квоты.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// NewMemoryWithQuota создает хранилище, которое отказывает в записи сверх quota байт.
func NewMemoryWithQuota(quota int) *Memory {
	m := NewMemory()
	m.quota = quota
	return m
}

// Disable переводит хранилище в режим, в котором любая операция возвращает ErrUnavailable.
func (m *Memory) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = true
}

// Enable снимает режим Disable.
func (m *Memory) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = false
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.disabled {
		return "", false, ErrUnavailable
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled {
		return ErrUnavailable
	}

	next := m.size + len(key) + len(value)
	if old, ok := m.data[key]; ok {
		next -= len(key) + len(old)
	}
	if m.quota > 0 && next > m.quota {
		return ErrQuotaExceeded
	}

	m.data[key] = value
	m.size = next
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled {
		return ErrUnavailable
	}
	if old, ok := m.data[key]; ok {
		m.size -= len(key) + len(old)
		delete(m.data, key)
	}
	return nil
}

// Len возвращает количество ключей.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
