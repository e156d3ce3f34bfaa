package utils

import (
	"sync"
)

// KeyedMutex выдает отдельный мьютекс на каждый ключ. Используется для
// сериализации операций по одному счету: разные счета работают параллельно,
// операции над одним счетом — строго по очереди. Мьютексы не освобождаются;
// их количество ограничено числом счетов.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewKeyedMutex создает новый KeyedMutex
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[uint]*sync.Mutex),
	}
}

func (km *KeyedMutex) get(key uint) *sync.Mutex {
	km.mu.Lock()
	defer km.mu.Unlock()

	m, ok := km.locks[key]
	if !ok {
		m = &sync.Mutex{}
		km.locks[key] = m
	}
	return m
}

// Lock захватывает мьютекс ключа
func (km *KeyedMutex) Lock(key uint) {
	km.get(key).Lock()
}

// Unlock освобождает мьютекс ключа
func (km *KeyedMutex) Unlock(key uint) {
	km.get(key).Unlock()
}
