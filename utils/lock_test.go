package utils

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := NewKeyedMutex()

	// Конкурентные инкременты под мьютексом одного ключа не теряются
	const workers = 100
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock(1)
			counter++
			km.Unlock(1)
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter under keyed mutex: got %d want %d", counter, workers)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	// Захват одного ключа не блокирует другой
	km.Lock(1)
	done := make(chan struct{})
	go func() {
		km.Lock(2)
		km.Unlock(2)
		close(done)
	}()
	<-done
	km.Unlock(1)
}
