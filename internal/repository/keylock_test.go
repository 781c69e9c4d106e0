package repository

import (
	"sync"
	"testing"
)

func TestKeyMutexSerializesSameKey(t *testing.T) {
	m := NewKeyMutex()
	const workers = 50

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("u:1:userProfile")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

func TestKeyMutexIndependentKeysDoNotBlock(t *testing.T) {
	m := NewKeyMutex()

	unlockA := m.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := m.Lock("b")
		unlockB()
		close(done)
	}()

	// 持有 a 的锁时，b 的锁必须立即可得
	<-done
	unlockA()
}

func TestKeyMutexReclaimsEntries(t *testing.T) {
	m := NewKeyMutex()

	for i := 0; i < 100; i++ {
		unlock := m.Lock("transient")
		unlock()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.locks) != 0 {
		t.Errorf("lock table = %d entries after release, want 0", len(m.locks))
	}
}
