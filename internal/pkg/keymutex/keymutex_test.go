package keymutex_test

import (
	"sync"
	"testing"

	"visa-processing/internal/pkg/keymutex"

	"github.com/stretchr/testify/assert"
)

func TestKeyMutex_SerializesSameKey(t *testing.T) {
	km := keymutex.New()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("app-1")
			defer km.Unlock("app-1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyMutex_IndependentKeys(t *testing.T) {
	km := keymutex.New()

	km.Lock("a")

	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()

	// Key "b" must not wait on key "a".
	<-done
	km.Unlock("a")
}

func TestKeyMutex_ReusableAfterUnlock(t *testing.T) {
	km := keymutex.New()

	for i := 0; i < 3; i++ {
		km.Lock("x")
		km.Unlock("x")
	}
}

func TestKeyMutex_UnlockWithoutLockPanics(t *testing.T) {
	km := keymutex.New()

	assert.Panics(t, func() {
		km.Unlock("never-locked")
	})
}
