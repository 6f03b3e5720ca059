package keylock_test

import (
	"sync"
	"testing"

	"waterline/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	locks := keylock.New()
	counter := 0

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("fulfiller-1")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.Len())
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	locks := keylock.New()

	unlockA := locks.Lock("a")
	unlockB := locks.Lock("b")
	assert.Equal(t, 2, locks.Len())

	unlockA()
	unlockA()
	unlockB()

	assert.Zero(t, locks.Len())
}
