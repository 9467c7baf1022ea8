package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdGenerator_Sequential(t *testing.T) {
	ids := NewIdGenerator()
	assert.Equal(t, uint16(1), ids.Next())
	assert.Equal(t, uint16(2), ids.Next())
	assert.Equal(t, uint16(3), ids.Next())
}

func TestIdGenerator_SkipsZero(t *testing.T) {
	ids := NewIdGeneratorFrom(65534)
	assert.Equal(t, uint16(65535), ids.Next())
	assert.Equal(t, uint16(1), ids.Next())

	for i := 0; i < 3*65536; i++ {
		if ids.Next() == 0 {
			assert.FailNow(t, "Generated the reserved id")
		}
	}
}

func TestIdGenerator_Concurrent(t *testing.T) {
	ids := NewIdGenerator()

	var lock sync.Mutex
	seen := make(map[uint16]struct{})

	var wait sync.WaitGroup
	for i := 0; i < 100; i++ {
		wait.Add(1)
		go func() {
			defer wait.Done()
			for i := 0; i < 100; i++ {
				id := ids.Next()
				lock.Lock()
				seen[id] = struct{}{}
				lock.Unlock()
			}
		}()
	}
	wait.Wait()

	assert.Equal(t, 10000, len(seen))
	_, zero := seen[0]
	assert.False(t, zero)
}
