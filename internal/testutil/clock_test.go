package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWallClock_AdvanceAndSet(t *testing.T) {
	start := time.UnixMilli(1_000)
	c := NewWallClock(start)
	assert.True(t, c.Now().Equal(start))

	got := c.Advance(90 * time.Second)
	assert.Equal(t, int64(91_000), got.UnixMilli())
	assert.Equal(t, int64(91_000), c.Now().UnixMilli())

	c.Set(start)
	assert.True(t, c.Now().Equal(start))
}

func TestWallClock_ThreadSafe(t *testing.T) {
	c := NewWallClock(time.Unix(0, 0))
	const goroutines = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Advance(time.Second)
			_ = c.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines), c.Now().Unix())
}
