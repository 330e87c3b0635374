package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_StartsAtFixedTime(t *testing.T) {
	clock := NewFixedClock()
	assert.True(t, clock.Now().Equal(FixedTime))

	// Reading does not move time
	assert.Equal(t, clock.Now(), clock.Now())
}

func TestFixedClock_Advance(t *testing.T) {
	clock := NewFixedClock()

	clock.Advance(24 * time.Hour)
	assert.Equal(t, 16, clock.Now().Day())

	clock.Advance(-48 * time.Hour)
	assert.Equal(t, 14, clock.Now().Day())
}

func TestFixedClock_Set(t *testing.T) {
	clock := NewFixedClock()
	target := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

	clock.Set(target)
	assert.True(t, clock.Now().Equal(target))
}

func TestFixedClock_ConcurrentAccess(t *testing.T) {
	clock := NewFixedClock()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			clock.Advance(time.Minute)
		}()
		go func() {
			defer wg.Done()
			_ = clock.Now()
		}()
	}
	wg.Wait()

	assert.True(t, clock.Now().Equal(FixedTime.Add(50*time.Minute)))
}
