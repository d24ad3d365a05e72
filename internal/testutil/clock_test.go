package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_Advances(t *testing.T) {
	c := NewFixedClock()

	assert.Equal(t, Epoch, c.Now())
	assert.Equal(t, Epoch.Add(time.Second), c.Now())
}

func TestFixedClock_Reset(t *testing.T) {
	c := NewFixedClock()
	c.Now()
	c.Now()

	c.Reset()
	assert.Equal(t, Epoch, c.Now())
}

func TestFixedClock_Concurrent(t *testing.T) {
	c := NewFixedClock()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, Epoch.Add(50*time.Second), c.Now())
}
