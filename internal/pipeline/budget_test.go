package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudget_Caps(t *testing.T) {
	b := NewBudget(2, 1, 0)

	assert.True(t, b.AllowSearch())
	assert.True(t, b.AllowSearch())
	assert.False(t, b.AllowSearch())

	assert.True(t, b.AllowFetch())
	assert.False(t, b.AllowFetch())

	// Zero cap means unlimited.
	for i := 0; i < 100; i++ {
		assert.True(t, b.AllowEnrich())
	}

	searches, fetches, enriches := b.Snapshot()
	assert.Equal(t, 2, searches)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, 100, enriches)
}

func TestBudget_ConcurrentAccess(t *testing.T) {
	b := NewBudget(0, 50, 0)

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- b.AllowFetch()
		}()
	}
	wg.Wait()
	close(allowed)

	granted := 0
	for ok := range allowed {
		if ok {
			granted++
		}
	}
	assert.Equal(t, 50, granted)

	_, fetches, _ := b.Snapshot()
	assert.Equal(t, 50, fetches)
}
