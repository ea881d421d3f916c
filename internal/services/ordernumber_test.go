// internal/services/ordernumber_test.go
package services

import (
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderNumberFormat(t *testing.T) {
	gen := NewOrderNumberGenerator()
	gen.now = func() time.Time { return time.UnixMilli(1700000000000) }

	assert.Equal(t, "ORD-1700000000000", gen.Next())
}

// A frozen clock forces every call into the same millisecond; the generator
// must still hand out strictly increasing numbers.
func TestOrderNumberSameMillisecond(t *testing.T) {
	gen := NewOrderNumberGenerator()
	gen.now = func() time.Time { return time.UnixMilli(1700000000000) }

	assert.Equal(t, "ORD-1700000000000", gen.Next())
	assert.Equal(t, "ORD-1700000000001", gen.Next())
	assert.Equal(t, "ORD-1700000000002", gen.Next())
}

func TestOrderNumberClockGoesBackwards(t *testing.T) {
	clock := int64(1700000000500)
	gen := NewOrderNumberGenerator()
	gen.now = func() time.Time { return time.UnixMilli(clock) }

	first := gen.Next()
	clock = 1700000000100
	second := gen.Next()

	firstMillis, err := strconv.ParseInt(strings.TrimPrefix(first, "ORD-"), 10, 64)
	require.NoError(t, err)
	secondMillis, err := strconv.ParseInt(strings.TrimPrefix(second, "ORD-"), 10, 64)
	require.NoError(t, err)

	assert.Greater(t, secondMillis, firstMillis)
}

func TestOrderNumberConcurrentUnique(t *testing.T) {
	const calls = 200

	gen := NewOrderNumberGenerator()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	seen := make(map[string]bool, calls)

	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number := gen.Next()
			mu.Lock()
			seen[number] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, calls)
}
