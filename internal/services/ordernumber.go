// internal/services/ordernumber.go
package services

import (
	"fmt"
	"sync"
	"time"
)

// OrderNumberGenerator issues "ORD-<epoch-millis>" identifiers. Two
// submissions landing in the same millisecond still get distinct numbers: the
// generator never reuses or goes below the last issued value, bumping by one
// millisecond when the clock has not advanced.
type OrderNumberGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewOrderNumberGenerator() *OrderNumberGenerator {
	return &OrderNumberGenerator{now: time.Now}
}

func (g *OrderNumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	millis := g.now().UnixMilli()
	if millis <= g.last {
		millis = g.last + 1
	}
	g.last = millis

	return fmt.Sprintf("ORD-%d", millis)
}
