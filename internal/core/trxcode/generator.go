// Package trxcode generates transaction codes for ledger operations.
//
// Format: TRX-{IN|OUT}-{yyyyMMdd-HHmmss}-{3-digit-random}.
// The timestamp plus random suffix makes collisions rare but not impossible;
// the generator takes an existence check and retries a few times before
// giving up.
package trxcode

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Direction tags the code with the movement direction.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// ExistsFunc reports whether a code is already present in the movement log.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

const maxAttempts = 5

// Generator produces transaction codes. The zero value is not usable;
// construct with New.
type Generator struct {
	now func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a generator using the system clock.
func New() *Generator {
	return NewWithClock(time.Now)
}

// NewWithClock creates a generator with an injected clock. Used by tests.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{
		now: now,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns a fresh code for the given direction without collision checking.
func (g *Generator) Next(direction Direction) string {
	g.mu.Lock()
	suffix := 100 + g.rnd.Intn(900)
	g.mu.Unlock()

	return fmt.Sprintf("TRX-%s-%s-%03d", direction, g.now().Format("20060102-150405"), suffix)
}

// NextUnique returns a code that the exists check does not know yet,
// retrying with a new random suffix on collision.
func (g *Generator) NextUnique(ctx context.Context, direction Direction, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := g.Next(direction)
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check trx code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate unique trx code after %d attempts", maxAttempts)
}
