package trxcode

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
}

func TestNext_Format(t *testing.T) {
	g := NewWithClock(fixedClock)

	code := g.Next(DirectionIn)
	assert.Regexp(t, regexp.MustCompile(`^TRX-IN-20240315-093045-\d{3}$`), code)

	code = g.Next(DirectionOut)
	assert.Regexp(t, regexp.MustCompile(`^TRX-OUT-20240315-093045-\d{3}$`), code)
}

func TestNext_SuffixRange(t *testing.T) {
	g := NewWithClock(fixedClock)

	for i := 0; i < 200; i++ {
		code := g.Next(DirectionIn)
		suffix := code[len(code)-3:]
		assert.GreaterOrEqual(t, suffix, "100")
		assert.LessOrEqual(t, suffix, "999")
	}
}

func TestNextUnique_RetriesOnCollision(t *testing.T) {
	g := NewWithClock(fixedClock)

	calls := 0
	exists := func(ctx context.Context, code string) (bool, error) {
		calls++
		// First two candidates collide, third is free.
		return calls < 3, nil
	}

	code, err := g.NextUnique(context.Background(), DirectionOut, exists)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, code, "TRX-OUT-")
}

func TestNextUnique_GivesUpAfterMaxAttempts(t *testing.T) {
	g := NewWithClock(fixedClock)

	exists := func(ctx context.Context, code string) (bool, error) {
		return true, nil
	}

	_, err := g.NextUnique(context.Background(), DirectionIn, exists)
	require.Error(t, err)
}
