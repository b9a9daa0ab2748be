package domain_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"voice-form/internal/domain"
)

func TestCursorAdvanceClampsAtLastField(t *testing.T) {
	t.Parallel()

	c := domain.Cursor(0)
	c = c.Advance(2)
	require.Equal(t, domain.Cursor(1), c)
	c = c.Advance(2)
	require.Equal(t, domain.Cursor(1), c)
}

func TestCursorRetreatClampsAtFirstField(t *testing.T) {
	t.Parallel()

	require.Equal(t, domain.Cursor(0), domain.Cursor(0).Retreat())
	require.Equal(t, domain.Cursor(1), domain.Cursor(2).Retreat())
}

func TestCursorJumpTo(t *testing.T) {
	t.Parallel()

	fields := domain.FieldOrder{"vehicle", "damages", "theft"}
	require.Equal(t, domain.Cursor(1), domain.Cursor(0).JumpTo(fields, "DAMAGES"))
	require.Equal(t, domain.Cursor(2), domain.Cursor(2).JumpTo(fields, "nonexistent"))
}

func TestCursorClamp(t *testing.T) {
	t.Parallel()

	require.Equal(t, domain.Cursor(0), domain.Cursor(-3).Clamp(3))
	require.Equal(t, domain.Cursor(2), domain.Cursor(9).Clamp(3))
	require.Equal(t, domain.Cursor(0), domain.Cursor(4).Clamp(0))
}

func TestCursorNeverLeavesBounds(t *testing.T) {
	t.Parallel()

	fields := domain.FieldOrder{"a", "b", "c", "d"}
	rng := rand.New(rand.NewSource(42))
	c := domain.Cursor(0)
	for i := 0; i < 1000; i++ {
		switch rng.Intn(3) {
		case 0:
			c = c.Advance(len(fields))
		case 1:
			c = c.Retreat()
		case 2:
			c = c.JumpTo(fields, []string{"a", "B", "zzz", "d"}[rng.Intn(4)])
		}
		require.GreaterOrEqual(t, int(c), 0)
		require.Less(t, int(c), len(fields))
	}
}
