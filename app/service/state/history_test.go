package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func userTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text, Timestamp: time.Now()}
}

func turnTexts(turns []Turn) []string {
	texts := make([]string, len(turns))
	for i, turn := range turns {
		texts[i] = turn.Text
	}

	return texts
}

func TestContextLogEvictsOldestFirst(t *testing.T) {
	l := newContextLog(3)

	for _, text := range []string{"A", "B", "C", "D"} {
		l.append(7, userTurn(text))
	}

	require.Equal(t, []string{"B", "C", "D"}, turnTexts(l.snapshot(7)))
}

func TestContextLogNeverExceedsBound(t *testing.T) {
	l := newContextLog(5)

	for i := 0; i < 50; i++ {
		l.append(7, userTurn("msg"))
		require.LessOrEqual(t, len(l.snapshot(7)), 5)
	}

	require.Len(t, l.snapshot(7), 5)
}

func TestContextLogSnapshotUnknownIdentityIsEmpty(t *testing.T) {
	l := newContextLog(3)

	require.Empty(t, l.snapshot(42))
}

func TestContextLogSnapshotIsACopy(t *testing.T) {
	l := newContextLog(3)
	l.append(7, userTurn("original"))

	snap := l.snapshot(7)
	snap[0].Text = "mutated"

	require.Equal(t, "original", l.snapshot(7)[0].Text)
}

func TestContextLogClearIsIdempotent(t *testing.T) {
	l := newContextLog(3)
	l.append(7, userTurn("A"))

	l.clear(7)
	require.Empty(t, l.snapshot(7))
	require.Equal(t, 0, l.activeCount())

	l.clear(7)
	require.Empty(t, l.snapshot(7))
}

func TestContextLogCountsActiveIdentitiesAndTurns(t *testing.T) {
	l := newContextLog(10)
	l.append(1, userTurn("a"))
	l.append(1, userTurn("b"))
	l.append(2, userTurn("c"))

	require.Equal(t, 2, l.activeCount())
	require.Equal(t, 3, l.totalTurns())
}
