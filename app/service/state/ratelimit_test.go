package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateWindowAdmitsUpToMax(t *testing.T) {
	w := newRateWindow(time.Minute, 3)
	now := time.Now()

	require.True(t, w.admit(1, now))
	require.True(t, w.admit(1, now.Add(time.Second)))
	require.True(t, w.admit(1, now.Add(2*time.Second)))
	require.False(t, w.admit(1, now.Add(3*time.Second)))
}

func TestRateWindowRejectionRecordsNothing(t *testing.T) {
	w := newRateWindow(time.Minute, 1)
	now := time.Now()

	require.True(t, w.admit(1, now))
	require.False(t, w.admit(1, now.Add(time.Second)))
	require.False(t, w.admit(1, now.Add(2*time.Second)))
	require.Equal(t, 1, w.count(1))
}

func TestRateWindowRollsPastOldEntries(t *testing.T) {
	w := newRateWindow(60*time.Second, 2)
	base := time.Now()

	require.True(t, w.admit(1, base))
	require.True(t, w.admit(1, base.Add(1*time.Second)))
	require.False(t, w.admit(1, base.Add(2*time.Second)))

	// Both earlier admissions fall outside the window by t=61.
	require.True(t, w.admit(1, base.Add(61*time.Second)))
}

func TestRateWindowRetainsOnlyInWindowTimestamps(t *testing.T) {
	w := newRateWindow(10*time.Second, 100)
	base := time.Now()

	for i := 0; i < 20; i++ {
		require.True(t, w.admit(1, base.Add(time.Duration(i)*time.Second)))
	}

	// Last admit was at t=19; only t>9 survives the prune: 10..19.
	require.Equal(t, 10, w.count(1))
}

func TestRateWindowIdentitiesAreIndependent(t *testing.T) {
	w := newRateWindow(time.Minute, 1)
	now := time.Now()

	require.True(t, w.admit(1, now))
	require.False(t, w.admit(1, now))
	require.True(t, w.admit(2, now))
}
