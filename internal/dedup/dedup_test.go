package dedup

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldAcceptFirstSighting(t *testing.T) {
	f := NewFilter(5 * time.Second)
	assert.True(t, f.ShouldAccept("ABC123", time.Now()))
}

func TestSuppressesWithinWindow(t *testing.T) {
	f := NewFilter(5 * time.Second)
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	require.True(t, f.Admit("ABC123", base))
	assert.False(t, f.ShouldAccept("ABC123", base.Add(1*time.Second)))
	assert.False(t, f.ShouldAccept("ABC123", base.Add(4999*time.Millisecond)))
	assert.True(t, f.ShouldAccept("ABC123", base.Add(5*time.Second)))
	assert.True(t, f.ShouldAccept("ABC123", base.Add(10*time.Second)))
}

func TestPlatesAreIndependent(t *testing.T) {
	f := NewFilter(5 * time.Second)
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	require.True(t, f.Admit("ABC123", base))
	assert.True(t, f.ShouldAccept("XYZ999", base.Add(time.Millisecond)))
}

func TestZeroWindowDisablesSuppression(t *testing.T) {
	f := NewFilter(0)
	at := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		assert.True(t, f.Admit("ABC123", at), "sighting %d", i)
	}
}

func TestBackwardsClockSuppresses(t *testing.T) {
	f := NewFilter(5 * time.Second)
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	require.True(t, f.Admit("ABC123", base))
	// Clock went backwards: the raw difference is negative, which is below
	// any non-negative window.
	assert.False(t, f.ShouldAccept("ABC123", base.Add(-time.Hour)))
}

func TestSeen(t *testing.T) {
	f := NewFilter(5 * time.Second)
	at := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	_, ok := f.Seen("ABC123")
	assert.False(t, ok)

	f.Mark("ABC123", at)
	got, ok := f.Seen("ABC123")
	require.True(t, ok)
	assert.Equal(t, at, got)
}

func TestEmptyPlateIsALegalKey(t *testing.T) {
	f := NewFilter(5 * time.Second)
	at := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	require.True(t, f.Admit("", at))
	assert.False(t, f.ShouldAccept("", at.Add(time.Second)))
}

func TestAdmitIsAtomicUnderConcurrency(t *testing.T) {
	f := NewFilter(5 * time.Second)
	at := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	const racers = 32
	var wg sync.WaitGroup
	accepted := make(chan struct{}, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.Admit("ABC123", at) {
				accepted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(accepted)

	count := 0
	for range accepted {
		count++
	}
	assert.Equal(t, 1, count, "exactly one racer may win the first sighting")
}
