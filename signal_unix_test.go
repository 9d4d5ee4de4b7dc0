//go:build unix

package interprocess

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSignal(t *testing.T, initial int) *signal {
	t.Helper()
	s, err := newSignal(t.TempDir(), RandomName(10), initial)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSignalCounting(t *testing.T) {
	s := testSignal(t, 2)

	// the initial count satisfies two waits without a release
	for i := 0; i < 2; i++ {
		ok, err := s.Wait(0)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := s.Wait(0)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Release())
	ok, err = s.Wait(0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignalTimedWait(t *testing.T) {
	s := testSignal(t, 0)

	start := time.Now()
	ok, err := s.Wait(30)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestSignalWakesWaiter(t *testing.T) {
	s := testSignal(t, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	var woken bool
	go func() {
		defer wg.Done()
		ok, err := s.Wait(5000)
		assert.NoError(t, err)
		woken = ok
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Release())
	wg.Wait()
	assert.True(t, woken)
}

func TestSignalInitialCountTooLarge(t *testing.T) {
	_, err := newSignal(t.TempDir(), RandomName(10), maxInitialCount+1)
	assert.ErrorIs(t, err, ErrCountTooLarge)
}

func TestSignalSharedByName(t *testing.T) {
	dir := t.TempDir()
	name := RandomName(10)

	a, err := newSignal(dir, name, 0)
	require.NoError(t, err)
	defer a.Close()
	b, err := newSignal(dir, name, 0)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Release())
	ok, err := b.Wait(0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignalUnlink(t *testing.T) {
	dir := t.TempDir()
	name := RandomName(10)

	s, err := newSignal(dir, name, 0)
	require.NoError(t, err)
	require.NoError(t, s.Unlink())
	s.Close()

	assert.Error(t, unlinkSignal(dir, name))
}
