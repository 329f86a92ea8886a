package registry_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nerrf-dev/probed/internal/nerrferr"
	"github.com/nerrf-dev/probed/internal/registry"
)

func TestEntry_TakeThenTakeFails(t *testing.T) {
	e := registry.NewEntry("thing", 42)

	g1, err := e.Take()
	require.NoError(t, err)
	require.Equal(t, 42, *g1.Get())

	_, err = e.Take()
	require.True(t, errors.Is(err, nerrferr.ErrAlreadyTaken))
}

func TestGuard_CloseReturnsEntryForNextTake(t *testing.T) {
	e := registry.NewEntry("thing", 7)

	g1, err := e.Take()
	require.NoError(t, err)
	g1.Close()

	g2, err := e.Take()
	require.NoError(t, err)
	require.Equal(t, 7, *g2.Get())
}

func TestGuard_CloseIsIdempotent(t *testing.T) {
	e := registry.NewEntry("thing", 1)
	g, err := e.Take()
	require.NoError(t, err)

	g.Close()
	require.NotPanics(t, g.Close)

	_, err = e.Take()
	require.NoError(t, err)
}

func TestEntry_ConcurrentTakeHasExactlyOneWinner(t *testing.T) {
	e := registry.NewEntry("thing", 1)

	const n = 64
	var wg sync.WaitGroup
	var successes int32
	var mu sync.Mutex

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g, err := e.Take(); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				_ = g
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, successes)
}
