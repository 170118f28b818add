package nodeconnection

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(worldSize int) *Registry {
	placements := make([]string, worldSize)
	for i := range placements {
		placements[i] = "node01"
	}
	return NewRegistry(worldSize, placements)
}

func TestConcurrentRegistrationCoversAllRanks(t *testing.T) {
	const worldSize = 16
	registry := testRegistry(worldSize)

	var wg sync.WaitGroup
	ranks := make(chan int, worldSize)

	for i := 0; i < worldSize; i++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			rank, _, err := registry.register(pid)
			assert.NoError(t, err)
			ranks <- rank
		}(1000 + i)
	}
	wg.Wait()
	close(ranks)

	seen := make(map[int]bool)
	for rank := range ranks {
		assert.False(t, seen[rank], "rank %d assigned twice", rank)
		seen[rank] = true
	}
	assert.Len(t, seen, worldSize)

	assert.NoError(t, registry.VerifyCoverage())
	assert.Equal(t, worldSize, registry.RegisteredCount())
}

func TestRegistrationBeyondWorldSizeRejected(t *testing.T) {
	registry := testRegistry(2)

	_, _, err := registry.register(100)
	require.NoError(t, err)
	_, _, err = registry.register(101)
	require.NoError(t, err)

	_, _, err = registry.register(102)
	assert.Error(t, err)
}

func TestRegistrationAssignsPlacements(t *testing.T) {
	registry := NewRegistry(3, []string{"node01", "node01", "node02"})

	_, first, err := registry.register(100)
	require.NoError(t, err)
	_, second, err := registry.register(101)
	require.NoError(t, err)
	_, third, err := registry.register(102)
	require.NoError(t, err)

	assert.Equal(t, []string{"node01", "node01", "node02"}, []string{first, second, third})
}

func TestVerifyCoverageIncompleteJob(t *testing.T) {
	registry := testRegistry(4)

	registry.register(100)
	registry.register(101)

	assert.Error(t, registry.VerifyCoverage())
}

func TestBarrierReleasesOnlyWhenAllArrive(t *testing.T) {
	const worldSize = 4
	registry := testRegistry(worldSize)

	for i := 0; i < worldSize; i++ {
		_, _, err := registry.register(1000 + i)
		require.NoError(t, err)
	}

	released := make(chan int, worldSize)

	for rank := 0; rank < worldSize-1; rank++ {
		go func(rank int) {
			require.NoError(t, registry.enterBarrier(rank))
			released <- rank
		}(rank)
	}

	select {
	case rank := <-released:
		t.Fatalf("rank %d left the barrier before all ranks arrived", rank)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, registry.enterBarrier(worldSize-1))

	for i := 0; i < worldSize-1; i++ {
		select {
		case <-released:
		case <-time.After(time.Second):
			t.Fatal("barrier did not release all ranks")
		}
	}

	select {
	case <-registry.BarrierReleased():
	default:
		t.Fatal("BarrierReleased channel still open after full barrier")
	}
}

func TestBarrierUnknownRankRejected(t *testing.T) {
	registry := testRegistry(2)

	assert.Error(t, registry.enterBarrier(0))
}

func TestSingleRankBarrier(t *testing.T) {
	registry := testRegistry(1)

	_, _, err := registry.register(100)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- registry.enterBarrier(0) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("degenerate single-rank barrier did not release")
	}
}
