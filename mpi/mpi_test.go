package mpi

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihkeltiks/mpi-probe/launcher/nodeconnection"
	"github.com/mihkeltiks/mpi-probe/logger"
	"github.com/mihkeltiks/mpi-probe/rpc"
)

func initSingletonWorld(t *testing.T) *World {
	t.Helper()
	t.Setenv(OrchestratorEnvVar, "")

	world, err := Init()
	require.NoError(t, err)
	t.Cleanup(func() {
		if !world.finalized {
			world.Finalize()
		}
	})

	return world
}

func TestSingletonWorld(t *testing.T) {
	world := initSingletonWorld(t)

	hostname, err := os.Hostname()
	require.NoError(t, err)

	assert.Equal(t, 0, world.Rank())
	assert.Equal(t, 1, world.Size())

	name, length := world.ProcessorName()
	assert.Equal(t, hostname, name)
	assert.Equal(t, len(hostname), length)
}

func TestQueriesAreIdempotent(t *testing.T) {
	world := initSingletonWorld(t)

	rank := world.Rank()
	size := world.Size()
	name, length := world.ProcessorName()

	for i := 0; i < 3; i++ {
		assert.Equal(t, rank, world.Rank())
		assert.Equal(t, size, world.Size())

		againName, againLength := world.ProcessorName()
		assert.Equal(t, name, againName)
		assert.Equal(t, length, againLength)
	}
}

func TestInitTwiceRejected(t *testing.T) {
	initSingletonWorld(t)

	_, err := Init()
	assert.Error(t, err)
}

func TestFinalizeExactlyOnce(t *testing.T) {
	world := initSingletonWorld(t)

	require.NoError(t, world.Finalize())
	assert.Error(t, world.Finalize())
}

func TestQueryAfterFinalizePanics(t *testing.T) {
	world := initSingletonWorld(t)

	require.NoError(t, world.Finalize())

	assert.Panics(t, func() { world.Rank() })
	assert.Panics(t, func() { world.Size() })
	assert.Panics(t, func() { world.ProcessorName() })
}

func TestInitAfterFinalize(t *testing.T) {
	world := initSingletonWorld(t)
	require.NoError(t, world.Finalize())

	// the context can be re-acquired by a fresh world once released
	again, err := Init()
	require.NoError(t, err)
	assert.Equal(t, 0, again.Rank())
	require.NoError(t, again.Finalize())
}

func TestProcessorNameBounded(t *testing.T) {
	long := strings.Repeat("n", MaxProcessorNameLength+40)

	truncated := truncateName(long)
	assert.Len(t, truncated, MaxProcessorNameLength)

	short := truncateName("node01")
	assert.Equal(t, "node01", short)
}

// TestInitUnderLauncher drives a real registration against a real rpc
// server: this process initializes as one rank, a bare rpc client
// stands in for the second, and both enter the finalize barrier.
func TestInitUnderLauncher(t *testing.T) {
	registry := nodeconnection.NewRegistry(2, []string{"node01", "node01"})

	server, err := rpc.InitializeServer("localhost:0", func(register rpc.Registrator) {
		register(new(logger.LoggerServer))
		register(nodeconnection.NewNodeReporter(registry, nil))
	})
	require.NoError(t, err)
	defer server.Stop()

	t.Setenv(OrchestratorEnvVar, server.Addr())

	world, err := Init()
	require.NoError(t, err)

	assert.Equal(t, 0, world.Rank())
	assert.Equal(t, 2, world.Size())

	name, _ := world.ProcessorName()
	assert.Equal(t, "node01", name)

	// the peer rank
	peer, err := rpc.Connect(server.Addr())
	require.NoError(t, err)
	defer peer.Disconnect()

	peerReply := new(rpc.RegisterReply)
	require.NoError(t, peer.Call("NodeReporter.Register", rpc.RegisterArgs{Pid: os.Getpid()}, peerReply))
	assert.Equal(t, 1, peerReply.Rank)
	assert.Equal(t, 2, peerReply.WorldSize)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, peer.Call("NodeReporter.Barrier", rpc.BarrierArgs{Rank: peerReply.Rank}, new(int)))
	}()

	require.NoError(t, world.Finalize())
	wg.Wait()

	assert.NoError(t, registry.VerifyCoverage())
}
