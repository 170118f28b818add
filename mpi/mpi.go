// Package mpi implements the runtime a probe process runs under: entry
// into and exit from the job's execution context, and read-only queries
// about the process's placement in it.
//
// A probe started by the launcher finds the launcher's address in the
// MPIPROBE_ORCHESTRATOR environment variable, registers over rpc, and
// is assigned its rank, the world size and a processor name. A probe
// started directly (no launcher in the environment) becomes a singleton
// world: rank 0 of 1, placed on the local hostname.
//
// A program must begin with a call to Init and end with a call to
// Finalize. Finalize is collective: no rank returns from it until every
// rank in the job has entered it.
package mpi

import (
	"errors"
	"fmt"
	"os"

	"github.com/mihkeltiks/mpi-probe/logger"
	"github.com/mihkeltiks/mpi-probe/rpc"
)

// OrchestratorEnvVar carries the launcher's rpc address to the ranks it
// spawns.
const OrchestratorEnvVar = "MPIPROBE_ORCHESTRATOR"

// MaxProcessorNameLength bounds the processor name reported for a rank.
// Longer names are truncated once, at initialization.
const MaxProcessorNameLength = 128

// World is the process-wide execution context. All placement facts are
// fixed at Init and never change.
type World struct {
	rank          int
	size          int
	processorName string

	client    *rpc.RPCClient
	finalized bool
}

var liveWorld *World

// Init enters the execution context. It must be called at most once
// before any query, and a failure to establish the context is fatal to
// the job: the caller must not continue to query or report.
func Init() (*World, error) {
	if liveWorld != nil {
		return nil, errors.New("mpi: Init called twice")
	}

	address := os.Getenv(OrchestratorEnvVar)

	var world *World
	var err error

	if address == "" {
		world, err = initSingleton()
	} else {
		world, err = initUnderLauncher(address)
	}

	if err != nil {
		return nil, err
	}

	liveWorld = world
	return world, nil
}

func initUnderLauncher(address string) (*World, error) {
	client, err := rpc.Connect(address)
	if err != nil {
		return nil, fmt.Errorf("mpi: cannot reach launcher at %v: %w", address, err)
	}

	reply := new(rpc.RegisterReply)
	err = client.Call("NodeReporter.Register", rpc.RegisterArgs{Pid: os.Getpid()}, reply)
	if err != nil {
		client.Disconnect()
		return nil, fmt.Errorf("mpi: registration failed: %w", err)
	}

	world := &World{
		rank:          reply.Rank,
		size:          reply.WorldSize,
		processorName: truncateName(reply.ProcessorName),
		client:        client,
	}

	// from here on, log rows of this process appear in the launcher's
	// stream, tagged with the rank
	logger.SetSendRemoteLog(func(args *logger.RemoteLogArgs) error {
		return client.Call("LoggerServer.Log", args, new(int))
	}, world.rank)

	logger.Debug("registered with launcher as rank %d of %d", world.rank, world.size)

	return world, nil
}

func initSingleton() (*World, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("mpi: cannot determine hostname: %w", err)
	}

	return &World{
		rank:          0,
		size:          1,
		processorName: truncateName(hostname),
	}, nil
}

// Rank returns this process's unique zero-based index within the job,
// 0 <= rank < Size(). Stable for the lifetime of the world.
func (w *World) Rank() int {
	w.mustBeLive()
	return w.rank
}

// Size returns the number of processes participating in the job. Every
// rank observes the same value.
func (w *World) Size() int {
	w.mustBeLive()
	return w.size
}

// ProcessorName returns the name of the node this process was placed
// on, bounded by MaxProcessorNameLength, plus its length.
func (w *World) ProcessorName() (string, int) {
	w.mustBeLive()
	return w.processorName, len(w.processorName)
}

// Finalize leaves the execution context. It blocks until every rank in
// the job has entered Finalize, then releases the connection to the
// launcher. No query or second Finalize may follow it.
func (w *World) Finalize() error {
	if w.finalized {
		return errors.New("mpi: Finalize called twice")
	}

	if w.client != nil {
		err := w.client.Call("NodeReporter.Barrier", rpc.BarrierArgs{Rank: w.rank}, new(int))
		if err != nil {
			return fmt.Errorf("mpi: finalize barrier failed: %w", err)
		}

		logger.SetSendRemoteLog(nil, 0)
		w.client.Disconnect()
		w.client = nil
	}

	w.finalized = true
	liveWorld = nil
	return nil
}

func (w *World) mustBeLive() {
	if w.finalized {
		panic("mpi: world queried after Finalize")
	}
}

func truncateName(name string) string {
	if len(name) > MaxProcessorNameLength {
		return name[:MaxProcessorNameLength]
	}
	return name
}
