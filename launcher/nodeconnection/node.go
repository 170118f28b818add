package nodeconnection

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mihkeltiks/mpi-probe/logger"
)

type node struct {
	rank          int
	pid           int
	processorName string
	inBarrier     bool
}

// keys - ranks
type nodeMap map[int]*node

// Registry tracks the ranks of one job as they register and reach the
// finalize barrier.
type Registry struct {
	mu         sync.Mutex
	nodes      nodeMap
	worldSize  int
	placements []string

	barrierArrived int
	barrierRelease chan struct{}
}

func NewRegistry(worldSize int, placements []string) *Registry {
	if len(placements) != worldSize {
		panic(fmt.Sprintf("placement plan covers %d ranks, want %d", len(placements), worldSize))
	}

	return &Registry{
		nodes:          make(nodeMap),
		worldSize:      worldSize,
		placements:     placements,
		barrierRelease: make(chan struct{}),
	}
}

// register assigns the next free rank to a connecting process.
func (reg *Registry) register(pid int) (rank int, processorName string, err error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rank = len(reg.nodes)
	if rank >= reg.worldSize {
		return 0, "", fmt.Errorf("job is full: %d processes already registered", reg.worldSize)
	}

	processorName = reg.placements[rank]
	reg.nodes[rank] = &node{
		rank:          rank,
		pid:           pid,
		processorName: processorName,
	}

	logger.Verbose("added process (pid %d) to the job as rank %d, placed on %v", pid, rank, processorName)

	return rank, processorName, nil
}

// enterBarrier blocks the caller until every rank of the job has
// entered. The last arrival releases all of them.
func (reg *Registry) enterBarrier(rank int) error {
	reg.mu.Lock()

	n, ok := reg.nodes[rank]
	if !ok {
		reg.mu.Unlock()
		return fmt.Errorf("rank %d not registered", rank)
	}
	if n.inBarrier {
		reg.mu.Unlock()
		return fmt.Errorf("rank %d entered the barrier twice", rank)
	}

	n.inBarrier = true
	reg.barrierArrived++

	if reg.barrierArrived == reg.worldSize {
		close(reg.barrierRelease)
	}

	reg.mu.Unlock()

	<-reg.barrierRelease
	return nil
}

// BarrierReleased closes when all ranks have entered the finalize
// barrier.
func (reg *Registry) BarrierReleased() <-chan struct{} {
	return reg.barrierRelease
}

func (reg *Registry) WorldSize() int {
	return reg.worldSize
}

func (reg *Registry) RegisteredCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.nodes)
}

func (reg *Registry) RegisteredRanks() []int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	ranks := make([]int, 0, len(reg.nodes))
	for rank := range reg.nodes {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)
	return ranks
}

// VerifyCoverage checks the invariant of a completed job: the set of
// registered ranks is exactly {0 .. worldSize-1}.
func (reg *Registry) VerifyCoverage() error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if len(reg.nodes) != reg.worldSize {
		return fmt.Errorf("%d processes registered, want %d", len(reg.nodes), reg.worldSize)
	}

	for rank := 0; rank < reg.worldSize; rank++ {
		if _, ok := reg.nodes[rank]; !ok {
			return fmt.Errorf("no process registered as rank %d", rank)
		}
	}

	return nil
}
