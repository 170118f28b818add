package nodeconnection

import (
	"github.com/mihkeltiks/mpi-probe/rpc"
)

type EventType string

const (
	NodeRegistered  EventType = "nodeRegistered"
	BarrierReleased EventType = "barrierReleased"
)

type Event struct {
	Type          EventType
	Rank          int
	Pid           int
	ProcessorName string
}

// NodeReporter is the rpc service ranks report to.
type NodeReporter struct {
	registry *Registry
	events   chan<- Event
}

func NewNodeReporter(registry *Registry, events chan<- Event) *NodeReporter {
	return &NodeReporter{registry, events}
}

func (r *NodeReporter) Register(args rpc.RegisterArgs, reply *rpc.RegisterReply) error {
	rank, processorName, err := r.registry.register(args.Pid)
	if err != nil {
		return err
	}

	reply.Rank = rank
	reply.WorldSize = r.registry.WorldSize()
	reply.ProcessorName = processorName

	r.emit(Event{Type: NodeRegistered, Rank: rank, Pid: args.Pid, ProcessorName: processorName})

	return nil
}

func (r *NodeReporter) Barrier(args rpc.BarrierArgs, reply *int) error {
	err := r.registry.enterBarrier(args.Rank)
	if err != nil {
		return err
	}

	r.emit(Event{Type: BarrierReleased, Rank: args.Rank})
	return nil
}

func (r *NodeReporter) emit(event Event) {
	if r.events == nil {
		return
	}

	// lifecycle events are best-effort; a slow consumer must not
	// stall registration
	select {
	case r.events <- event:
	default:
	}
}
