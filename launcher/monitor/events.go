package monitor

import (
	"github.com/mihkeltiks/mpi-probe/launcher/nodeconnection"
)

type MessageType string

const (
	NodeRegistered MessageType = "nodeRegistered"
	BarrierReached MessageType = "barrierReached"
	JobComplete    MessageType = "jobComplete"
)

type NodeRegisteredMessage struct {
	Type          MessageType
	Rank          int
	Pid           int
	ProcessorName string
}

type BarrierReachedMessage struct {
	Type MessageType
	Rank int
}

type JobCompleteMessage struct {
	Type      MessageType
	WorldSize int
	Ranks     []int
	Success   bool
}

// Relay forwards registry events onto the websocket until the channel
// closes.
func Relay(events <-chan nodeconnection.Event) {
	for event := range events {
		switch event.Type {
		case nodeconnection.NodeRegistered:
			SendMessage(NodeRegisteredMessage{
				Type:          NodeRegistered,
				Rank:          event.Rank,
				Pid:           event.Pid,
				ProcessorName: event.ProcessorName,
			})
		case nodeconnection.BarrierReleased:
			SendMessage(BarrierReachedMessage{
				Type: BarrierReached,
				Rank: event.Rank,
			})
		}
	}
}

func SendJobCompleteMessage(worldSize int, ranks []int, success bool) {
	SendMessage(JobCompleteMessage{
		Type:      JobComplete,
		WorldSize: worldSize,
		Ranks:     ranks,
		Success:   success,
	})
}
