package rpc

// Messages exchanged between a rank and the launcher's reporter
// service. They live here so both ends share one definition.

type RegisterArgs struct {
	Pid int
}

type RegisterReply struct {
	Rank          int
	WorldSize     int
	ProcessorName string
}

type BarrierArgs struct {
	Rank int
}
