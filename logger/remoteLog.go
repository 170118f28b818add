package logger

var sendRemoteLog func(args *RemoteLogArgs) error
var selfRank int

// client

// SetSendRemoteLog redirects this process's log rows to the launcher.
// Called by the runtime once the rank is known.
func SetSendRemoteLog(sendLog func(args *RemoteLogArgs) error, rank int) {
	sendRemoteLog = sendLog
	selfRank = rank
}

func logRemotely(level LoggingLevel, message string) {
	err := sendRemoteLog(&RemoteLogArgs{
		selfRank,
		level,
		message,
	})

	if err != nil {
		panic(err)
	}
}

// server

type LoggerServer int

type RemoteLogArgs struct {
	Rank    int
	Level   LoggingLevel
	Message string
}

func (r *LoggerServer) Log(args RemoteLogArgs, reply *int) error {
	printRow(args.Level, args.Message, &args.Rank)

	return nil
}
