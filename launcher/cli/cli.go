package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/mihkeltiks/mpi-probe/logger"
	"github.com/mihkeltiks/mpi-probe/utils"
)

type Options struct {
	NumProcesses int
	TargetPath   string
	HostfilePath string
	UsePty       bool
	Monitor      bool
}

// ParseArgs parses
//
//	launcher [-hostfile file] [-pty] [-monitor] <num_processes> [target]
//
// target defaults to the probe binary next to the launcher executable.
func ParseArgs() Options {
	opts := Options{}

	flag.StringVar(&opts.HostfilePath, "hostfile", "", "yaml hostfile describing the slot plan")
	flag.BoolVar(&opts.UsePty, "pty", false, "run ranks under a pseudo-terminal")
	flag.BoolVar(&opts.Monitor, "monitor", false, "serve the websocket job monitor")
	flag.Parse()

	args := flag.Args()

	if len(args) < 1 || len(args) > 2 {
		panicArgs()
	}

	numProcesses, err := strconv.Atoi(args[0])
	if err != nil || numProcesses < 1 {
		panicArgs()
	}
	opts.NumProcesses = numProcesses

	if len(args) == 2 {
		opts.TargetPath = args[1]
	} else {
		opts.TargetPath = fmt.Sprintf("%s/probe", utils.GetExecutableDir())
	}

	file, err := os.Stat(opts.TargetPath)
	utils.Must(err)
	if file.IsDir() {
		panicArgs()
	}

	return opts
}

func panicArgs() {
	logger.Error("usage: launcher [-hostfile file] [-pty] [-monitor] <num_processes> [target]")
	os.Exit(2)
}
