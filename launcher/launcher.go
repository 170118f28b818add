package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"

	"github.com/mihkeltiks/mpi-probe/hostfile"
	"github.com/mihkeltiks/mpi-probe/launcher/cli"
	"github.com/mihkeltiks/mpi-probe/launcher/monitor"
	"github.com/mihkeltiks/mpi-probe/launcher/nodeconnection"
	"github.com/mihkeltiks/mpi-probe/logger"
	"github.com/mihkeltiks/mpi-probe/mpi"
	"github.com/mihkeltiks/mpi-probe/rpc"
	"github.com/mihkeltiks/mpi-probe/utils"
)

const LAUNCHER_PORT = 3490

func main() {
	logger.SetMaxLogLevel(logger.Levels.Verbose)
	opts := cli.ParseArgs()

	placements := placementPlan(opts)
	registry := nodeconnection.NewRegistry(opts.NumProcesses, placements)

	events := make(chan nodeconnection.Event, 4*opts.NumProcesses)
	if opts.Monitor {
		monitor.InitServer()
	}
	go monitor.Relay(events)

	// rpc server for rank registration, the finalize barrier and
	// forwarded node logs
	server, err := rpc.InitializeServer(
		fmt.Sprintf("localhost:%d", LAUNCHER_PORT),
		func(register rpc.Registrator) {
			register(new(logger.LoggerServer))
			register(nodeconnection.NewNodeReporter(registry, events))
		})
	utils.Must(err)
	defer server.Stop()

	go func() {
		<-registry.BarrierReleased()
		logger.Verbose("all %d ranks reached the finalize barrier", opts.NumProcesses)
	}()

	logger.Info("executing %v as a job with %d processes", opts.TargetPath, opts.NumProcesses)

	statuses := startRanks(opts, server.Addr())

	failed := false
	for slot, err := range statuses {
		if err != nil {
			logger.Error("process in slot %d exited with: %v", slot, err)
			failed = true
		}
	}

	if err := registry.VerifyCoverage(); err != nil {
		logger.Error("rank coverage check failed: %v", err)
		failed = true
	}

	close(events)
	monitor.SendJobCompleteMessage(opts.NumProcesses, registry.RegisteredRanks(), !failed)

	if failed {
		logger.Error("job failed")
		os.Exit(1)
	}

	logger.Info("job complete: %d processes reported on their placement", opts.NumProcesses)
}

func placementPlan(opts cli.Options) []string {
	var plan *hostfile.Hostfile
	var err error

	if opts.HostfilePath != "" {
		plan, err = hostfile.Parse(opts.HostfilePath)
	} else {
		plan, err = hostfile.Local()
	}
	utils.Must(err)

	if opts.NumProcesses > plan.TotalSlots() {
		logger.Warn("oversubscribing: %d processes on %d slots", opts.NumProcesses, plan.TotalSlots())
	}

	return plan.Placements(opts.NumProcesses)
}

// startRanks spawns one target process per requested slot and waits
// for all of them. The returned slice holds one exit result per slot.
// When one process fails, the rest of the job is killed; peers may be
// blocked in the finalize barrier that will now never release.
func startRanks(opts cli.Options, serverAddress string) []error {
	var mu sync.Mutex
	var wg sync.WaitGroup

	statuses := make([]error, opts.NumProcesses)
	processes := make([]*exec.Cmd, opts.NumProcesses)

	for slot := 0; slot < opts.NumProcesses; slot++ {
		cmd := exec.Command(opts.TargetPath)
		cmd.Env = append(os.Environ(),
			fmt.Sprintf("%s=%s", mpi.OrchestratorEnvVar, serverAddress))

		if opts.UsePty {
			f, err := pty.Start(cmd)
			utils.Must(err)
			go io.Copy(os.Stdout, f)
		} else {
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			utils.Must(cmd.Start())
		}

		mu.Lock()
		processes[slot] = cmd
		mu.Unlock()

		wg.Add(1)
		go func(slot int, cmd *exec.Cmd) {
			defer wg.Done()

			err := cmd.Wait()

			mu.Lock()
			statuses[slot] = err
			mu.Unlock()

			if err != nil {
				killJob(processes, slot, &mu)
			}
		}(slot, cmd)
	}

	wg.Wait()
	return statuses
}

func killJob(processes []*exec.Cmd, failedSlot int, mu *sync.Mutex) {
	mu.Lock()
	defer mu.Unlock()

	logger.Warn("killing remaining processes after failure in slot %d", failedSlot)

	for slot, cmd := range processes {
		if slot == failedSlot || cmd == nil || cmd.Process == nil {
			continue
		}
		cmd.Process.Kill()
	}
}
