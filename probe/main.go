// The probe is a minimal placement diagnostic for a cluster job: every
// process reports its rank, the world size and the node it landed on,
// then leaves. Run it under the launcher to verify that one process
// starts per requested slot and that processes land where the slot plan
// says they should.
package main

import (
	"os"

	"github.com/mihkeltiks/mpi-probe/logger"
	"github.com/mihkeltiks/mpi-probe/mpi"
)

func main() {
	world, err := mpi.Init()
	if err != nil {
		logger.Error("failed to enter the job: %v", err)
		os.Exit(1)
	}

	rank := world.Rank()
	size := world.Size()
	name, _ := world.ProcessorName()

	if err := writeReport(os.Stdout, rank, size, name); err != nil {
		logger.Error("failed to write report: %v", err)
		os.Exit(1)
	}

	if err := world.Finalize(); err != nil {
		logger.Error("failed to leave the job: %v", err)
		os.Exit(1)
	}
}
