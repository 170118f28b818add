package main

import (
	"fmt"
	"io"
)

// writeReport emits the single diagnostic line of one rank. Rank and
// world size are right-aligned in fields of at least two characters;
// the processor name is written unmodified.
func writeReport(w io.Writer, rank, worldSize int, processorName string) error {
	_, err := fmt.Fprintf(w, "This is Process %2d out of %2d running on host %s\n",
		rank, worldSize, processorName)
	return err
}
