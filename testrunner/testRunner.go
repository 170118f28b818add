// Black-box check of a full job launch: runs the launcher with four
// processes against a one-host slot plan and verifies the merged
// output — four well-formed report lines, ranks 0..3 each appearing
// exactly once, the world size field equal to 4, every placement on
// node01, and a zero exit status.
package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const worldSize = 4
const hostName = "node01"

var reportLine = regexp.MustCompile(`This is Process ([ \d]\d+) out of ([ \d]\d+) running on host (\S+)`)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("usage: testrunner <launcher binary> <probe binary>")
		os.Exit(2)
	}

	launcherPath := os.Args[1]
	probePath := os.Args[2]

	hostfilePath := writeHostfile()
	defer os.Remove(hostfilePath)

	cmd := exec.Command(
		launcherPath,
		"-hostfile", hostfilePath,
		strconv.Itoa(worldSize),
		probePath,
	)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()

	fmt.Print(output.String())

	if err != nil {
		fail("launcher exited with: %v", err)
	}

	checkOutput(output.String())

	fmt.Println("ok")
}

func checkOutput(output string) {
	matches := reportLine.FindAllStringSubmatch(output, -1)

	if len(matches) != worldSize {
		fail("found %d report lines, want %d", len(matches), worldSize)
	}

	seen := make(map[int]bool)

	for _, match := range matches {
		rank := parseField(match[1])
		size := parseField(match[2])
		host := match[3]

		if rank < 0 || rank >= worldSize {
			fail("rank %d out of range", rank)
		}
		if seen[rank] {
			fail("rank %d reported twice", rank)
		}
		seen[rank] = true

		if size != worldSize {
			fail("rank %d reported world size %d, want %d", rank, size, worldSize)
		}
		if host != hostName {
			fail("rank %d reported host %v, want %v", rank, host, hostName)
		}
	}
}

func parseField(field string) int {
	value, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		fail("unparseable field %q", field)
	}
	return value
}

func writeHostfile() string {
	contents := fmt.Sprintf("hosts:\n  - name: %s\n    slots: %d\n", hostName, worldSize)

	path := filepath.Join(os.TempDir(), fmt.Sprintf("testrunner-hostfile-%d.yaml", os.Getpid()))

	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		fail("cannot write hostfile: %v", err)
	}

	return path
}

func fail(format string, args ...interface{}) {
	fmt.Printf("%vFAIL: "+format+"%v\n", append([]interface{}{"\033[31m"}, append(args, "\033[0m")...)...)
	os.Exit(1)
}
