// Package hostfile describes the slot plan of a job: which node each
// rank is placed on.
package hostfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Host struct {
	Name  string `yaml:"name"`
	Slots int    `yaml:"slots"`
}

type Hostfile struct {
	Hosts []Host `yaml:"hosts"`
}

// Parse reads a yaml hostfile:
//
//	hosts:
//	  - name: node01
//	    slots: 4
//	  - name: node02
//	    slots: 4
//
// A missing slot count means one slot.
func Parse(path string) (*Hostfile, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	hostfile := new(Hostfile)
	if err := yaml.Unmarshal(contents, hostfile); err != nil {
		return nil, fmt.Errorf("hostfile %v: %w", path, err)
	}

	if len(hostfile.Hosts) == 0 {
		return nil, fmt.Errorf("hostfile %v: no hosts listed", path)
	}

	for i, host := range hostfile.Hosts {
		if host.Name == "" {
			return nil, fmt.Errorf("hostfile %v: host %d has no name", path, i)
		}
		if host.Slots < 0 {
			return nil, fmt.Errorf("hostfile %v: host %v: negative slot count", path, host.Name)
		}
		if host.Slots == 0 {
			hostfile.Hosts[i].Slots = 1
		}
	}

	return hostfile, nil
}

// Local returns the plan used when no hostfile is given: every rank on
// the local machine.
func Local() (*Hostfile, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	return &Hostfile{Hosts: []Host{{Name: hostname, Slots: 1}}}, nil
}

// Placements expands the slot plan into one processor name per rank,
// filling each host's slots in order and wrapping around when the job
// is larger than the plan.
func (h *Hostfile) Placements(numProcesses int) []string {
	placements := make([]string, 0, numProcesses)

	for len(placements) < numProcesses {
		for _, host := range h.Hosts {
			for slot := 0; slot < host.Slots; slot++ {
				if len(placements) == numProcesses {
					return placements
				}
				placements = append(placements, host.Name)
			}
		}
	}

	return placements
}

// TotalSlots reports the slot count of one full pass over the plan.
func (h *Hostfile) TotalSlots() int {
	total := 0
	for _, host := range h.Hosts {
		total += host.Slots
	}
	return total
}
