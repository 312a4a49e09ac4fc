// queenGT: a tool for reconstructing honeybee queen genotypes from drone sequencing data.
// Copyright (c) 2023-2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/queengt/blob/master/LICENSE.txt>.

// Package pedigree reads drone-to-queen pedigree lists.
package pedigree

import (
	"bufio"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// A Pedigree groups haploid drones by the queen that laid them. Queens
// keep the order of their first mention in the list; the drones of a
// queen keep their list order.
type Pedigree struct {
	queens []string
	drones map[string][]string
}

// Parse reads a pedigree list. Every non-blank line names one drone and
// the queen it descends from, as the first two whitespace-separated
// tokens; further tokens on a line are ignored. Lines with fewer than two
// tokens are diagnosed with a warning and skipped.
func Parse(reader io.Reader) (*Pedigree, error) {
	ped := &Pedigree{drones: make(map[string][]string)}
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) < 2 {
			log.Warnf("Skipping malformed pedigree line, expected drone and queen: %v", line)
			continue
		}
		drone, queen := tokens[0], tokens[1]
		if _, ok := ped.drones[queen]; !ok {
			ped.queens = append(ped.queens, queen)
		}
		ped.drones[queen] = append(ped.drones[queen], drone)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ped, nil
}

// FromFile reads a pedigree list from the file at path.
func FromFile(path string) (ped *Pedigree, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		nerr := file.Close()
		if err == nil {
			err = nerr
		}
	}()
	return Parse(file)
}

// Queens returns the queen identifiers in first-mention order.
func (ped *Pedigree) Queens() []string {
	return ped.queens
}

// Drones returns the drone identifiers of the given queen, in list order.
func (ped *Pedigree) Drones(queen string) []string {
	return ped.drones[queen]
}

// NumQueens returns the number of queens.
func (ped *Pedigree) NumQueens() int {
	return len(ped.queens)
}

// NumDrones returns the total number of drones across all queens.
func (ped *Pedigree) NumDrones() int {
	n := 0
	for _, drones := range ped.drones {
		n += len(drones)
	}
	return n
}
