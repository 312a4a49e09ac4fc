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

// queenGT reconstructs the diploid genotypes of honeybee queens from
// the genotypes of their haploid drone offspring in a VCF file.
//
// Please see https://github.com/exascience/queengt for a documentation
// of the tool.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/exascience/queengt/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: infer, version")
	fmt.Fprint(os.Stderr, "\n", cmd.InferHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.VersionHelp)
}

func printUsage() {
	fmt.Fprint(os.Stderr, cmd.HelpMessage)
	printHelp()
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "infer":
		err = cmd.Infer()
	case "version", "-version", "--version":
		cmd.Version()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command: ", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
