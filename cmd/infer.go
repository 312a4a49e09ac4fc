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

package cmd

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/exascience/queengt/infer"
	"github.com/exascience/queengt/internal"
)

// InferHelp is the help string for this command.
const InferHelp = "infer parameters:\n" +
	"queengt infer vcf-file pedigree-file\n" +
	"[--output-dir dir]\n" +
	"[--nr-of-workers number]\n" +
	"[--min-drones number]\n" +
	"[--het-threshold ratio]\n" +
	"[--haploid]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// Infer implements the queengt infer command.
func Infer() error {
	var (
		outputDir    string
		nrOfWorkers  int
		minDrones    int
		hetThreshold float64
		haploid      bool
		timed        bool
		profile      string
		logPath      string
	)

	var flags flag.FlagSet

	flags.StringVar(&outputDir, "output-dir", ".", "directory for the merged output file and its index")
	flags.IntVar(&nrOfWorkers, "nr-of-workers", infer.DefaultNrOfWorkers, "number of concurrent queen tasks")
	flags.IntVar(&minDrones, "min-drones", infer.DefaultMinDrones, "minimum number of drones with a valid genotype per site")
	flags.Float64Var(&hetThreshold, "het-threshold", infer.DefaultHetThreshold, "heterozygosity threshold on the alternate allele ratio")
	flags.BoolVar(&haploid, "haploid", false, "drone genotype columns are haploid")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 4, InferHelp)

	vcfFile := getFilename(os.Args[2], InferHelp)
	pedigreeFile := getFilename(os.Args[3], InferHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", vcfFile) {
		sanityChecksFailed = true
	}
	if !checkExist("", pedigreeFile) {
		sanityChecksFailed = true
	}
	if nrOfWorkers < 1 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-workers: ", nrOfWorkers)
	}
	if minDrones < 1 {
		sanityChecksFailed = true
		log.Println("Error: Invalid min-drones: ", minDrones)
	}
	if hetThreshold <= 0 || hetThreshold >= 0.5 {
		sanityChecksFailed = true
		log.Println("Error: Invalid het-threshold: ", hetThreshold, " (must be strictly between 0 and 0.5)")
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, InferHelp)
		os.Exit(1)
	}

	fullOutputDir, err := internal.FullPathname(outputDir)
	if err != nil {
		return err
	}

	// building commandline arguments and spreading of tasks

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " infer ", vcfFile, " ", pedigreeFile)
	fmt.Fprint(&command, " --output-dir ", outputDir)
	fmt.Fprint(&command, " --nr-of-workers ", nrOfWorkers)
	fmt.Fprint(&command, " --min-drones ", minDrones)
	fmt.Fprint(&command, " --het-threshold ", hetThreshold)
	if haploid {
		fmt.Fprint(&command, " --haploid")
	}
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	if profile != "" {
		fmt.Fprint(&command, " --profile ", profile)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	opts := infer.Options{
		VcfFile:      vcfFile,
		PedigreeFile: pedigreeFile,
		OutputDir:    fullOutputDir,
		NrOfWorkers:  nrOfWorkers,
		MinDrones:    minDrones,
		HetThreshold: hetThreshold,
		Haploid:      haploid,
	}

	return timedRun(timed, profile, "Inferring queen genotypes.", 1, func() error {
		return infer.Run(opts)
	})
}
