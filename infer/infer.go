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

package infer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/exascience/queengt/pedigree"
	"github.com/exascience/queengt/vcf"
)

// Default parameter values of the infer command.
const (
	DefaultNrOfWorkers  = 1
	DefaultMinDrones    = 2
	DefaultHetThreshold = 0.125
)

// OutputName is the name of the merged multi-queen VCF file that an
// inference run writes into its output directory, before compression.
const OutputName = "all_queens" + vcf.VcfExt

// Options bundles the parameters of an inference run. The command line
// layer fills it in once; the run never consults ambient configuration.
type Options struct {
	VcfFile      string  // variant file with one genotype column per drone
	PedigreeFile string  // drone/queen pedigree list
	OutputDir    string  // directory for the merged output file and its index
	NrOfWorkers  int     // upper bound on concurrently running queen tasks
	MinDrones    int     // minimum number of valid drone genotypes per site
	HetThreshold float64 // heterozygosity threshold, in (0, 0.5)
	Haploid      bool    // drone genotype columns are haploid
}

func (opts Options) check() error {
	if opts.NrOfWorkers < 1 {
		return fmt.Errorf("invalid number of workers %v, must be at least 1", opts.NrOfWorkers)
	}
	if opts.MinDrones < 1 {
		return fmt.Errorf("invalid minimum drone count %v, must be at least 1", opts.MinDrones)
	}
	if opts.HetThreshold <= 0 || opts.HetThreshold >= 0.5 {
		return fmt.Errorf("invalid heterozygosity threshold %v, must be strictly between 0 and 0.5", opts.HetThreshold)
	}
	return nil
}

// readHeader parses just the header of the variant file, so that format
// problems and pedigree mismatches surface before any worker starts.
func readHeader(name string) (hdr *vcf.Header, err error) {
	input, err := vcf.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		nerr := input.Close()
		if err == nil {
			err = nerr
		}
	}()
	return input.ParseHeader()
}

// validateSamples warns about duplicate sample columns and about pedigree
// drones without a sample column in the variant file. Neither condition
// stops a run: a duplicated name resolves to its last column, and an
// absent drone contributes missing observations at every site.
func validateSamples(hdr *vcf.Header, ped *pedigree.Pedigree) {
	if duplicates := hdr.DuplicateSamples(); len(duplicates) > 0 {
		log.Warnf("Duplicate sample names in VCF header, the last column wins: %v", strings.Join(duplicates, ", "))
	}
	index := hdr.SampleIndex()
	matched := 0
	for _, queen := range ped.Queens() {
		var absent []string
		for _, drone := range ped.Drones(queen) {
			if _, ok := index[drone]; ok {
				matched++
			} else {
				absent = append(absent, drone)
			}
		}
		if len(absent) > 0 {
			log.Warnf("Queen %v: drones without a VCF sample column, treated as missing data: %v", queen, strings.Join(absent, ", "))
		}
	}
	log.Infof("Matched %v of %v pedigree drones against %v VCF samples", matched, ped.NumDrones(), len(hdr.Samples()))
}

// inferAll runs one inference task per queen, with at most
// opts.NrOfWorkers tasks in flight. Results are stored by pedigree
// position, so completion order never influences the output. The first
// failing task cancels the remaining ones, and inferAll reports its error:
// a run either produces results for all queens or for none.
func inferAll(opts Options, ped *pedigree.Pedigree) ([]*queenResult, error) {
	queens := ped.Queens()
	results := make([]*queenResult, len(queens))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(opts.NrOfWorkers)
	for i, queen := range queens {
		i, queen := i, queen
		g.Go(func() error {
			result, err := inferQueen(ctx, opts, queen, ped.Drones(queen))
			if err != nil {
				return err
			}
			results[i] = result
			log.Infof("Inferred genotypes of queen %v at %v sites", queen, len(result.keys))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Run loads the pedigree, infers the genotypes of every queen from the
// variant file, and writes one merged, sorted, bgzip-compressed and
// tabix-indexed multi-queen VCF file into opts.OutputDir.
func Run(opts Options) error {
	if err := opts.check(); err != nil {
		return err
	}
	ped, err := pedigree.FromFile(opts.PedigreeFile)
	if err != nil {
		return err
	}
	if ped.NumQueens() == 0 {
		return fmt.Errorf("pedigree %v names no queens", opts.PedigreeFile)
	}
	log.Infof("Loaded pedigree with %v queens and %v drones", ped.NumQueens(), ped.NumDrones())
	hdr, err := readHeader(opts.VcfFile)
	if err != nil {
		return err
	}
	validateSamples(hdr, ped)
	results, err := inferAll(opts, ped)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.OutputDir, 0700); err != nil {
		return err
	}
	output := filepath.Join(opts.OutputDir, OutputName)
	if err := writeMerged(output, hdr, ped, results); err != nil {
		return err
	}
	compressed, err := vcf.Bgzip(output)
	if err != nil {
		return err
	}
	index, err := vcf.TabixIndex(compressed)
	if err != nil {
		return err
	}
	log.Infof("Wrote %v and %v", compressed, index)
	return nil
}
