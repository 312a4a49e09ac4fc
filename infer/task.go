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
	"io"

	"github.com/pkg/errors"

	"github.com/exascience/queengt/vcf"
)

// queenResult is the outcome of one per-queen pass over the variant file.
// keys holds the variant keys in order of their first occurrence; calls
// and fixed hold for every key the inferred genotype call and the fixed
// columns of the key's last data line.
type queenResult struct {
	queen string
	keys  []vcf.Key
	calls map[vcf.Key]string
	fixed map[vcf.Key]vcf.Fixed
}

// inferQueen streams the variant file once and infers the genotype of one
// queen at every site from the genotype columns of her drones. Drones
// without a sample column contribute a missing observation at every site.
// The context is checked between records so that the coordinator can stop
// the remaining work when a concurrent task fails.
func inferQueen(ctx context.Context, opts Options, queen string, drones []string) (result *queenResult, err error) {
	defer func() {
		if err != nil {
			result = nil
			err = errors.Wrapf(err, "inferring genotypes of queen %v", queen)
		}
	}()
	input, err := vcf.Open(opts.VcfFile)
	if err != nil {
		return nil, err
	}
	defer func() {
		nerr := input.Close()
		if err == nil {
			err = nerr
		}
	}()
	hdr, err := input.ParseHeader()
	if err != nil {
		return nil, err
	}
	index := hdr.SampleIndex()
	droneColumns := make([]int, len(drones))
	for i, drone := range drones {
		column, ok := index[drone]
		if !ok {
			column = -1
		}
		droneColumns[i] = column
	}
	missingGT := Missing
	if opts.Haploid {
		missingGT = MissingHaploid
	}
	result = &queenResult{
		queen: queen,
		calls: make(map[vcf.Key]string),
		fixed: make(map[vcf.Key]vcf.Fixed),
	}
	droneGTs := make([]string, len(drones))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := input.ParseRecord()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		for i, column := range droneColumns {
			if column < 0 {
				droneGTs[i] = missingGT
			} else {
				droneGTs[i] = record.Samples[column]
			}
		}
		if _, seen := result.calls[record.Key]; !seen {
			result.keys = append(result.keys, record.Key)
		}
		result.calls[record.Key] = QueenGenotype(droneGTs, opts.HetThreshold, opts.MinDrones, opts.Haploid)
		result.fixed[record.Key] = record.Fixed
	}
}
