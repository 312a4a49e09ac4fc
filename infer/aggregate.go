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
	"fmt"
	"strings"

	"github.com/exascience/queengt/pedigree"
	"github.com/exascience/queengt/vcf"
)

// ConsistencyError reports that two inference tasks observed different
// fixed columns for the same variant key. Tasks stream one shared input
// file, so this only happens when that file changes during the run.
type ConsistencyError struct {
	Key         vcf.Key
	Queen1      string // task that established the fixed columns of Key
	Queen2      string // task that observed different ones
	Established vcf.Fixed
	Observed    vcf.Fixed
}

func (err *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent fixed columns for variant %v:%v between the tasks of queen %v and queen %v: %v versus %v",
		err.Key.Chrom, err.Key.Pos, err.Queen1, err.Queen2,
		strings.Join(err.Established[:], " "), strings.Join(err.Observed[:], " "))
}

// mergeResults collects the union of the variant keys of all tasks, in
// order of first contribution, and establishes the fixed columns of every
// key. The first task that contributes a key establishes its fixed
// columns; a later task that disagrees yields a ConsistencyError.
func mergeResults(results []*queenResult) ([]vcf.Key, map[vcf.Key]vcf.Fixed, error) {
	var keys []vcf.Key
	fixed := make(map[vcf.Key]vcf.Fixed)
	establishedBy := make(map[vcf.Key]string)
	for _, result := range results {
		for _, key := range result.keys {
			established, ok := fixed[key]
			if !ok {
				keys = append(keys, key)
				fixed[key] = result.fixed[key]
				establishedBy[key] = result.queen
				continue
			}
			if observed := result.fixed[key]; observed != established {
				return nil, nil, &ConsistencyError{
					Key:         key,
					Queen1:      establishedBy[key],
					Queen2:      result.queen,
					Established: established,
					Observed:    observed,
				}
			}
		}
	}
	return keys, fixed, nil
}

// writeMerged writes the merged inference results as one VCF file: the
// meta-information lines of the source header, a sample header line with
// one column per queen in pedigree order, and one data line per variant
// key, sorted by chromosome name and position. A queen without a call for
// a key gets the missing call.
func writeMerged(path string, hdr *vcf.Header, ped *pedigree.Pedigree, results []*queenResult) (err error) {
	keys, fixed, err := mergeResults(results)
	if err != nil {
		return err
	}
	vcf.ParallelSortKeys(keys)
	output, err := vcf.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		nerr := output.Close()
		if err == nil {
			err = nerr
		}
	}()
	if err := output.FormatHeader(hdr, ped.Queens()); err != nil {
		return err
	}
	calls := make([]string, len(results))
	for _, key := range keys {
		for i, result := range results {
			if call, ok := result.calls[key]; ok {
				calls[i] = call
			} else {
				calls[i] = Missing
			}
		}
		if err := output.FormatRecord(fixed[key], calls); err != nil {
			return err
		}
	}
	return nil
}
