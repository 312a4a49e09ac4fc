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

// Package vcf reads and writes Variant Call Format files at the level of
// detail queenGT needs: sample columns are split out per data line, while
// the fixed annotation columns are carried verbatim so that output rows
// reproduce the input bytes exactly.
package vcf

import (
	"sort"

	psort "github.com/exascience/pargo/sort"
)

// Indices of the fixed columns of a VCF data line.
const (
	chromIdx = iota
	posIdx
	idIdx
	refIdx
	altIdx
	qualIdx
	filterIdx
	infoIdx
	formatIdx
)

// NumFixedColumns is the number of fixed annotation columns that precede
// the sample columns in a VCF file.
const NumFixedColumns = 9

type (
	// Key identifies a variant site. Two data lines denote the same site
	// only if all five fields are equal.
	Key struct {
		Chrom    string
		Pos      int32
		ID       string
		Ref, Alt string
	}

	// Fixed holds the nine fixed columns of a data line as found in the
	// input, so that writing them back preserves the original formatting.
	Fixed [NumFixedColumns]string

	// Record is a parsed data line: its variant key, its fixed columns,
	// and the raw per-sample columns in header order.
	Record struct {
		Key     Key
		Fixed   Fixed
		Samples []string
	}

	// Header of a VCF file: the meta-information lines verbatim, without
	// their line terminators, plus the column names of the header line.
	Header struct {
		MetaLines []string
		Columns   []string
	}
)

// Samples returns the sample names of the header, in column order.
func (hdr *Header) Samples() []string {
	return hdr.Columns[NumFixedColumns:]
}

// SampleIndex maps each sample name to its index in Record.Samples. When a
// name labels more than one column, the last column wins.
func (hdr *Header) SampleIndex() map[string]int {
	samples := hdr.Samples()
	index := make(map[string]int, len(samples))
	for i, sample := range samples {
		index[sample] = i
	}
	return index
}

// DuplicateSamples returns the sample names that label more than one
// column, in order of their second occurrence.
func (hdr *Header) DuplicateSamples() []string {
	seen := make(map[string]int)
	var duplicates []string
	for _, sample := range hdr.Samples() {
		if seen[sample] == 1 {
			duplicates = append(duplicates, sample)
		}
		seen[sample]++
	}
	return duplicates
}

// KeyLess orders variant keys by chromosome name and position. Chromosome
// names compare lexicographically, so "10" sorts before "2"; positions
// compare numerically.
func KeyLess(k1, k2 Key) bool {
	if k1.Chrom != k2.Chrom {
		return k1.Chrom < k2.Chrom
	}
	return k1.Pos < k2.Pos
}

// SortKeys sorts a slice of Key by chromosome name and position. The sort
// is stable: keys equal under KeyLess keep their relative order.
func SortKeys(keys []Key) {
	sort.SliceStable(keys, func(i, j int) bool {
		return KeyLess(keys[i], keys[j])
	})
}

type stableKeySorter []Key

func (s stableKeySorter) SequentialSort(i, j int) {
	SortKeys(s[i:j])
}

func (s stableKeySorter) NewTemp() psort.StableSorter {
	return stableKeySorter(make([]Key, len(s)))
}

func (s stableKeySorter) Len() int {
	return len(s)
}

func (s stableKeySorter) Less(i, j int) bool {
	return KeyLess(s[i], s[j])
}

func (s stableKeySorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(stableKeySorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// ParallelSortKeys sorts a slice of Key by chromosome name and position
// using a parallel stable sort.
func ParallelSortKeys(keys []Key) {
	psort.StableSort(stableKeySorter(keys))
}
