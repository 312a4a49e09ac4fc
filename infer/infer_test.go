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
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/queengt/pedigree"
	"github.com/exascience/queengt/vcf"
)

const testVcf = "##fileformat=VCFv4.2\n" +
	"##source=droneSequencing\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\td1\td2\td3\td4\td5\td6\n" +
	"2\t200\t.\tA\tT\t.\tPASS\t.\tGT\t0/0\t0/0\t0/1\t0/0\t0/0\t0/0\n" +
	"10\t100\t.\tG\tC\t.\tPASS\t.\tGT\t1/1\t1/1\t1/1\t0/0\t./.\t./.\n" +
	"2\t100\t.\tC\tG\t.\tPASS\t.\tGT:DP\t1/1:9\t1/1:9\t1/1:9\t1/1:9\t0/1:5\t1/1:9\n"

const testPedigree = "d1 Q1\n" +
	"d2 Q1\n" +
	"d3 Q1\n" +
	"d4 Q1\n" +
	"d5 Q2\n" +
	"d6 Q2\n" +
	"ghost Q2\n"

// expectedMerged is testVcf reduced to queen columns: sites sorted by
// chromosome name and position, Q2 missing where only ghost and the
// uncalled drones remain.
const expectedMerged = "##fileformat=VCFv4.2\n" +
	"##source=droneSequencing\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tQ1\tQ2\n" +
	"10\t100\t.\tG\tC\t.\tPASS\t.\tGT\t0/1\t./.\n" +
	"2\t100\t.\tC\tG\t.\tPASS\t.\tGT:DP\t1/1\t1/1\n" +
	"2\t200\t.\tA\tT\t.\tPASS\t.\tGT\t0/1\t0/0\n"

const testHaploidVcf = "##fileformat=VCFv4.2\n" +
	"##source=droneSequencing\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\td1\td2\td3\td4\n" +
	"2\t200\t.\tA\tT\t.\tPASS\t.\tGT\t0\t0\t1\t0\n" +
	"10\t100\t.\tG\tC\t.\tPASS\t.\tGT\t1\t1\t.\t.\n" +
	"2\t100\t.\tC\tG\t.\tPASS\t.\tGT:DP\t0:7\t.\t1:9\t1:9\n"

const testHaploidPedigree = "d1 Q1\n" +
	"d2 Q1\n" +
	"ghost Q1\n" +
	"d3 Q2\n" +
	"d4 Q2\n"

// expectedHaploidMerged holds the diploid queen calls inferred from the
// haploid drone columns of testHaploidVcf. The ghost drone of Q1
// contributes a haploid missing observation at every site: at 2:200 the
// two reference drones call Q1 homozygous reference, and at 2:100 the one
// remaining valid drone is not enough for a call.
const expectedHaploidMerged = "##fileformat=VCFv4.2\n" +
	"##source=droneSequencing\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tQ1\tQ2\n" +
	"10\t100\t.\tG\tC\t.\tPASS\t.\tGT\t1/1\t./.\n" +
	"2\t100\t.\tC\tG\t.\tPASS\t.\tGT:DP\t./.\t1/1\n" +
	"2\t200\t.\tA\tT\t.\tPASS\t.\tGT\t0/0\t0/1\n"

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

func testOptions(t *testing.T, dir string) Options {
	t.Helper()
	return Options{
		VcfFile:      writeTestFile(t, dir, "drones.vcf", testVcf),
		PedigreeFile: writeTestFile(t, dir, "pedigree.txt", testPedigree),
		OutputDir:    dir,
		NrOfWorkers:  DefaultNrOfWorkers,
		MinDrones:    DefaultMinDrones,
		HetThreshold: DefaultHetThreshold,
	}
}

func inferMerged(t *testing.T, opts Options, name string) string {
	t.Helper()
	ped, err := pedigree.FromFile(opts.PedigreeFile)
	require.NoError(t, err)
	hdr, err := readHeader(opts.VcfFile)
	require.NoError(t, err)
	validateSamples(hdr, ped)
	results, err := inferAll(opts, ped)
	require.NoError(t, err)
	path := filepath.Join(opts.OutputDir, name)
	require.NoError(t, writeMerged(path, hdr, ped, results))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestInferMergedOutput(t *testing.T) {
	opts := testOptions(t, t.TempDir())
	assert.Equal(t, expectedMerged, inferMerged(t, opts, "merged.vcf"))
}

func TestInferHaploidMergedOutput(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		VcfFile:      writeTestFile(t, dir, "drones.vcf", testHaploidVcf),
		PedigreeFile: writeTestFile(t, dir, "pedigree.txt", testHaploidPedigree),
		OutputDir:    dir,
		NrOfWorkers:  DefaultNrOfWorkers,
		MinDrones:    DefaultMinDrones,
		HetThreshold: DefaultHetThreshold,
		Haploid:      true,
	}
	assert.Equal(t, expectedHaploidMerged, inferMerged(t, opts, "merged.vcf"))
}

func TestInferDeterministicAcrossWorkers(t *testing.T) {
	opts := testOptions(t, t.TempDir())
	for _, workers := range []int{1, 2, 8} {
		opts.NrOfWorkers = workers
		assert.Equal(t, expectedMerged, inferMerged(t, opts, "merged.vcf"), "with %v workers", workers)
	}
}

func TestMergedOutputRoundTrip(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(t, dir)
	ped, err := pedigree.FromFile(opts.PedigreeFile)
	require.NoError(t, err)
	hdr, err := readHeader(opts.VcfFile)
	require.NoError(t, err)
	results, err := inferAll(opts, ped)
	require.NoError(t, err)
	path := filepath.Join(dir, "merged.vcf")
	require.NoError(t, writeMerged(path, hdr, ped, results))

	input, err := vcf.Open(path)
	require.NoError(t, err)
	defer func() { assert.NoError(t, input.Close()) }()
	parsedHdr, err := input.ParseHeader()
	require.NoError(t, err)
	assert.Equal(t, hdr.MetaLines, parsedHdr.MetaLines)
	assert.Equal(t, ped.Queens(), parsedHdr.Samples())
	rows := 0
	for {
		record, err := input.ParseRecord()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rows++
		for i, result := range results {
			expected := Missing
			if call, ok := result.calls[record.Key]; ok {
				expected = call
			}
			assert.Equal(t, expected, record.Samples[i], "call of queen %v at %v:%v", result.queen, record.Key.Chrom, record.Key.Pos)
		}
	}
	assert.Equal(t, 3, rows)
}

func TestInferAllReportsFormatError(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(t, dir)
	truncated := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\td1\td2\n" +
		"1\t100\t.\tA\tT\t.\tPASS\t.\tGT\t0/1\n"
	opts.VcfFile = writeTestFile(t, dir, "truncated.vcf", truncated)
	opts.NrOfWorkers = 2
	ped, err := pedigree.FromFile(opts.PedigreeFile)
	require.NoError(t, err)

	_, err = inferAll(opts, ped)
	require.Error(t, err)
	var formatErr *vcf.FormatError
	assert.True(t, errors.As(err, &formatErr))
	assert.Contains(t, err.Error(), "inferring genotypes of queen")
}

func TestMergeResultsConsistencyError(t *testing.T) {
	key := vcf.Key{Chrom: "1", Pos: 100, ID: ".", Ref: "A", Alt: "T"}
	established := vcf.Fixed{"1", "100", ".", "A", "T", ".", "PASS", ".", "GT"}
	observed := established
	observed[7] = "DP=5"
	results := []*queenResult{
		{queen: "Q1", keys: []vcf.Key{key}, calls: map[vcf.Key]string{key: HomRef}, fixed: map[vcf.Key]vcf.Fixed{key: established}},
		{queen: "Q2", keys: []vcf.Key{key}, calls: map[vcf.Key]string{key: Het}, fixed: map[vcf.Key]vcf.Fixed{key: observed}},
	}

	_, _, err := mergeResults(results)
	require.Error(t, err)
	var consistencyErr *ConsistencyError
	require.True(t, errors.As(err, &consistencyErr))
	assert.Equal(t, "Q1", consistencyErr.Queen1)
	assert.Equal(t, "Q2", consistencyErr.Queen2)
	assert.Equal(t, key, consistencyErr.Key)
	assert.Equal(t, established, consistencyErr.Established)
	assert.Equal(t, observed, consistencyErr.Observed)
}

func TestRunChecks(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(t, dir)
	opts.OutputDir = filepath.Join(dir, "out")

	bad := opts
	bad.NrOfWorkers = 0
	assert.Error(t, Run(bad))
	bad = opts
	bad.MinDrones = 0
	assert.Error(t, Run(bad))
	bad = opts
	bad.HetThreshold = 0
	assert.Error(t, Run(bad))
	bad = opts
	bad.HetThreshold = 0.5
	assert.Error(t, Run(bad))

	empty := opts
	empty.PedigreeFile = writeTestFile(t, dir, "empty.txt", "lonetoken\n")
	err := Run(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "names no queens")

	headerless := opts
	headerless.VcfFile = writeTestFile(t, dir, "headerless.vcf", "##fileformat=VCFv4.2\n")
	err = Run(headerless)
	require.Error(t, err)
	var formatErr *vcf.FormatError
	assert.True(t, errors.As(err, &formatErr))
}
