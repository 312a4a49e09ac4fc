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

package vcf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/exascience/queengt/internal"
	"github.com/klauspost/pgzip"
)

// File name extensions recognized by this package.
const (
	VcfExt = ".vcf"
	GzExt  = ".gz"
	TbiExt = ".tbi"
)

// Markers of the two kinds of header lines in a VCF file.
const (
	metaMarker   = "##"
	headerMarker = "#"
)

// FormatError reports malformed VCF input.
type FormatError struct {
	Msg string
}

func (err *FormatError) Error() string {
	return err.Msg
}

func formatErrorf(format string, args ...interface{}) *FormatError {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// InputFile represents a VCF file open for reading. Files with a .gz name
// suffix are decompressed on the fly.
type InputFile struct {
	name    string
	file    *os.File
	gz      *pgzip.Reader
	reader  *bufio.Reader
	columns int
}

// Open a VCF file for reading. The file is decompressed with a parallel
// gzip reader when its name ends in .gz.
func Open(name string) (*InputFile, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	input := &InputFile{name: name, file: file}
	if filepath.Ext(name) == GzExt {
		gz, err := pgzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("opening gzip reader for %v: %v", name, err)
		}
		input.gz = gz
		input.reader = bufio.NewReader(gz)
	} else {
		input.reader = bufio.NewReader(file)
	}
	return input, nil
}

// Close the input file and, for compressed input, its decompressor.
func (input *InputFile) Close() error {
	if input.gz != nil {
		if err := input.gz.Close(); err != nil {
			_ = input.file.Close()
			return err
		}
	}
	return input.file.Close()
}

// getLine reads the next line, without its line terminator. A final line
// that lacks a terminator is returned as well; io.EOF only signals that no
// line is left.
func getLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	switch {
	case err == nil:
		return line[:len(line)-1], nil
	case err == io.EOF && line != "":
		return line, nil
	default:
		return "", err
	}
}

// ParseHeader reads the meta-information lines and the sample header line
// of a VCF file. It returns a FormatError when a data line or the end of
// the input occurs before the sample header line, or when the sample
// header line lists too few columns.
func (input *InputFile) ParseHeader() (*Header, error) {
	hdr := new(Header)
	for {
		line, err := getLine(input.reader)
		if err == io.EOF {
			return nil, formatErrorf("%v: no sample header line", input.name)
		}
		if err != nil {
			return nil, err
		}
		switch {
		case strings.HasPrefix(line, metaMarker):
			hdr.MetaLines = append(hdr.MetaLines, line)
		case strings.HasPrefix(line, headerMarker):
			hdr.Columns = strings.Split(line[len(headerMarker):], "\t")
			if len(hdr.Columns) < NumFixedColumns {
				return nil, formatErrorf("%v: sample header line with %v columns, expected at least %v", input.name, len(hdr.Columns), NumFixedColumns)
			}
			input.columns = len(hdr.Columns)
			return hdr, nil
		default:
			return nil, formatErrorf("%v: data line before sample header line: %v", input.name, line)
		}
	}
}

// ParseRecord reads the next data line of a VCF file. ParseHeader must have
// been called on the same input first. Stray header lines between data
// lines are skipped, like most VCF tooling does. ParseRecord returns io.EOF
// after the last data line, and a FormatError for a data line whose column
// count disagrees with the sample header line or whose position is not a
// number.
func (input *InputFile) ParseRecord() (*Record, error) {
	var line string
	for {
		l, err := getLine(input.reader)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(l, headerMarker) {
			line = l
			break
		}
	}
	fields := strings.Split(line, "\t")
	if len(fields) != input.columns {
		return nil, formatErrorf("%v: data line with %v columns, expected %v: %v", input.name, len(fields), input.columns, line)
	}
	pos, err := internal.ParseInt32(fields[posIdx])
	if err != nil {
		return nil, formatErrorf("%v: invalid position in data line: %v", input.name, line)
	}
	record := &Record{
		Key: Key{
			Chrom: fields[chromIdx],
			Pos:   pos,
			ID:    fields[idIdx],
			Ref:   fields[refIdx],
			Alt:   fields[altIdx],
		},
		Samples: fields[NumFixedColumns:],
	}
	copy(record.Fixed[:], fields[:NumFixedColumns])
	return record, nil
}

// OutputFile represents a VCF file open for writing.
type OutputFile struct {
	file   *os.File
	writer *bufio.Writer
}

// Create a VCF file for writing, truncating it if it already exists.
func Create(name string) (*OutputFile, error) {
	file, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return &OutputFile{file: file, writer: bufio.NewWriter(file)}, nil
}

// Close the output file, flushing any buffered output first.
func (output *OutputFile) Close() error {
	if err := output.writer.Flush(); err != nil {
		_ = output.file.Close()
		return err
	}
	return output.file.Close()
}

// FormatHeader writes the meta-information lines verbatim, then a sample
// header line that keeps the fixed column names and replaces the sample
// columns with the given ones.
func (output *OutputFile) FormatHeader(hdr *Header, sampleColumns []string) error {
	for _, line := range hdr.MetaLines {
		_, _ = output.writer.WriteString(line)
		_ = output.writer.WriteByte('\n')
	}
	_, _ = output.writer.WriteString(headerMarker)
	_, _ = output.writer.WriteString(strings.Join(hdr.Columns[:NumFixedColumns], "\t"))
	for _, column := range sampleColumns {
		_ = output.writer.WriteByte('\t')
		_, _ = output.writer.WriteString(column)
	}
	return output.writer.WriteByte('\n')
}

// FormatRecord writes one data line: the fixed columns verbatim, followed
// by one genotype column per sample.
func (output *OutputFile) FormatRecord(fixed Fixed, calls []string) error {
	_, _ = output.writer.WriteString(strings.Join(fixed[:], "\t"))
	for _, call := range calls {
		_ = output.writer.WriteByte('\t')
		_, _ = output.writer.WriteString(call)
	}
	return output.writer.WriteByte('\n')
}

// runCommand runs an external tool, reporting its standard error output
// when it fails.
func runCommand(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%v: %v: %v", strings.Join(cmd.Args, " "), err, msg)
		}
		return fmt.Errorf("%v: %v", strings.Join(cmd.Args, " "), err)
	}
	return nil
}

// Bgzip compresses the file at path in place by running the external bgzip
// tool, and returns the path of the compressed file. bgzip must be
// installed and on the PATH.
func Bgzip(path string) (string, error) {
	if err := runCommand(exec.Command("bgzip", "-f", path)); err != nil {
		return "", err
	}
	return path + GzExt, nil
}

// TabixIndex creates a tabix index next to the bgzip-compressed VCF file
// at path, and returns the path of the index. tabix must be installed and
// on the PATH.
func TabixIndex(path string) (string, error) {
	if err := runCommand(exec.Command("tabix", "-f", "-p", "vcf", path)); err != nil {
		return "", err
	}
	return path + TbiExt, nil
}
