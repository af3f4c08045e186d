// Package refidx loads a FASTA index (.fai-style) used to synthesize
// ##contig meta-lines for a VCF-TEXT header that omits them, mirroring
// htslib's vcf_hdr_read behavior when a reference index is attached to the
// input stream.
//
// ref: SPEC_FULL.md §4.7
package refidx

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ReferenceIndex iterates over a sequence dictionary's (name, length)
// pairs. Next returns ok=false once exhausted, with err set only if
// iteration stopped due to a read failure rather than reaching the end.
type ReferenceIndex interface {
	Next() (name string, length int, ok bool, err error)
}

// FaiReader reads a samtools-style .fai index: one line per sequence,
// tab-separated, "name\tlength\t..." with any further columns (offset,
// line bases, line width) ignored. Lines that don't parse as "name\tlength"
// are skipped rather than treated as fatal, the same tolerant-line
// posture bufio-based readers in the example corpus take toward
// malformed input (awilkey-bio-format-tools-go/vcf/reader.go,
// mendelics-vcf/vcf.go's vcfHeader).
type FaiReader struct {
	s *bufio.Scanner
}

// NewFaiReader returns a FaiReader reading from r.
func NewFaiReader(r io.Reader) *FaiReader {
	return &FaiReader{s: bufio.NewScanner(r)}
}

// Next implements ReferenceIndex.
func (f *FaiReader) Next() (name string, length int, ok bool, err error) {
	for f.s.Scan() {
		line := f.s.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			continue
		}
		n, perr := strconv.Atoi(cols[1])
		if perr != nil {
			continue
		}
		return cols[0], n, true, nil
	}
	if err := f.s.Err(); err != nil {
		return "", 0, false, err
	}
	return "", 0, false, nil
}

// StaticIndex is an in-memory ReferenceIndex, useful for tests and for
// callers that already have a sequence dictionary loaded.
type StaticIndex struct {
	names   []string
	lengths []int
	pos     int
}

// NewStaticIndex returns a ReferenceIndex over the given parallel slices.
func NewStaticIndex(names []string, lengths []int) *StaticIndex {
	return &StaticIndex{names: names, lengths: lengths}
}

// Next implements ReferenceIndex.
func (s *StaticIndex) Next() (name string, length int, ok bool, err error) {
	if s.pos >= len(s.names) {
		return "", 0, false, nil
	}
	name, length = s.names[s.pos], s.lengths[s.pos]
	s.pos++
	return name, length, true, nil
}
