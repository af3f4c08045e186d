package vcf

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

const textFixture = `##fileformat=VCFv4.2
##INFO=<ID=DP,Number=1,Type=Integer,Description="Total Depth">
##FILTER=<ID=q10,Description="Quality below 10">
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
##contig=<ID=chr1,length=1000>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1
chr1	100	rs1	A	G	50	PASS	DP=10	GT	0/1
chr1	200	.	C	T	.	.	.	GT	1/1
`

func TestReaderReadsTextRecords(t *testing.T) {
	r, err := NewReader(strings.NewReader(textFixture), ReaderOptions{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if len(r.Header.Samples) != 1 || r.Header.Samples[0] != "S1" {
		t.Fatalf("Samples = %v", r.Header.Samples)
	}

	var got []*struct{ Pos int32 }
	n := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got = append(got, &struct{ Pos int32 }{rec.Pos})
		n++
	}
	if n != 2 {
		t.Fatalf("read %d records, want 2", n)
	}
	if got[0].Pos != 99 || got[1].Pos != 199 {
		t.Fatalf("positions = %+v, want 0-based 99 and 199", got)
	}
}

func TestConvertTextToBinToText(t *testing.T) {
	r, err := NewReader(strings.NewReader(textFixture), ReaderOptions{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	var binBuf bytes.Buffer
	bw, err := NewWriter(&binBuf, r.Header, FormatBin)
	if err != nil {
		t.Fatalf("NewWriter(bin): %v", err)
	}
	if n, err := Convert(bw, r); err != nil || n != 2 {
		t.Fatalf("Convert to bin: n=%d err=%v", n, err)
	}

	br2, err := NewReader(&binBuf, ReaderOptions{})
	if err != nil {
		t.Fatalf("NewReader(bin): %v", err)
	}
	if len(br2.Header.Samples) != 1 {
		t.Fatalf("Samples after bin round trip = %v", br2.Header.Samples)
	}

	var textBuf bytes.Buffer
	tw, err := NewWriter(&textBuf, br2.Header, FormatText)
	if err != nil {
		t.Fatalf("NewWriter(text): %v", err)
	}
	if n, err := Convert(tw, br2); err != nil || n != 2 {
		t.Fatalf("Convert to text: n=%d err=%v", n, err)
	}

	out := textBuf.String()
	if !strings.Contains(out, "chr1\t100\trs1\tA\tG\t50\tPASS\tDP=10\tGT\t0/1") {
		t.Fatalf("converted text missing first record: %q", out)
	}
	if !strings.Contains(out, "chr1\t200\t.\tC\tT\t.\t.\t.\tGT\t1/1") {
		t.Fatalf("converted text missing second record: %q", out)
	}
	if strings.ContainsRune(out, '\x00') {
		t.Fatalf("converted text carries a NUL byte from the header terminator: %q", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	chromIdx := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "#CHROM") {
			chromIdx = i
			break
		}
	}
	if chromIdx == -1 || chromIdx+1 >= len(lines) {
		t.Fatalf("converted text missing #CHROM line or first record: %q", out)
	}
	if lines[chromIdx+1] != "chr1\t100\trs1\tA\tG\t50\tPASS\tDP=10\tGT\t0/1" {
		t.Fatalf("header and first record not cleanly separated: %q", lines[chromIdx+1])
	}
}

func TestReaderDetectsBinSignature(t *testing.T) {
	r, err := NewReader(strings.NewReader(textFixture), ReaderOptions{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	var binBuf bytes.Buffer
	bw, err := NewWriter(&binBuf, r.Header, FormatBin)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := Convert(bw, r); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !bytes.HasPrefix(binBuf.Bytes(), []byte(BinSignature)) {
		t.Fatalf("binary output missing signature")
	}

	r2, err := NewReader(&binBuf, ReaderOptions{})
	if err != nil {
		t.Fatalf("NewReader(bin): %v", err)
	}
	if r2.format != FormatBin {
		t.Fatalf("format = %v, want FormatBin", r2.format)
	}
}
