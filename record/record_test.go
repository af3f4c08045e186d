package record

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chromacode/vcf/diag"
	"github.com/chromacode/vcf/dict"
)

func testDict() *dict.Dict {
	d := dict.New()
	d.Put(dict.CONTIG, "chr1")
	d.Put(dict.CONTIG, "chr2")
	d.PutID("DP", dict.SiteInfo, dict.ValInteger, dict.CardFixed, 1)
	d.PutID("AF", dict.SiteInfo, dict.ValFloat, dict.CardAllele, 0)
	d.PutID("DB", dict.SiteInfo, dict.ValFlag, dict.CardFixed, 0)
	d.PutID("END", dict.SiteInfo, dict.ValInteger, dict.CardFixed, 1)
	d.PutID("q10", dict.SiteFilter, dict.ValFlag, dict.CardFixed, 0)
	d.PutID("GT", dict.SiteFormat, dict.ValString, dict.CardFixed, 1)
	d.PutID("DP", dict.SiteFormat, dict.ValInteger, dict.CardFixed, 1)
	d.PutID("AD", dict.SiteFormat, dict.ValInteger, dict.CardAllele, 0)
	d.InsertPassIfMissing()
	d.Sync()
	return d
}

func TestParseLineBasicRoundTrip(t *testing.T) {
	d := testDict()
	p := NewParser(diag.Discard())
	line := "chr1\t100\trs1\tA\tG,T\t50\tPASS\tDP=10;AF=0.25,0.5;DB\tGT:DP:AD\t0/1:20:5,10\t1|1:30:0,30"

	rec, err := p.ParseLine(d, line)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if rec == nil {
		t.Fatalf("ParseLine returned nil record")
	}
	if rec.NAllele != 3 {
		t.Fatalf("NAllele = %d, want 3", rec.NAllele)
	}
	if rec.NInfo != 3 {
		t.Fatalf("NInfo = %d, want 3", rec.NInfo)
	}
	if rec.NFmt != 3 || rec.NSample != 2 {
		t.Fatalf("NFmt=%d NSample=%d, want 3/2", rec.NFmt, rec.NSample)
	}

	var buf bytes.Buffer
	if err := rec.WriteText(&buf, d); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	got := buf.String()
	wantPrefix := "chr1\t100\trs1\tA\tG,T\t50\tPASS\t"
	if !strings.HasPrefix(got, wantPrefix) {
		t.Fatalf("WriteText = %q, want prefix %q", got, wantPrefix)
	}
	if !strings.Contains(got, "DP=10") || !strings.Contains(got, "AF=0.25,0.5") || !strings.Contains(got, "DB") {
		t.Fatalf("WriteText missing expected INFO fields: %q", got)
	}
	if !strings.HasSuffix(got, "GT:DP:AD\t0/1:20:5,10\t1|1:30:0,30") {
		t.Fatalf("WriteText FORMAT/sample columns = %q", got)
	}
}

func TestParseLineUnknownContigSkips(t *testing.T) {
	d := testDict()
	p := NewParser(diag.Discard())
	rec, err := p.ParseLine(d, "chrUnknown\t1\t.\tA\t.\t.\t.\t.")
	if err != nil {
		t.Fatalf("ParseLine returned error instead of a skip: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record for an undeclared contig")
	}
}

func TestParseLineMissingValues(t *testing.T) {
	d := testDict()
	p := NewParser(diag.Discard())
	rec, err := p.ParseLine(d, "chr2\t5\t.\tC\t.\t.\t.\t.")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	var buf bytes.Buffer
	if err := rec.WriteText(&buf, d); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	want := "chr2\t5\t.\tC\t.\t.\t.\t."
	if buf.String() != want {
		t.Fatalf("WriteText = %q, want %q", buf.String(), want)
	}
}

func TestParseLineEndOverridesRlen(t *testing.T) {
	d := testDict()
	p := NewParser(diag.Discard())
	rec, err := p.ParseLine(d, "chr1\t100\t.\tA\t.\t.\t.\tEND=200")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if rec.Rlen != 101 {
		t.Fatalf("Rlen = %d, want 101 (END=200, POS=100 0-based 99, 200-99=101)", rec.Rlen)
	}
}

func TestRecordBinRoundTrip(t *testing.T) {
	d := testDict()
	p := NewParser(diag.Discard())
	rec, err := p.ParseLine(d, "chr1\t100\trs1\tA\tG\t50\tPASS\tDP=10\tGT:DP\t0/1:20")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}

	var buf bytes.Buffer
	if err := rec.WriteBin(&buf); err != nil {
		t.Fatalf("WriteBin: %v", err)
	}
	got, err := ReadBin(&buf)
	if err != nil {
		t.Fatalf("ReadBin: %v", err)
	}
	if got.Rid != rec.Rid || got.Pos != rec.Pos || got.Rlen != rec.Rlen {
		t.Fatalf("round trip fixed fields mismatch: got %+v, want %+v", got, rec)
	}
	if got.NAllele != rec.NAllele || got.NInfo != rec.NInfo || got.NFmt != rec.NFmt || got.NSample != rec.NSample {
		t.Fatalf("round trip counts mismatch: got %+v, want %+v", got, rec)
	}
	if !bytes.Equal(got.Shared, rec.Shared) || !bytes.Equal(got.Individual, rec.Individual) {
		t.Fatalf("round trip streams mismatch")
	}

	var text bytes.Buffer
	if err := got.WriteText(&text, d); err != nil {
		t.Fatalf("WriteText after bin round trip: %v", err)
	}
	want := "chr1\t100\trs1\tA\tG\t50\tPASS\tDP=10\tGT:DP\t0/1:20"
	if text.String() != want {
		t.Fatalf("WriteText = %q, want %q", text.String(), want)
	}
}

func TestGTPhaseBitRoundTrip(t *testing.T) {
	d := testDict()
	p := NewParser(diag.Discard())
	rec, err := p.ParseLine(d, "chr1\t1\t.\tA\tG,T\t.\t.\t.\tGT\t0/1\t1|2\t.\t./.")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	var buf bytes.Buffer
	if err := rec.WriteText(&buf, d); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	want := "chr1\t1\t.\tA\tG,T\t.\t.\t.\tGT\t0/1\t1|2\t.\t./."
	if buf.String() != want {
		t.Fatalf("WriteText = %q, want %q", buf.String(), want)
	}
}
