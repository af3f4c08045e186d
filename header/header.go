// Package header parses and serializes the meta-line text block shared by
// VCF-TEXT (leading lines) and VCF-BIN (length-prefixed text following the
// "BCF\2" magic), populating a dict.Dict with CONTIG/ID/SAMPLE entries as
// it goes.
//
// ref: SPEC_FULL.md §4.3
package header

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/chromacode/vcf/diag"
	"github.com/chromacode/vcf/dict"
	"github.com/chromacode/vcf/refidx"
)

const binMagic = "BCF\x02"

// Header holds the raw meta-line text (as it was parsed or will be
// written, one "##..." line per entry plus the final "#CHROM..." column
// line, newline-separated, NUL-terminated) and the Dict built from it.
type Header struct {
	Text    []byte
	Dict    *dict.Dict
	Samples []string
}

// ParseOptions configures Parse. The zero value parses with no reference
// index and a default Logger.
type ParseOptions struct {
	// Ref, if non-nil, supplies ##contig lines to synthesize immediately
	// before the column header line, for input that omits them.
	Ref refidx.ReferenceIndex
	Log *diag.Logger
}

// MetaLine is a single classified "##KEY=<...>" meta-line.
type MetaLine struct {
	Key    string // INFO, FILTER, FORMAT, contig, or "" for an opaque line
	Fields map[string]string
}

// ParseMetaLine classifies a "##KEY=<ID=...,...>" line, splitting its
// angle-bracket body into KEY=VALUE fields. Quoted values (Description="...")
// may contain commas and escaped quotes; unquoted values run to the next
// comma or closing angle bracket. Lines that are not recognized
// ##INFO/##FILTER/##FORMAT/##contig declarations return ok=false without
// error — the caller keeps them as opaque text.
//
// ref: original_source/vcf.c, vcf_hdr_parse_line2
func ParseMetaLine(line string) (ml MetaLine, ok bool) {
	if !strings.HasPrefix(line, "##") {
		return MetaLine{}, false
	}
	body := line[2:]
	eq := strings.IndexByte(body, '=')
	if eq < 0 {
		return MetaLine{}, false
	}
	key := body[:eq]
	switch key {
	case "INFO", "FILTER", "FORMAT", "contig":
	default:
		return MetaLine{}, false
	}
	lt := strings.IndexByte(body, '<')
	gt := strings.LastIndexByte(body, '>')
	if lt < 0 || gt < lt {
		return MetaLine{}, false
	}
	fields := map[string]string{}
	inner := body[lt+1 : gt]
	for len(inner) > 0 {
		feq := strings.IndexByte(inner, '=')
		if feq < 0 {
			break
		}
		fkey := inner[:feq]
		rest := inner[feq+1:]
		var val string
		if len(rest) > 0 && rest[0] == '"' {
			// quoted value: scan to the next unescaped quote.
			i := 1
			var b strings.Builder
			for i < len(rest) && rest[i] != '"' {
				if rest[i] == '\\' && i+1 < len(rest) {
					b.WriteByte(rest[i+1])
					i += 2
					continue
				}
				b.WriteByte(rest[i])
				i++
			}
			val = b.String()
			if i >= len(rest) {
				// unterminated quote: take what we have and stop.
				fields[fkey] = val
				break
			}
			i++ // skip closing quote
			if i < len(rest) && rest[i] == ',' {
				i++
			}
			rest = rest[i:]
		} else {
			c := strings.IndexByte(rest, ',')
			if c < 0 {
				val = rest
				rest = ""
			} else {
				val = rest[:c]
				rest = rest[c+1:]
			}
		}
		fields[fkey] = val
		inner = rest
	}
	return MetaLine{Key: key, Fields: fields}, true
}

// valueType maps a VCF "Type=" attribute to a dict.ValueType.
func valueType(s string) (dict.ValueType, bool) {
	switch s {
	case "Integer":
		return dict.ValInteger, true
	case "Float":
		return dict.ValFloat, true
	case "String":
		return dict.ValString, true
	case "Character":
		return dict.ValCharacter, true
	case "Flag":
		return dict.ValFlag, true
	default:
		return 0, false
	}
}

// cardinality maps a VCF "Number=" attribute to a dict.Cardinality and
// fixed count (count is only meaningful when the returned Cardinality is
// CardFixed).
func cardinality(s string) (dict.Cardinality, int) {
	switch s {
	case "A":
		return dict.CardAllele, 0
	case "G":
		return dict.CardGenotype, 0
	case "R":
		return dict.CardAllAllele, 0
	case ".":
		return dict.CardVariable, 0
	default:
		if n, err := strconv.Atoi(s); err == nil {
			return dict.CardFixed, n
		}
		return dict.CardVariable, 0
	}
}

func siteFor(key string) dict.Site {
	switch key {
	case "FILTER":
		return dict.SiteFilter
	case "FORMAT":
		return dict.SiteFormat
	default: // INFO
		return dict.SiteInfo
	}
}

// applyMetaLine folds a classified meta-line into d, mirroring
// vcf_hdr_parse1's per-category insert/merge behavior.
func applyMetaLine(d *dict.Dict, ml MetaLine, log *diag.Logger) {
	if ml.Key == "contig" {
		id, ok := ml.Fields["ID"]
		if !ok {
			log.Warnf("##contig line missing ID, skipped")
			return
		}
		length := -1
		if ls, ok := ml.Fields["length"]; ok {
			if n, err := strconv.Atoi(ls); err == nil {
				length = n
			}
		}
		if _, exists := d.Get(dict.CONTIG, id); exists {
			log.Warnf("duplicated contig name %q, skipped", id)
			return
		}
		e := d.Put(dict.CONTIG, id)
		e.Length = length
		return
	}

	id, ok := ml.Fields["ID"]
	if !ok {
		log.Warnf("##%s line missing ID, skipped", ml.Key)
		return
	}
	site := siteFor(ml.Key)
	vt, vtOK := valueType(ml.Fields["Type"])
	card, count := cardinality(ml.Fields["Number"])

	if ml.Key == "FILTER" {
		vt, vtOK, card, count = dict.ValFlag, true, dict.CardFixed, 0
	} else if vtOK && vt == dict.ValFlag {
		if count != 0 && log.Level() >= diag.LevelWarning {
			log.Warnf("ignoring Number for Flag-typed %s/%s", ml.Key, id)
		}
		card, count = dict.CardFixed, 0
	} else if card == dict.CardFixed && count == 0 {
		// Number=0 on a non-FILTER line forces Flag, per vcf_hdr_parse_line2.
		vt, vtOK = dict.ValFlag, true
	}
	if !vtOK {
		log.Warnf("##%s/%s missing or unrecognized Type, skipped", ml.Key, id)
		return
	}
	d.PutID(id, site, vt, card, count)
}

// Parse reads meta lines from br one line at a time until the "#CHROM"
// column header line, building a synced Dict. If opts.Ref is non-nil,
// ##contig lines are synthesized from it immediately before the column
// header line, exactly as htslib's vcf_hdr_read does when an external
// reference index is attached. br is consumed only as far as the column
// header line, so the caller can keep reading subsequent record lines
// from the same buffered reader afterward.
func Parse(br *bufio.Reader, opts ParseOptions) (*Header, error) {
	log := opts.Log
	if log == nil {
		log = diag.Default()
	}
	d := dict.New()
	var text bytes.Buffer

	var samples []string
	sawColumnLine := false
	for {
		raw, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "header: read line")
		}
		atEOF := err == io.EOF
		line := strings.TrimRight(raw, "\r\n")
		if line == "" {
			if atEOF {
				break
			}
			continue
		}
		if line[0] != '#' {
			return nil, errors.New("header: no sample line before variant data")
		}
		if len(line) < 2 || line[1] != '#' {
			// the "#CHROM..." column header line: insert contigs from
			// opts.Ref first, then PASS, then parse the sample columns.
			if opts.Ref != nil {
				for {
					name, length, ok, err := opts.Ref.Next()
					if err != nil {
						return nil, errors.Wrap(err, "header: read reference index")
					}
					if !ok {
						break
					}
					text.WriteString("##contig=<ID=")
					text.WriteString(name)
					text.WriteString(",length=")
					text.WriteString(strconv.Itoa(length))
					text.WriteString(">\n")
					if _, exists := d.Get(dict.CONTIG, name); !exists {
						e := d.Put(dict.CONTIG, name)
						e.Length = length
					}
				}
			}
			d.InsertPassIfMissing()
			samples = parseColumnLine(line)
			text.WriteString(line)
			sawColumnLine = true
			break
		}
		if ml, ok := ParseMetaLine(line); ok {
			applyMetaLine(d, ml, log)
		}
		text.WriteString(line)
		text.WriteByte('\n')
	}
	if !sawColumnLine {
		return nil, errors.New("header: missing #CHROM column header line")
	}
	for _, s := range samples {
		d.Put(dict.SAMPLE, s)
	}
	d.Sync()
	text.WriteByte(0)
	return &Header{Text: text.Bytes(), Dict: d, Samples: samples}, nil
}

// parseColumnLine extracts sample names from the "#CHROM...FORMAT\tS1\tS2"
// column header line, mirroring vcf_hdr_parse1's tab-split loop over
// columns past the 9th.
func parseColumnLine(line string) []string {
	cols := strings.Split(line, "\t")
	if len(cols) <= 9 {
		return nil
	}
	return cols[9:]
}

// WriteBin writes h in VCF-BIN header framing: "BCF\2" magic, a
// little-endian uint32 text length (including the trailing NUL already
// present in h.Text), then the text itself.
func (h *Header) WriteBin(w io.Writer) error {
	if _, err := w.Write([]byte(binMagic)); err != nil {
		return errors.Wrap(err, "header: write magic")
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(h.Text)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return errors.Wrap(err, "header: write text length")
	}
	if _, err := w.Write(h.Text); err != nil {
		return errors.Wrap(err, "header: write text")
	}
	return nil
}

// ReadBin reads a VCF-BIN header (magic + length-prefixed text) from r and
// re-derives its Dict by re-parsing the text, exactly as vcf_hdr_read does
// after loading h->text from the binary stream.
func ReadBin(r io.Reader, log *diag.Logger) (*Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(err, "header: read magic")
	}
	if string(magic[:]) != binMagic {
		return nil, errors.Errorf("header: bad magic %q, want %q", magic, binMagic)
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, errors.Wrap(err, "header: read text length")
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	text := make([]byte, n)
	if _, err := io.ReadFull(r, text); err != nil {
		return nil, errors.Wrap(err, "header: read text")
	}
	br := bufio.NewReader(bytes.NewReader(bytes.TrimRight(text, "\x00")))
	return Parse(br, ParseOptions{Log: log})
}
