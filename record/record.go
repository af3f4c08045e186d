// Package record implements the per-variant parser and emitter: VCF-TEXT's
// nine leading columns (CHROM..FORMAT) plus per-sample columns are parsed
// into the "shared" and "individual" typed-value byte streams that make up
// VCF-BIN's record body, and the same two streams are walked back into
// VCF-TEXT or re-serialized as VCF-BIN.
//
// ref: SPEC_FULL.md §4.4, §4.5
package record

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/icza/bitio"
	"github.com/pkg/errors"

	"github.com/chromacode/vcf/diag"
	"github.com/chromacode/vcf/dict"
	"github.com/chromacode/vcf/internal/tval"
)

// fixedHeaderSize is the byte width of a record's fixed-layout prefix:
// rid, pos, rlen (int32 each), qual (float32), then two packed uint32
// words (n_info:16|n_allele:16, n_fmt:8|n_sample:24).
const fixedHeaderSize = 24

// Record holds one parsed variant: the fixed scalar fields plus the two
// typed-value byte streams produced by ParseLine (or read back with
// ReadBin).
type Record struct {
	Rid     int32
	Pos     int32 // 0-based
	Rlen    int32
	Qual    float32
	NAllele int
	NInfo   int
	NFmt    int
	NSample int

	// Shared holds ID, REF, ALT, FILTER and INFO as typed-value bytes, in
	// that order.
	Shared []byte

	// Individual holds, for each FORMAT field in declaration order: a
	// typed int1 dictionary id, then a typed vector whose declared count
	// is the per-sample element stride and whose payload covers all
	// NSample samples back to back.
	Individual []byte
}

// Parser parses VCF-TEXT lines into Records. It owns a reusable scratch
// buffer for building the Individual stream, so a single Parser value must
// not be used from more than one goroutine at a time; construct one
// Parser per goroutine to parse in parallel against a shared, already-
// Sync'd dict.Dict.
type Parser struct {
	Log *diag.Logger

	sharedBuf bytes.Buffer
	indivBuf  bytes.Buffer
}

// NewParser returns a Parser reporting diagnostics through log (or
// diag.Default() if log is nil).
func NewParser(log *diag.Logger) *Parser {
	if log == nil {
		log = diag.Default()
	}
	return &Parser{Log: log}
}

// ParseLine parses one VCF-TEXT data line against d, returning nil, nil
// when the line names an undeclared contig (a record-level skip, per
// SPEC_FULL.md §7 — success, no record). ParseLine takes line as a Go
// string rather than a mutable byte buffer precisely so it never needs to
// write a NUL terminator into caller-owned memory the way the original
// tokenizer does (Open Question in spec.md §9): Go strings are immutable,
// so the same source line can be safely hande to ParseLine repeatedly or
// concurrently from other Parsers without risk of corrupting it.
func (p *Parser) ParseLine(d *dict.Dict, line string) (rec *Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("record: internal error parsing line: %v", r)
			rec = nil
		}
	}()

	cols := strings.SplitN(line, "\t", 9)
	if len(cols) < 8 {
		return nil, errors.New("record: fewer than 8 leading columns")
	}

	chrom, posStr, id, ref, alt, qualStr, filter, info := cols[0], cols[1], cols[2], cols[3], cols[4], cols[5], cols[6], cols[7]
	var formatAndSamples string
	if len(cols) > 8 {
		formatAndSamples = cols[8]
	}

	ctg, ok := d.Get(dict.CONTIG, chrom)
	if !ok {
		p.Log.Warnf("can't find %q in the sequence dictionary, record skipped", chrom)
		return nil, nil
	}

	pos, err := strconv.Atoi(posStr)
	if err != nil {
		return nil, errors.Wrapf(err, "record: bad POS %q", posStr)
	}

	rec = &Record{Rid: int32(ctg.ID), Pos: int32(pos - 1)}

	p.sharedBuf.Reset()
	bw := bitio.NewWriter(&p.sharedBuf)

	// ID
	if id == "." {
		if err := tval.EncodeSize(bw, 0, tval.Char); err != nil {
			return nil, err
		}
	} else if err := tval.EncodeChar(bw, []byte(id)); err != nil {
		return nil, err
	}

	// REF
	if err := tval.EncodeChar(bw, []byte(ref)); err != nil {
		return nil, err
	}
	rec.NAllele = 1
	rec.Rlen = int32(len(ref))

	// ALT
	if alt != "." && alt != "" {
		for _, a := range strings.Split(alt, ",") {
			if err := tval.EncodeChar(bw, []byte(a)); err != nil {
				return nil, err
			}
			rec.NAllele++
		}
	}

	// QUAL
	if qualStr == "." {
		rec.Qual = tval.MissingFloat32()
	} else {
		q, err := strconv.ParseFloat(qualStr, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "record: bad QUAL %q", qualStr)
		}
		rec.Qual = float32(q)
	}

	// FILTER
	if filter == "." || filter == "" {
		if err := tval.EncodeIntVector(bw, nil, -1); err != nil {
			return nil, err
		}
	} else {
		var ids []int32
		for _, name := range strings.Split(filter, ";") {
			e, ok := d.Get(dict.ID, name)
			if !ok {
				p.Log.Warnf("undefined FILTER %q, dropped", name)
				continue
			}
			ids = append(ids, int32(e.ID))
		}
		if err := tval.EncodeIntVector(bw, ids, -1); err != nil {
			return nil, err
		}
	}

	// INFO
	if info == "." || info == "" {
		rec.NInfo = 0
	} else {
		for _, kv := range strings.Split(info, ";") {
			if kv == "" {
				continue
			}
			key, val, hasVal := kv, "", false
			if eq := strings.IndexByte(kv, '='); eq >= 0 {
				key, val, hasVal = kv[:eq], kv[eq+1:], true
			}
			e, ok := d.Get(dict.ID, key)
			if !ok {
				p.Log.Warnf("undefined INFO %q, dropped", key)
				continue
			}
			vt, _, _, declared := e.Site(dict.SiteInfo)
			if !declared {
				p.Log.Warnf("INFO %q not declared as INFO, dropped", key)
				continue
			}
			if err := tval.EncodeInt1(bw, int32(e.ID)); err != nil {
				return nil, err
			}
			rec.NInfo++
			switch {
			case !hasVal || vt == dict.ValFlag:
				if err := tval.EncodeSize(bw, 0, tval.Null); err != nil {
					return nil, err
				}
			case vt == dict.ValInteger:
				vals, err := parseIntCSV(val)
				if err != nil {
					return nil, err
				}
				if err := tval.EncodeIntVector(bw, vals, -1); err != nil {
					return nil, err
				}
				if key == "END" && len(vals) > 0 {
					rec.Rlen = vals[0] - rec.Pos
				}
			case vt == dict.ValFloat:
				vals, err := parseFloatCSV(val)
				if err != nil {
					return nil, err
				}
				if err := tval.EncodeFloatVector(bw, vals); err != nil {
					return nil, err
				}
			default: // String or Character
				if err := tval.EncodeChar(bw, []byte(val)); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := bw.Close(); err != nil {
		return nil, errors.Wrap(err, "record: close shared stream")
	}
	rec.Shared = append([]byte(nil), p.sharedBuf.Bytes()...)

	if formatAndSamples == "" {
		return rec, nil
	}
	if err := p.parseFormatAndSamples(d, formatAndSamples, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func parseIntCSV(s string) ([]int32, error) {
	parts := strings.Split(s, ",")
	out := make([]int32, len(parts))
	for i, p := range parts {
		if p == "." {
			out[i] = math.MinInt32
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Wrapf(err, "record: bad integer %q", p)
		}
		out[i] = int32(n)
	}
	return out, nil
}

func parseFloatCSV(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		if p == "." {
			out[i] = tval.MissingFloat32()
			continue
		}
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "record: bad float %q", p)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// fieldInfo tracks the per-FORMAT-field state accumulated across the
// two-pass sizing/fill algorithm, mirroring htslib's fmt_aux_t.
type fieldInfo struct {
	name   string
	entry  *dict.Entry
	isGT   bool
	vt     dict.ValueType
	maxM   int // max comma-separated sub-values seen for a non-GT field
	maxG   int // max allele count seen for GT (slash/pipe-separated)
	maxL   int // max string length seen for a String-typed field
	ints   []int32
	floats []float32
	strs   [][]byte
}

// parseFormatAndSamples implements the two-pass FORMAT/sample algorithm
// from original_source/vcf.c's vcf_parse1: a sizing pass computes, for
// each FORMAT field, the widest per-sample cardinality actually present
// (maxM/maxG/maxL), then a fill pass writes every sample's sub-values
// padded out to that common width with the type's missing sentinel.
func (p *Parser) parseFormatAndSamples(d *dict.Dict, s string, rec *Record) error {
	cols := strings.Split(s, "\t")
	formatNames := strings.Split(cols[0], ":")
	sampleCols := cols[1:]

	fields := make([]fieldInfo, 0, len(formatNames))
	for _, name := range formatNames {
		e, ok := d.Get(dict.ID, name)
		if !ok {
			p.Log.Warnf("FORMAT %q is not defined in the header, record's samples dropped", name)
			rec.NFmt = 0
			rec.NSample = 0
			return nil
		}
		vt, _, _, declared := e.Site(dict.SiteFormat)
		if !declared {
			p.Log.Warnf("FORMAT %q not declared as FORMAT, record's samples dropped", name)
			rec.NFmt = 0
			rec.NSample = 0
			return nil
		}
		if vt == dict.ValFlag {
			panic(errors.Errorf("FORMAT %q is declared as Flag", name))
		}
		fields = append(fields, fieldInfo{name: name, entry: e, isGT: name == "GT", vt: vt, maxM: 1, maxG: 1, maxL: 0})
	}
	rec.NFmt = len(fields)
	rec.NSample = len(sampleCols)

	// sizing pass
	for _, sampleCol := range sampleCols {
		subs := strings.Split(sampleCol, ":")
		for j := range fields {
			var sub string
			if j < len(subs) {
				sub = subs[j]
			}
			f := &fields[j]
			if f.isGT {
				g := strings.FieldsFunc(sub, func(r rune) bool { return r == '|' || r == '/' })
				if len(g) > f.maxG {
					f.maxG = len(g)
				}
				continue
			}
			switch f.vt {
			case dict.ValString, dict.ValCharacter:
				if len(sub) > f.maxL {
					f.maxL = len(sub)
				}
			default:
				m := 1
				if sub != "" {
					m = strings.Count(sub, ",") + 1
				}
				if m > f.maxM {
					f.maxM = m
				}
			}
		}
	}

	// fill pass
	for j := range fields {
		f := &fields[j]
		switch {
		case f.isGT:
			f.ints = make([]int32, 0, f.maxG*rec.NSample)
		case f.vt == dict.ValString || f.vt == dict.ValCharacter:
			f.strs = make([][]byte, 0, rec.NSample)
		case f.vt == dict.ValFloat:
			f.floats = make([]float32, 0, f.maxM*rec.NSample)
		default:
			f.ints = make([]int32, 0, f.maxM*rec.NSample)
		}
	}
	for _, sampleCol := range sampleCols {
		subs := strings.Split(sampleCol, ":")
		for j := range fields {
			var sub string
			if j < len(subs) {
				sub = subs[j]
			}
			f := &fields[j]
			if f.isGT {
				alleles := fillGT(sub, f.maxG)
				f.ints = append(f.ints, alleles...)
				continue
			}
			switch f.vt {
			case dict.ValString, dict.ValCharacter:
				padded := make([]byte, f.maxL)
				copy(padded, sub)
				f.strs = append(f.strs, padded)
			case dict.ValFloat:
				f.floats = append(f.floats, fillFloats(sub, f.maxM)...)
			default:
				f.ints = append(f.ints, fillInts(sub, f.maxM)...)
			}
		}
	}

	p.indivBuf.Reset()
	bw := bitio.NewWriter(&p.indivBuf)
	for _, f := range fields {
		if err := tval.EncodeInt1(bw, int32(f.entry.ID)); err != nil {
			return err
		}
		switch {
		case f.isGT:
			if err := tval.EncodeIntVector(bw, f.ints, f.maxG); err != nil {
				return err
			}
		case f.vt == dict.ValString || f.vt == dict.ValCharacter:
			if err := tval.EncodeSize(bw, f.maxL, tval.Char); err != nil {
				return err
			}
			for _, s := range f.strs {
				if _, err := bw.Write(s); err != nil {
					return errors.Wrap(err, "record: write FORMAT string payload")
				}
			}
		case f.vt == dict.ValFloat:
			if err := tval.EncodeSize(bw, f.maxM, tval.Float32); err != nil {
				return err
			}
			for _, v := range f.floats {
				var fb [4]byte
				binary.LittleEndian.PutUint32(fb[:], math.Float32bits(v))
				if _, err := bw.Write(fb[:]); err != nil {
					return errors.Wrap(err, "record: write FORMAT float payload")
				}
			}
		default:
			if err := tval.EncodeIntVector(bw, f.ints, f.maxM); err != nil {
				return err
			}
		}
	}
	if err := bw.Close(); err != nil {
		return errors.Wrap(err, "record: close individual stream")
	}
	rec.Individual = append([]byte(nil), p.indivBuf.Bytes()...)
	return nil
}

// fillGT parses one sample's GT sub-field ("0/1", "1|1", ".", "./.") into
// maxG phase-packed allele codes: (allele+1)<<1 | phased, padded with
// math.MinInt32 out to maxG.
func fillGT(sub string, maxG int) []int32 {
	out := make([]int32, 0, maxG)
	phased := int32(0)
	if sub != "" {
		i := 0
		for i < len(sub) {
			j := i
			for j < len(sub) && sub[j] != '|' && sub[j] != '/' {
				j++
			}
			tok := sub[i:j]
			if tok == "." {
				out = append(out, phased)
			} else if n, err := strconv.Atoi(tok); err == nil {
				out = append(out, (int32(n)+1)<<1|phased)
			} else {
				out = append(out, phased)
			}
			if j < len(sub) {
				if sub[j] == '|' {
					phased = 1
				} else {
					phased = 0
				}
			}
			i = j + 1
		}
	}
	for len(out) < maxG {
		out = append(out, math.MinInt32)
	}
	return out
}

func fillInts(sub string, maxM int) []int32 {
	out := make([]int32, 0, maxM)
	if sub != "" {
		for _, p := range strings.Split(sub, ",") {
			if p == "." {
				out = append(out, math.MinInt32)
			} else if n, err := strconv.Atoi(p); err == nil {
				out = append(out, int32(n))
			} else {
				out = append(out, math.MinInt32)
			}
		}
	} else {
		out = append(out, math.MinInt32)
	}
	for len(out) < maxM {
		out = append(out, math.MinInt32)
	}
	return out
}

func fillFloats(sub string, maxM int) []float32 {
	out := make([]float32, 0, maxM)
	if sub != "" {
		for _, p := range strings.Split(sub, ",") {
			if p == "." {
				out = append(out, tval.MissingFloat32())
			} else if f, err := strconv.ParseFloat(p, 32); err == nil {
				out = append(out, float32(f))
			} else {
				out = append(out, tval.MissingFloat32())
			}
		}
	} else {
		out = append(out, tval.MissingFloat32())
	}
	for len(out) < maxM {
		out = append(out, tval.MissingFloat32())
	}
	return out
}

// decodeCharField reads one CHAR typed-value (descriptor + payload) from
// the front of buf, returning its text and the remaining buffer.
func decodeCharField(buf []byte) (text string, rest []byte, err error) {
	count, t, rest, err := tval.DecodeSize(buf)
	if err != nil {
		return "", nil, err
	}
	if t != tval.Char && count != 0 {
		return "", nil, errors.Errorf("record: expected CHAR field, got %v", t)
	}
	b, rest, err := tval.DecodeChar(rest, count)
	if err != nil {
		return "", nil, err
	}
	return string(b), rest, nil
}

// WriteText renders rec as a single VCF-TEXT line (no trailing newline)
// against d, walking Shared then Individual exactly as vcf_format1 walks
// v->shared.s then v->indiv.s.
func (rec *Record) WriteText(w io.Writer, d *dict.Dict) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("record: internal error formatting line: %v", r)
		}
	}()

	var b bytes.Buffer
	ctg, ok := d.ByID(dict.CONTIG, int(rec.Rid))
	if !ok {
		return errors.Errorf("record: unknown contig id %d", rec.Rid)
	}
	b.WriteString(ctg.Name)
	b.WriteByte('\t')
	b.WriteString(strconv.Itoa(int(rec.Pos) + 1))
	b.WriteByte('\t')

	buf := rec.Shared

	// ID
	idText, buf, err := decodeCharField(buf)
	if err != nil {
		return err
	}
	if idText == "" {
		idText = "."
	}
	b.WriteString(idText)
	b.WriteByte('\t')

	// REF + ALT
	alleles := make([]string, 0, rec.NAllele)
	for i := 0; i < rec.NAllele; i++ {
		var a string
		a, buf, err = decodeCharField(buf)
		if err != nil {
			return err
		}
		alleles = append(alleles, a)
	}
	if len(alleles) == 0 {
		b.WriteString(".\t.\t")
	} else {
		b.WriteString(alleles[0])
		b.WriteByte('\t')
		if len(alleles) == 1 {
			b.WriteString(".\t")
		} else {
			b.WriteString(strings.Join(alleles[1:], ","))
			b.WriteByte('\t')
		}
	}

	// QUAL
	if tval.IsMissingFloat32Bits(math.Float32bits(rec.Qual)) {
		b.WriteString(".\t")
	} else {
		b.WriteString(strconv.FormatFloat(float64(rec.Qual), 'g', -1, 32))
		b.WriteByte('\t')
	}

	// FILTER
	count, t, rest, err := tval.DecodeSize(buf)
	if err != nil {
		return err
	}
	buf = rest
	if count == 0 {
		b.WriteString(".\t")
	} else {
		ids, rest, err := tval.DecodeIntVector(buf, count, t)
		if err != nil {
			return err
		}
		buf = rest
		for i, id := range ids {
			if i > 0 {
				b.WriteByte(';')
			}
			e, ok := d.ByID(dict.ID, int(id))
			if !ok {
				return errors.Errorf("record: unknown FILTER id %d", id)
			}
			b.WriteString(e.Name)
		}
		b.WriteByte('\t')
	}

	// INFO
	if rec.NInfo == 0 {
		b.WriteByte('.')
	} else {
		for i := 0; i < rec.NInfo; i++ {
			if i > 0 {
				b.WriteByte(';')
			}
			idVal, rest, err := tval.DecodeInt1(buf, 0)
			if err != nil {
				return err
			}
			buf = rest
			e, ok := d.ByID(dict.ID, int(idVal))
			if !ok {
				return errors.Errorf("record: unknown INFO id %d", idVal)
			}
			b.WriteString(e.Name)

			count, t, rest, err := tval.DecodeSize(buf)
			if err != nil {
				return err
			}
			if count == 0 {
				buf = rest
				continue
			}
			text, rest, err := tval.FormatVector(rest, count, t)
			if err != nil {
				return err
			}
			buf = rest
			if t != tval.Null {
				b.WriteByte('=')
				b.WriteString(text)
			}
		}
	}

	// FORMAT and individual sample columns
	if rec.NSample > 0 && rec.NFmt > 0 {
		if err := writeFormatAndSamples(&b, d, rec); err != nil {
			return err
		}
	}

	_, err = w.Write(b.Bytes())
	return err
}

// writeFormatAndSamples walks rec.Individual, which holds one (typed id,
// typed vector) pair per FORMAT field, and renders the FORMAT column plus
// every sample's colon-separated values. GT is decoded by decodeGT, which
// dispatches on the declared descriptor width rather than assuming int8 —
// the known bug in vcf_format1's GT-printing branch (it casts the payload
// straight to int8_t*) is fixed here.
func writeFormatAndSamples(b *bytes.Buffer, d *dict.Dict, rec *Record) error {
	type col struct {
		name   string
		isGT   bool
		stride int
		t      tval.Type
		data   []byte
	}
	buf := rec.Individual
	cols := make([]col, 0, rec.NFmt)
	for i := 0; i < rec.NFmt; i++ {
		idVal, rest, err := tval.DecodeInt1(buf, 0)
		if err != nil {
			return err
		}
		buf = rest
		e, ok := d.ByID(dict.ID, int(idVal))
		if !ok {
			return errors.Errorf("record: unknown FORMAT id %d", idVal)
		}
		stride, t, rest, err := tval.DecodeSize(buf)
		if err != nil {
			return err
		}
		width := stride * t.Size()
		total := width * rec.NSample
		if len(rest) < total {
			return errors.Errorf("record: truncated FORMAT payload for %s", e.Name)
		}
		cols = append(cols, col{name: e.Name, isGT: e.Name == "GT", stride: stride, t: t, data: rest[:total]})
		buf = rest[total:]
	}

	for i, c := range cols {
		if i == 0 {
			b.WriteByte('\t')
		} else {
			b.WriteByte(':')
		}
		b.WriteString(c.name)
	}
	for s := 0; s < rec.NSample; s++ {
		b.WriteByte('\t')
		for i, c := range cols {
			if i > 0 {
				b.WriteByte(':')
			}
			width := c.stride * c.t.Size()
			chunk := c.data[s*width : (s+1)*width]
			if c.isGT {
				text, err := decodeGT(chunk, c.stride, c.t)
				if err != nil {
					return err
				}
				b.WriteString(text)
				continue
			}
			text, _, err := tval.FormatVector(chunk, c.stride, c.t)
			if err != nil {
				return err
			}
			b.WriteString(text)
		}
	}
	return nil
}

// decodeGT renders one sample's GT sub-field from its phase-packed allele
// codes ((allele+1)<<1 | phased), dispatching the integer width on the
// descriptor's declared type (the fix for spec.md §9's flagged bug, where
// the reference implementation always read GT as int8 regardless of the
// width it was actually encoded at).
func decodeGT(buf []byte, stride int, t tval.Type) (string, error) {
	vals, _, err := tval.DecodeIntVector(buf, stride, t)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	n := 0
	for _, v := range vals {
		if v == math.MinInt32 {
			break
		}
		if n > 0 {
			if v&1 == 1 {
				b.WriteByte('|')
			} else {
				b.WriteByte('/')
			}
		}
		if v>>1 == 0 {
			b.WriteByte('.')
		} else {
			b.WriteString(strconv.Itoa(int(v>>1) - 1))
		}
		n++
	}
	if n == 0 {
		return ".", nil
	}
	return b.String(), nil
}

// WriteBin writes rec in VCF-BIN record framing: two little-endian uint32
// lengths (l_shared, l_indiv, neither counting the 24-byte fixed prefix
// that follows them), the 24-byte fixed prefix, then Shared and
// Individual. Mirrors htslib's vcf_write1, which writes x[0] = v->shared.l
// and copies the fixed 24 bytes via a separate memcpy.
func (rec *Record) WriteBin(w io.Writer) error {
	var hdr [fixedHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(rec.Rid))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(rec.Pos))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(rec.Rlen))
	binary.LittleEndian.PutUint32(hdr[12:16], math.Float32bits(rec.Qual))
	binary.LittleEndian.PutUint32(hdr[16:20], uint32(rec.NInfo)&0xFFFF|uint32(rec.NAllele)&0xFFFF<<16)
	binary.LittleEndian.PutUint32(hdr[20:24], uint32(rec.NFmt)&0xFF|uint32(rec.NSample)&0xFFFFFF<<8)

	var lens [8]byte
	binary.LittleEndian.PutUint32(lens[0:4], uint32(len(rec.Shared)))
	binary.LittleEndian.PutUint32(lens[4:8], uint32(len(rec.Individual)))

	if _, err := w.Write(lens[:]); err != nil {
		return errors.Wrap(err, "record: write lengths")
	}
	if _, err := w.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "record: write fixed header")
	}
	if _, err := w.Write(rec.Shared); err != nil {
		return errors.Wrap(err, "record: write shared stream")
	}
	if _, err := w.Write(rec.Individual); err != nil {
		return errors.Wrap(err, "record: write individual stream")
	}
	return nil
}

// ReadBin reads one VCF-BIN record from r.
func ReadBin(r io.Reader) (*Record, error) {
	var lens [8]byte
	if _, err := io.ReadFull(r, lens[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "record: read lengths")
	}
	lShared := binary.LittleEndian.Uint32(lens[0:4])
	lIndiv := binary.LittleEndian.Uint32(lens[4:8])

	var hdr [fixedHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, errors.Wrap(err, "record: read fixed header")
	}
	shared := make([]byte, lShared)
	if _, err := io.ReadFull(r, shared); err != nil {
		return nil, errors.Wrap(err, "record: read shared stream")
	}
	indiv := make([]byte, lIndiv)
	if _, err := io.ReadFull(r, indiv); err != nil {
		return nil, errors.Wrap(err, "record: read individual stream")
	}

	w16 := binary.LittleEndian.Uint32(hdr[16:20])
	w20 := binary.LittleEndian.Uint32(hdr[20:24])
	rec := &Record{
		Rid:        int32(binary.LittleEndian.Uint32(hdr[0:4])),
		Pos:        int32(binary.LittleEndian.Uint32(hdr[4:8])),
		Rlen:       int32(binary.LittleEndian.Uint32(hdr[8:12])),
		Qual:       math.Float32frombits(binary.LittleEndian.Uint32(hdr[12:16])),
		NInfo:      int(w16 & 0xFFFF),
		NAllele:    int(w16 >> 16),
		NFmt:       int(w20 & 0xFF),
		NSample:    int(w20 >> 8),
		Shared:     shared,
		Individual: indiv,
	}
	return rec, nil
}
