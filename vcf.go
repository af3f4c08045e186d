/*
Links:
	https://samtools.github.io/hts-specs/VCFv4.2.pdf
	https://github.com/samtools/htslib/blob/develop/vcf.c
*/

// Package vcf provides bidirectional conversion between VCF-TEXT (the
// tab-delimited Variant Call Format) and VCF-BIN (its typed binary
// encoding), tying together the header parser, the dictionary, the
// record codec and their collaborating I/O shims into the Reader/Writer
// pair most callers use.
package vcf

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/chromacode/vcf/diag"
	"github.com/chromacode/vcf/dict"
	"github.com/chromacode/vcf/header"
	"github.com/chromacode/vcf/internal/blockio"
	"github.com/chromacode/vcf/record"
	"github.com/chromacode/vcf/refidx"
)

// BinSignature is the magic 4 bytes at the start of a VCF-BIN stream.
const BinSignature = "BCF\x02"

// Format selects which on-disk encoding a Reader or Writer speaks.
type Format int

// The two encodings this package converts between.
const (
	FormatText Format = iota
	FormatBin
)

// ReaderOptions configures OpenReader/NewReader.
type ReaderOptions struct {
	// Ref, if non-nil, synthesizes ##contig lines for VCF-TEXT input that
	// omits them. Ignored for VCF-BIN input, whose header text is already
	// complete.
	Ref refidx.ReferenceIndex
	Log *diag.Logger
}

// Reader reads successive Records from a VCF-TEXT or VCF-BIN stream,
// sharing one Header and Dict across the whole stream.
type Reader struct {
	Header *header.Header
	Dict   *dict.Dict

	format Format
	br     *bufio.Reader
	parser *record.Parser
}

// OpenReader opens the named file and returns a Reader over it, guessing
// the format from its first four bytes.
func OpenReader(filePath string, opts ReaderOptions) (r *Reader, err error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "vcf: open")
	}
	r, err = NewReader(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// NewReader detects whether src holds VCF-TEXT or VCF-BIN (by peeking for
// the "BCF\2" signature) and returns a Reader positioned just after the
// header, ready for repeated calls to Read.
func NewReader(src io.Reader, opts ReaderOptions) (r *Reader, err error) {
	log := opts.Log
	if log == nil {
		log = diag.Default()
	}
	dr, err := blockio.DetectAndDecompress(src)
	if err != nil {
		return nil, errors.Wrap(err, "vcf: detect gzip framing")
	}
	br := bufio.NewReader(dr)

	sig, peekErr := br.Peek(len(BinSignature))
	isBin := peekErr == nil && string(sig) == BinSignature

	r = &Reader{format: FormatText, br: br, parser: record.NewParser(log)}
	if isBin {
		r.format = FormatBin
		h, err := header.ReadBin(br, log)
		if err != nil {
			return nil, errors.Wrap(err, "vcf: read binary header")
		}
		r.Header, r.Dict = h, h.Dict
		return r, nil
	}

	h, err := header.Parse(br, header.ParseOptions{Ref: opts.Ref, Log: log})
	if err != nil {
		return nil, errors.Wrap(err, "vcf: parse text header")
	}
	r.Header, r.Dict = h, h.Dict
	return r, nil
}

// Read returns the next Record, or io.EOF once the stream is exhausted.
// For VCF-TEXT input, a record-level skip (e.g. an undeclared CHROM) is
// itself transparent to Read: it advances to the next line and retries
// rather than ever returning a nil Record alongside a nil error.
func (r *Reader) Read() (*record.Record, error) {
	if r.format == FormatBin {
		rec, err := record.ReadBin(r.br)
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, errors.Wrap(err, "vcf: read binary record")
		}
		return rec, nil
	}

	for {
		line, err := r.br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "vcf: read line")
		}
		atEOF := err == io.EOF
		trimmed := trimEOL(line)
		if trimmed == "" {
			if atEOF {
				return nil, io.EOF
			}
			continue
		}
		rec, perr := r.parser.ParseLine(r.Dict, trimmed)
		if perr != nil {
			return nil, errors.Wrap(perr, "vcf: parse record")
		}
		if rec == nil {
			if atEOF {
				return nil, io.EOF
			}
			continue
		}
		return rec, nil
	}
}

func trimEOL(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// Writer serializes a Header followed by a stream of Records in either
// VCF-TEXT or VCF-BIN encoding.
type Writer struct {
	w      io.Writer
	format Format
	dict   *dict.Dict
}

// NewWriter returns a Writer that encodes in the given format, writing h
// immediately.
func NewWriter(w io.Writer, h *header.Header, format Format) (*Writer, error) {
	switch format {
	case FormatBin:
		if err := h.WriteBin(w); err != nil {
			return nil, errors.Wrap(err, "vcf: write binary header")
		}
	case FormatText:
		text := bytes.TrimRight(h.Text, "\x00")
		if _, err := w.Write(text); err != nil {
			return nil, errors.Wrap(err, "vcf: write text header")
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return nil, errors.Wrap(err, "vcf: write text header separator")
		}
	default:
		return nil, errors.Errorf("vcf: unknown format %d", format)
	}
	return &Writer{w: w, format: format, dict: h.Dict}, nil
}

// Write serializes one Record in the Writer's format.
func (w *Writer) Write(rec *record.Record) error {
	switch w.format {
	case FormatBin:
		if err := rec.WriteBin(w.w); err != nil {
			return errors.Wrap(err, "vcf: write binary record")
		}
	case FormatText:
		if err := rec.WriteText(w.w, w.dict); err != nil {
			return errors.Wrap(err, "vcf: write text record")
		}
		if _, err := io.WriteString(w.w, "\n"); err != nil {
			return errors.Wrap(err, "vcf: write record newline")
		}
	}
	return nil
}

// Convert streams every Record from r into w, stopping at the first error
// other than io.EOF.
func Convert(w *Writer, r *Reader) (n int, err error) {
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := w.Write(rec); err != nil {
			return n, err
		}
		n++
	}
}
