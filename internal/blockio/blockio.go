// Package blockio provides minimal concrete implementations of the
// block-compressed stream and gzip-aware line stream collaborators named
// in SPEC_FULL.md §6, sufficient to drive the codec end-to-end over plain
// files without pulling in a full bgzf implementation (explicitly out of
// scope, per SPEC_FULL.md §1).
//
// ref: SPEC_FULL.md §4.8
package blockio

import (
	"bufio"
	"compress/gzip"
	"io"

	"github.com/pkg/errors"
)

const defaultBufSize = 4096

// BlockStream is the minimal read/write/close surface a block-compressed
// stream (e.g. a real bgzf file) would need to expose to the codec.
type BlockStream interface {
	io.Reader
	io.Writer
	io.Closer
}

// PlainBlockStream wraps an io.ReadWriteCloser with buffering, applying no
// block compression of its own — the stand-in used when the caller's
// stream is already plain VCF-BIN bytes. Modeled on the small buffering
// wrapper shape of bufseekio.ReadSeeker, minus the seek support that VCF-BIN
// framing never needs.
type PlainBlockStream struct {
	rc  io.ReadWriteCloser
	br  *bufio.Reader
	bw  *bufio.Writer
}

// NewPlainBlockStream wraps rc with a default-sized buffered reader and
// writer.
func NewPlainBlockStream(rc io.ReadWriteCloser) *PlainBlockStream {
	return &PlainBlockStream{
		rc: rc,
		br: bufio.NewReaderSize(rc, defaultBufSize),
		bw: bufio.NewWriterSize(rc, defaultBufSize),
	}
}

// Read implements io.Reader.
func (p *PlainBlockStream) Read(b []byte) (int, error) {
	return p.br.Read(b)
}

// Write implements io.Writer.
func (p *PlainBlockStream) Write(b []byte) (int, error) {
	return p.bw.Write(b)
}

// Close flushes any buffered writes and closes the underlying stream.
func (p *PlainBlockStream) Close() error {
	if err := p.bw.Flush(); err != nil {
		p.rc.Close()
		return errors.Wrap(err, "blockio: flush")
	}
	return p.rc.Close()
}

// LineStream reads a text stream one delimiter-terminated line at a time,
// the shape header.Parse and record line scanning need from their input.
type LineStream interface {
	// GetLineUntil reads up to and including the next occurrence of sep,
	// or to EOF if sep is never found (delimFound reports which). The
	// returned line excludes sep.
	GetLineUntil(sep byte) (line []byte, delimFound bool, err error)
}

// GzipLineStream is a LineStream over a byte stream that may or may not be
// gzip-compressed: it peeks the first two bytes for the gzip magic number
// and transparently wraps a gzip.Reader only when present, otherwise
// reading the underlying bytes as-is.
type GzipLineStream struct {
	br *bufio.Reader
}

// NewGzipLineStream returns a GzipLineStream over r, auto-detecting gzip
// framing.
func NewGzipLineStream(r io.Reader) (*GzipLineStream, error) {
	dr, err := DetectAndDecompress(r)
	if err != nil {
		return nil, err
	}
	return &GzipLineStream{br: bufio.NewReaderSize(dr, defaultBufSize)}, nil
}

// DetectAndDecompress peeks the first two bytes of r for the gzip magic
// number (0x1f 0x8b) and, if present, returns r wrapped in a gzip.Reader;
// otherwise it returns r's bytes unchanged (buffered, so the peek never
// loses data). Shared by GzipLineStream and any other caller that wants
// transparent gzip support ahead of its own framing detection (e.g. the
// VCF-BIN signature peek in the vcf package's Reader).
func DetectAndDecompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, defaultBufSize)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "blockio: peek magic")
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "blockio: open gzip stream")
		}
		return gz, nil
	}
	return br, nil
}

// GetLineUntil implements LineStream.
func (g *GzipLineStream) GetLineUntil(sep byte) (line []byte, delimFound bool, err error) {
	line, err = g.br.ReadBytes(sep)
	if err == io.EOF {
		if len(line) == 0 {
			return nil, false, io.EOF
		}
		return line, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "blockio: read line")
	}
	return line[:len(line)-1], true, nil
}
