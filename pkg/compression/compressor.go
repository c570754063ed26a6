// Package compression provides streaming compression for export file
// destinations. The algorithm is selected by the destination filename's
// extension: a .gz, .zst, or .lz4 suffix wraps the file writer in the
// matching compressor, anything else passes through uncompressed.
package compression

import (
	"compress/gzip"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	lz4 "github.com/pierrec/lz4/v4"

	"github.com/biblioworks/marcflow/pkg/errors"
)

// Algorithm identifies a compression algorithm.
type Algorithm string

const (
	// None passes data through uncompressed.
	None Algorithm = "none"
	// Gzip compresses with gzip.
	Gzip Algorithm = "gzip"
	// Zstd compresses with zstandard.
	Zstd Algorithm = "zstd"
	// LZ4 compresses with lz4 frames.
	LZ4 Algorithm = "lz4"
)

// ForFilename returns the algorithm implied by the filename extension.
func ForFilename(name string) Algorithm {
	switch filepath.Ext(name) {
	case ".gz":
		return Gzip
	case ".zst":
		return Zstd
	case ".lz4":
		return LZ4
	}
	return None
}

// nopWriteCloser passes writes through and makes Close a no-op so the
// caller can close the compression layer without closing the file under
// it.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewWriter wraps w in a streaming compressor for the algorithm. Closing
// the returned writer flushes and terminates the compressed stream but
// leaves w open.
func NewWriter(w io.Writer, alg Algorithm) (io.WriteCloser, error) {
	switch alg {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create zstd writer")
		}
		return zw, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	}
	return nil, errors.Newf(errors.ErrorTypeConfig, "unknown compression algorithm %q", string(alg))
}

// zstdReadCloser adapts zstd's Close-without-error to io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (r zstdReadCloser) Close() error {
	r.Decoder.Close()
	return nil
}

// NewReader wraps r in a streaming decompressor for the algorithm.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create gzip reader")
		}
		return gr, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create zstd reader")
		}
		return zstdReadCloser{zr}, nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	}
	return nil, errors.Newf(errors.ErrorTypeConfig, "unknown compression algorithm %q", string(alg))
}
