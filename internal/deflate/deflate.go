// Package deflate wraps the generic DEFLATE compressor used to
// shrink the lossy path's bit-packed coefficient payload after
// entropy coding. It uses klauspost/compress's flate implementation
// rather than the standard library's for its faster encoder, emitting
// a raw (headerless) DEFLATE stream as required by the container's
// IDLS payload layout.
package deflate

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/wk-codec/wk/internal/wkerr"
)

// DefaultLevel is the compression level used unless the caller
// requests otherwise; it favors ratio over speed since the codec is
// not on a hot encode loop.
const DefaultLevel = flate.DefaultCompression

// Compress returns the raw DEFLATE-compressed form of data.
func Compress(data []byte) ([]byte, error) {
	return CompressLevel(data, DefaultLevel)
}

// CompressLevel compresses data at the given flate compression level.
func CompressLevel(data []byte, level int) ([]byte, error) {
	buf := &bytes.Buffer{}
	w, err := flate.NewWriter(buf, level)
	if err != nil {
		return nil, wkerr.Wrap(wkerr.InternalInvariant, err, "constructing deflate writer")
	}
	if _, err := w.Write(data); err != nil {
		return nil, wkerr.Wrap(wkerr.IoError, err, "writing deflate stream")
	}
	if err := w.Close(); err != nil {
		return nil, wkerr.Wrap(wkerr.IoError, err, "closing deflate stream")
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, wkerr.Wrap(wkerr.CorruptChunk, err, "inflating deflate stream")
	}
	return out, nil
}
