// Package wk implements the WK still-image codec: an 8x8 block-based
// lossy path (color transform, intra-prediction, DCT, quantization,
// exp-Golomb coefficient coding, DEFLATE), a lossless path (per-row
// predictor selection and canonical Huffman residual coding), and the
// chunked container format both payloads travel in.
package wk

import (
	"bytes"

	"github.com/wk-codec/wk/internal/container"
	"github.com/wk-codec/wk/internal/header"
	"github.com/wk-codec/wk/internal/wkerr"
)

// Surface is a generic RGBA8 pixel surface: the external-format
// adapters convert to and from this shape, and it is the shape both
// Encode and Decode operate on at their API boundary.
type Surface struct {
	Width, Height int
	ColorType     header.ColorType
	// Pix holds interleaved samples, ColorType.Channels() bytes per
	// pixel, row-major with no padding between rows.
	Pix []byte
}

// Options configures the lossy encoder. The zero value selects the
// spec's baseline behavior: constant DC-128 prediction, no chroma
// subsampling, no adaptive quantization.
type Options struct {
	// UseIntra enables the angular and planar prediction modes; when
	// false every block uses constant DC-128 prediction (use_intra=0
	// in the container flags).
	UseIntra bool
	// AdaptiveQP enables a per-block quantizer delta derived from
	// local sample variance (use_adaptive_quant=1).
	AdaptiveQP bool
}

// Header mirrors the decoded IHDR fields returned by GetFileInfo and
// Decode.
type Header = header.Header

// EncodeLossy encodes surface at the given quality (clamped to
// [1,100]) using the lossy pipeline.
func EncodeLossy(surface *Surface, quality int, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := validateSurface(surface); err != nil {
		return nil, err
	}
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}

	h := &header.Header{
		Width:       uint32(surface.Width),
		Height:      uint32(surface.Height),
		ColorType:   surface.ColorType,
		Compression: header.Lossy,
		Quality:     uint8(quality),
		HasAlpha:    surface.ColorType.HasAlpha(),
		BitDepth:    8,
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	payload, err := encodeLossy(surface, quality, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := container.Write(&buf, &container.Container{Header: h, ImageData: payload}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeLossless encodes surface bit-exactly using the lossless path.
func EncodeLossless(surface *Surface, opts *Options) ([]byte, error) {
	if err := validateSurface(surface); err != nil {
		return nil, err
	}

	h := &header.Header{
		Width:       uint32(surface.Width),
		Height:      uint32(surface.Height),
		ColorType:   surface.ColorType,
		Compression: header.Lossless,
		Quality:     0,
		HasAlpha:    surface.ColorType.HasAlpha(),
		BitDepth:    8,
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	payload, err := encodeLossless(surface)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := container.Write(&buf, &container.Container{Header: h, ImageData: payload}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a complete WK file and reconstructs its pixel
// surface.
func Decode(data []byte) (*Surface, *Header, error) {
	c, err := container.Read(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	if err := c.Header.Validate(); err != nil {
		return nil, nil, err
	}
	if c.Header.BitDepth != 8 {
		return nil, nil, wkerr.Newf(wkerr.UnsupportedFeature, "bit_depth %d is not supported", c.Header.BitDepth)
	}

	var surface *Surface
	switch c.Header.Compression {
	case header.Lossless:
		surface, err = decodeLossless(c.Header, c.ImageData)
	case header.Lossy:
		surface, err = decodeLossy(c.Header, c.ImageData)
	default:
		err = wkerr.Newf(wkerr.UnsupportedFeature, "unknown compression mode %d", c.Header.Compression)
	}
	if err != nil {
		return nil, nil, err
	}
	return surface, c.Header, nil
}

// GetFileInfo parses only the IHDR chunk, returning header fields
// without decoding the image payload.
func GetFileInfo(data []byte) (*Header, error) {
	if len(data) < len(container.Magic) {
		return nil, wkerr.New(wkerr.InvalidMagic, "input shorter than the magic sequence")
	}
	if !bytes.Equal(data[:len(container.Magic)], container.Magic[:]) {
		return nil, wkerr.New(wkerr.InvalidMagic, "magic bytes do not match the WK signature")
	}

	r := bytes.NewReader(data[len(container.Magic):])
	chunk, err := container.ReadChunk(r)
	if err != nil {
		return nil, err
	}
	if chunk.Type != container.TypeIHDR {
		return nil, wkerr.Newf(wkerr.MalformedContainer, "expected IHDR first, got %q", chunk.Type)
	}
	return header.Parse(chunk.Payload)
}

func validateSurface(s *Surface) error {
	if s == nil {
		return wkerr.New(wkerr.InternalInvariant, "nil surface")
	}
	if s.Width <= 0 || s.Height <= 0 {
		return wkerr.New(wkerr.MalformedContainer, "surface width and height must be positive")
	}
	channels := s.ColorType.Channels()
	if channels == 0 {
		return wkerr.Newf(wkerr.UnsupportedFeature, "unknown color_type %d", s.ColorType)
	}
	want := s.Width * s.Height * channels
	if len(s.Pix) != want {
		return wkerr.Newf(wkerr.InternalInvariant, "surface pixel buffer is %d bytes, want %d", len(s.Pix), want)
	}
	return nil
}
