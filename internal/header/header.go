// Package header defines the IHDR chunk payload: the image's
// dimensions, color type, compression mode, quality, and bit depth.
package header

import "github.com/wk-codec/wk/internal/wkerr"

// ColorType identifies the pixel layout.
type ColorType uint8

const (
	Gray ColorType = iota
	GrayAlpha
	RGB
	RGBA
)

// String returns the color type's name.
func (c ColorType) String() string {
	switch c {
	case Gray:
		return "Gray"
	case GrayAlpha:
		return "GrayA"
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	default:
		return "Unknown"
	}
}

// Channels returns the number of samples per pixel for the color type.
func (c ColorType) Channels() int {
	switch c {
	case Gray:
		return 1
	case GrayAlpha:
		return 2
	case RGB:
		return 3
	case RGBA:
		return 4
	default:
		return 0
	}
}

// HasAlpha reports whether the color type carries an alpha channel.
func (c ColorType) HasAlpha() bool {
	return c == GrayAlpha || c == RGBA
}

// Compression identifies the coding path used for the image payload.
type Compression uint8

const (
	Lossless Compression = iota
	Lossy
)

// String returns the compression mode's name.
func (c Compression) String() string {
	switch c {
	case Lossless:
		return "Lossless"
	case Lossy:
		return "Lossy"
	default:
		return "Unknown"
	}
}

// PayloadLen is the fixed size in bytes of the marshaled IHDR payload.
const PayloadLen = 14

// Header holds the decoded IHDR chunk fields.
type Header struct {
	Width         uint32
	Height        uint32
	ColorType     ColorType
	Compression   Compression
	Quality       uint8
	HasAlpha      bool
	HasAnimation  bool
	BitDepth      uint8
}

// Validate checks the invariants the data model assigns to the
// header: positive dimensions, a recognized color_type, alpha
// consistency, and a reserved quality of 0 for lossless images.
func (h *Header) Validate() error {
	if h.Width == 0 || h.Height == 0 {
		return wkerr.New(wkerr.MalformedContainer, "width and height must be at least 1")
	}
	if h.ColorType.Channels() == 0 {
		return wkerr.Newf(wkerr.UnsupportedFeature, "unknown color_type %d", h.ColorType)
	}
	if h.HasAlpha != h.ColorType.HasAlpha() {
		return wkerr.Newf(wkerr.MalformedContainer, "has_alpha=%v inconsistent with color_type %s", h.HasAlpha, h.ColorType)
	}
	if h.Compression == Lossless && h.Quality != 0 {
		return wkerr.New(wkerr.MalformedContainer, "quality must be 0 for lossless images")
	}
	if h.Compression == Lossy && (h.Quality < 1 || h.Quality > 100) {
		return wkerr.Newf(wkerr.MalformedContainer, "quality %d out of range [1,100] for lossy image", h.Quality)
	}
	return nil
}

// Bytes marshals the header into its 14-byte IHDR payload form.
func (h *Header) Bytes() []byte {
	out := make([]byte, 0, PayloadLen)
	var w32 [4]byte
	putU32LE(w32[:], h.Width)
	out = append(out, w32[:]...)
	putU32LE(w32[:], h.Height)
	out = append(out, w32[:]...)
	out = append(out, byte(h.ColorType))
	out = append(out, byte(h.Compression))
	out = append(out, h.Quality)
	out = append(out, boolByte(h.HasAlpha))
	out = append(out, boolByte(h.HasAnimation))
	out = append(out, h.BitDepth)
	return out
}

// Parse decodes a 14-byte IHDR payload into a Header. It does not
// call Validate; callers needing strict validation should do so
// explicitly.
func Parse(payload []byte) (*Header, error) {
	if len(payload) != PayloadLen {
		return nil, wkerr.Newf(wkerr.MalformedContainer, "IHDR payload is %d bytes, want %d", len(payload), PayloadLen)
	}
	h := &Header{
		Width:        u32LE(payload[0:4]),
		Height:       u32LE(payload[4:8]),
		ColorType:    ColorType(payload[8]),
		Compression:  Compression(payload[9]),
		Quality:      payload[10],
		HasAlpha:     payload[11] != 0,
		HasAnimation: payload[12] != 0,
		BitDepth:     payload[13],
	}
	return h, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func putU32LE(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

func u32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
