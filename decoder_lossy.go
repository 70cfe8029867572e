package wk

import (
	"bytes"

	"github.com/wk-codec/wk/internal/bio"
	"github.com/wk-codec/wk/internal/colorspace"
	"github.com/wk-codec/wk/internal/deflate"
	"github.com/wk-codec/wk/internal/header"
	"github.com/wk-codec/wk/internal/quant"
	"github.com/wk-codec/wk/internal/wkerr"
)

const idlsFlagsLen = 3
const idlsQuantTableBytes = 128 // 64 entries * 2 bytes

// codeChannelDecode is the decode-side counterpart to
// codeChannelEncode: it reads blocksX*blocksY blocks from r in raster
// order, forming each prediction from already-reconstructed
// neighbours exactly as the encoder did.
func codeChannelDecode(r *bio.Reader, width, height int, qt *[64]uint16, useIntra, adaptiveQP bool) (*colorspace.Plane, error) {
	blocksX := width / blockSize
	blocksY := height / blockSize
	recon := colorspace.NewPlane(width, height)

	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			ctx := buildContext(recon, bx, by, blocksX)
			rec, err := decodeBlock(r, ctx, qt, useIntra, adaptiveQP)
			if err != nil {
				return nil, err
			}
			x0, y0 := bx*blockSize, by*blockSize
			for y := 0; y < blockSize; y++ {
				for x := 0; x < blockSize; x++ {
					recon.Set(x0+x, y0+y, rec[y*blockSize+x])
				}
			}
		}
	}
	return recon, nil
}

// decodeLossy reverses encodeLossy.
func decodeLossy(h *header.Header, payload []byte) (*Surface, error) {
	if len(payload) < idlsFlagsLen+2*idlsQuantTableBytes+4 {
		return nil, wkerr.New(wkerr.MalformedContainer, "IDLS payload shorter than its fixed header")
	}

	useCabac := payload[0] != 0
	useIntra := payload[1] != 0
	adaptiveQP := payload[2] != 0
	if useCabac {
		return nil, wkerr.New(wkerr.UnsupportedFeature, "cabac")
	}

	off := idlsFlagsLen
	luma := parseZigZagTable(payload[off : off+idlsQuantTableBytes])
	off += idlsQuantTableBytes
	chroma := parseZigZagTable(payload[off : off+idlsQuantTableBytes])
	off += idlsQuantTableBytes

	compressedLen := bio.U32LE(payload[off : off+4])
	off += 4
	if off+int(compressedLen) > len(payload) {
		return nil, wkerr.New(wkerr.MalformedContainer, "compressed_length exceeds IDLS payload bounds")
	}
	compressed := payload[off : off+int(compressedLen)]

	inner, err := deflate.Decompress(compressed)
	if err != nil {
		return nil, err
	}

	threeOrFourChannel := h.ColorType == header.RGB || h.ColorType == header.RGBA
	width, height := int(h.Width), int(h.Height)
	paddedW, paddedH := roundUp(width, blockSize), roundUp(height, blockSize)

	bitLen := bitstreamByteLen(inner, h)
	if bitLen > len(inner) {
		return nil, wkerr.New(wkerr.MalformedContainer, "IDLS bitstream shorter than the block grid requires")
	}
	bitReader := bio.NewReader(bytes.NewReader(inner[:bitLen]))

	ps := &planeSet{}
	yRecon, err := codeChannelDecode(bitReader, paddedW, paddedH, &luma, useIntra, adaptiveQP)
	if err != nil {
		return nil, err
	}
	ps.Y = cropPlane(yRecon, width, height)

	if threeOrFourChannel {
		cbRecon, err := codeChannelDecode(bitReader, paddedW, paddedH, &chroma, useIntra, adaptiveQP)
		if err != nil {
			return nil, err
		}
		crRecon, err := codeChannelDecode(bitReader, paddedW, paddedH, &chroma, useIntra, adaptiveQP)
		if err != nil {
			return nil, err
		}
		ps.Cb = cropPlane(cbRecon, width, height)
		ps.Cr = cropPlane(crRecon, width, height)
	}

	if h.ColorType.HasAlpha() {
		raw := inner[bitLen:]
		want := width * height
		if len(raw) != want {
			return nil, wkerr.Newf(wkerr.MalformedContainer, "raw alpha plane is %d bytes, want %d", len(raw), want)
		}
		ps.A = &colorspace.Plane{Width: width, Height: height, Stride: width, Pix: raw}
	}

	return combinePlanes(ps, h.ColorType, width, height), nil
}

// bitstreamByteLen reports how many leading bytes of inner belong to
// the bit-packed coefficient stream, i.e. everything before a raw
// alpha plane possibly appended after it. Non-alpha color types use
// the whole buffer.
func bitstreamByteLen(inner []byte, h *header.Header) int {
	if !h.ColorType.HasAlpha() {
		return len(inner)
	}
	return len(inner) - int(h.Width)*int(h.Height)
}

func parseZigZagTable(b []byte) [64]uint16 {
	var zz [64]uint16
	for i := 0; i < 64; i++ {
		zz[i] = bio.U16LE(b[i*2 : i*2+2])
	}
	var natural [64]uint16
	for i := range natural {
		natural[i] = zz[quant.ZigZag[i]]
	}
	return natural
}
