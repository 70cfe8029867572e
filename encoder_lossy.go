package wk

import (
	"bytes"

	"github.com/wk-codec/wk/internal/bio"
	"github.com/wk-codec/wk/internal/colorspace"
	"github.com/wk-codec/wk/internal/deflate"
	"github.com/wk-codec/wk/internal/header"
	"github.com/wk-codec/wk/internal/intra"
	"github.com/wk-codec/wk/internal/quant"
)

const blockSize = intra.BlockSize

// buildContext gathers the reconstructed-neighbour prediction context
// for the block at block-coordinates (bx, by) out of a plane already
// padded to a block-size multiple, with blocksX columns of blocks.
// Blocks are coded in raster order, so every neighbour a context might
// reference has already been reconstructed by the time this runs.
func buildContext(recon *colorspace.Plane, bx, by, blocksX int) *intra.Context {
	var ctx intra.Context
	x0, y0 := bx*blockSize, by*blockSize

	ctx.TopAvailable = by > 0
	ctx.LeftAvailable = bx > 0

	if ctx.TopAvailable {
		ty := y0 - 1
		for i := 0; i < blockSize; i++ {
			ctx.Top[i] = recon.At(x0+i, ty)
		}
		if bx+1 < blocksX {
			for i := 0; i < blockSize; i++ {
				ctx.Top[blockSize+i] = recon.At(x0+blockSize+i, ty)
			}
		} else {
			for i := blockSize; i < 16; i++ {
				ctx.Top[i] = ctx.Top[blockSize-1]
			}
		}
	} else {
		for i := range ctx.Top {
			ctx.Top[i] = 128
		}
	}

	if ctx.LeftAvailable {
		lx := x0 - 1
		for i := 0; i < blockSize; i++ {
			ctx.Left[i] = recon.At(lx, y0+i)
		}
	} else {
		for i := range ctx.Left {
			ctx.Left[i] = 128
		}
	}

	if ctx.TopAvailable && ctx.LeftAvailable {
		ctx.TopLeft = recon.At(x0-1, y0-1)
	} else {
		ctx.TopLeft = 128
	}

	return &ctx
}

// codeChannelEncode block-codes an entire padded plane into w, raster
// order, and returns the plane of reconstructed samples (identical to
// what the decoder will produce) so chroma statistics and debugging
// tools can inspect it.
func codeChannelEncode(w *bio.Writer, src *colorspace.Plane, qt *[64]uint16, useIntra, adaptiveQP bool) (*colorspace.Plane, error) {
	blocksX := src.Width / blockSize
	blocksY := src.Height / blockSize
	recon := colorspace.NewPlane(src.Width, src.Height)

	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			var source [64]uint8
			x0, y0 := bx*blockSize, by*blockSize
			for y := 0; y < blockSize; y++ {
				for x := 0; x < blockSize; x++ {
					source[y*blockSize+x] = src.At(x0+x, y0+y)
				}
			}

			ctx := buildContext(recon, bx, by, blocksX)
			rec, err := encodeBlock(w, &source, ctx, qt, useIntra, adaptiveQP)
			if err != nil {
				return nil, err
			}
			for y := 0; y < blockSize; y++ {
				for x := 0; x < blockSize; x++ {
					recon.Set(x0+x, y0+y, rec[y*blockSize+x])
				}
			}
		}
	}
	return recon, nil
}

// encodeLossy implements the lossy IDLS payload: color transform,
// per-plane block coding, raw alpha appended after the chroma planes,
// and a final DEFLATE pass over the whole bit-packed coefficient
// stream.
func encodeLossy(s *Surface, quality int, opts *Options) ([]byte, error) {
	luma, chroma := quant.Tables(quality)

	ps := buildPlanes(s)
	yPad := padPlane(ps.Y, blockSize)

	// Chroma planes travel at full resolution: the IDLS flags byte has
	// no bit reserved for "chroma was subsampled", so a subsampled
	// plane would leave the decoder with no way to learn the factor to
	// reverse (see internal/colorspace's Subsample420/Upsample420 for
	// the reduced-chroma primitives themselves, exercised directly by
	// colorspace_test.go).
	var cbPad, crPad *colorspace.Plane
	threeOrFourChannel := s.ColorType == header.RGB || s.ColorType == header.RGBA
	if threeOrFourChannel {
		cbPad = padPlane(ps.Cb, blockSize)
		crPad = padPlane(ps.Cr, blockSize)
	}

	var bitBuf bytes.Buffer
	w := bio.NewWriter(&bitBuf)

	if _, err := codeChannelEncode(w, yPad, &luma, opts.UseIntra, opts.AdaptiveQP); err != nil {
		return nil, err
	}
	if threeOrFourChannel {
		if _, err := codeChannelEncode(w, cbPad, &chroma, opts.UseIntra, opts.AdaptiveQP); err != nil {
			return nil, err
		}
		if _, err := codeChannelEncode(w, crPad, &chroma, opts.UseIntra, opts.AdaptiveQP); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	inner := bitBuf.Bytes()
	if s.ColorType.HasAlpha() {
		inner = append(inner, ps.A.Pix...)
	}

	compressed, err := deflate.Compress(inner)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 3+128+128+4+len(compressed))
	out = append(out, boolByte(false), boolByte(opts.UseIntra), boolByte(opts.AdaptiveQP))
	out = appendZigZagTable(out, &luma)
	out = appendZigZagTable(out, &chroma)
	out = bio.PutU32LE(out, uint32(len(compressed)))
	out = append(out, compressed...)
	return out, nil
}

func appendZigZagTable(dst []byte, table *[64]uint16) []byte {
	var zz [64]uint16
	for i, v := range table {
		zz[quant.ZigZag[i]] = v
	}
	for _, v := range zz {
		dst = bio.PutU16LE(dst, v)
	}
	return dst
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
