// Package coeff implements the zig-zag scan and run/value bitstream
// coding of a quantized 8x8 coefficient block: runs of zero
// coefficients are coded as unsigned exp-Golomb run lengths, non-zero
// coefficients as signed exp-Golomb values, and the block closes with
// an explicit end-of-block marker once only zeros remain.
package coeff

import (
	"github.com/wk-codec/wk/internal/bio"
	"github.com/wk-codec/wk/internal/quant"
	"github.com/wk-codec/wk/internal/wkerr"
)

// BlockLen is the number of coefficients in an 8x8 block.
const BlockLen = 64

// toZigZag reorders a natural row-major coefficient block into
// canonical zig-zag scan order.
func toZigZag(natural *[BlockLen]int32) [BlockLen]int32 {
	var zz [BlockLen]int32
	for i := 0; i < BlockLen; i++ {
		zz[quant.ZigZag[i]] = natural[i]
	}
	return zz
}

// fromZigZag reorders a zig-zag scanned coefficient block back to
// natural row-major order.
func fromZigZag(zz *[BlockLen]int32) [BlockLen]int32 {
	var natural [BlockLen]int32
	for i := 0; i < BlockLen; i++ {
		natural[i] = zz[quant.ZigZag[i]]
	}
	return natural
}

// EncodeBlock writes the run/value coding of a natural-order quantized
// coefficient block to w, terminating with an end-of-block marker as
// soon as only zeros remain.
func EncodeBlock(w *bio.Writer, natural *[BlockLen]int32) error {
	zz := toZigZag(natural)

	i := 0
	for i < BlockLen {
		if restIsZero(&zz, i) {
			return emitEOB(w)
		}

		run := 0
		for i+run < BlockLen && zz[i+run] == 0 {
			run++
		}
		if run > 0 {
			if err := w.WriteBit(0); err != nil {
				return err
			}
			if err := bio.WriteExpGolomb(w, uint32(run)); err != nil {
				return err
			}
			i += run
		}

		if err := w.WriteBit(1); err != nil {
			return err
		}
		if err := bio.WriteSignedExpGolomb(w, zz[i]); err != nil {
			return err
		}
		i++
	}
	return nil
}

func restIsZero(zz *[BlockLen]int32, from int) bool {
	for i := from; i < BlockLen; i++ {
		if zz[i] != 0 {
			return false
		}
	}
	return true
}

func emitEOB(w *bio.Writer) error {
	if err := w.WriteBit(1); err != nil {
		return err
	}
	return bio.WriteSignedExpGolomb(w, 0)
}

// DecodeBlock reads a run/value coded coefficient block from r and
// returns the natural-order quantized coefficients. Runs that would
// overrun the block are clamped to the remaining positions, per the
// container format's zero-run clamp rule.
func DecodeBlock(r *bio.Reader) (*[BlockLen]int32, error) {
	var zz [BlockLen]int32

	i := 0
	for i < BlockLen {
		flag, err := r.ReadBit()
		if err != nil {
			return nil, wkerr.Wrap(wkerr.IoError, err, "reading coefficient flag bit")
		}

		if flag == 0 {
			run, err := bio.ReadExpGolomb(r)
			if err != nil {
				return nil, wkerr.Wrap(wkerr.IoError, err, "reading zero run length")
			}
			remaining := BlockLen - i
			if int(run) > remaining {
				run = uint32(remaining)
			}
			i += int(run)
			continue
		}

		val, err := bio.ReadSignedExpGolomb(r)
		if err != nil {
			return nil, wkerr.Wrap(wkerr.IoError, err, "reading coefficient value")
		}
		if val == 0 {
			// End-of-block: remaining positions stay zero.
			break
		}
		if i >= BlockLen {
			return nil, wkerr.New(wkerr.DecodeLimitExceeded, "coefficient block overrun")
		}
		zz[i] = val
		i++
	}

	natural := fromZigZag(&zz)
	return &natural, nil
}
