package wk

import (
	"github.com/wk-codec/wk/internal/bio"
	"github.com/wk-codec/wk/internal/coeff"
	"github.com/wk-codec/wk/internal/dct"
	"github.com/wk-codec/wk/internal/intra"
	"github.com/wk-codec/wk/internal/wkerr"
)

// dqpScale maps a signed quantizer delta in [-2,2] to a percentage
// scale factor applied to every entry of the plane's quantization
// table, giving adaptive quantization a coarse per-block knob without
// a second table.
var dqpScale = [5]int{60, 80, 100, 120, 150}

const dqpRange = 2

// effectiveQuant scales base by the percentage dqpScale[dqp+dqpRange],
// clipping each entry to the valid [1,255] table range.
func effectiveQuant(base *[64]uint16, dqp int) [64]uint16 {
	pct := dqpScale[dqp+dqpRange]
	var out [64]uint16
	for i, b := range base {
		v := (int(b)*pct + 50) / 100
		if v < 1 {
			v = 1
		}
		if v > 255 {
			v = 255
		}
		out[i] = uint16(v)
	}
	return out
}

// chooseDQP picks a quantizer delta from the source block's sample
// variance: busier blocks get a smaller (finer) effective step,
// flatter blocks a larger one, within +-dqpRange.
func chooseDQP(source *[64]uint8) int {
	var sum, sumSq int64
	for _, v := range source {
		sum += int64(v)
		sumSq += int64(v) * int64(v)
	}
	n := int64(len(source))
	mean := sum / n
	variance := sumSq/n - mean*mean

	switch {
	case variance > 1200:
		return -2
	case variance > 500:
		return -1
	case variance < 30:
		return 2
	case variance < 120:
		return 1
	default:
		return 0
	}
}

// reconstructBlock is the single routine used by both the encoder
// (after quantizing its own residual) and the decoder (after parsing
// coefficients off the wire) to turn a quantized coefficient block
// plus a prediction into reconstructed 8-bit samples: dequantize,
// inverse DCT, add the prediction back, and clip to [0,255].
func reconstructBlock(coeffsNatural *[64]int32, qt *[64]uint16, pred *[64]uint8) [64]uint8 {
	var deq [64]float64
	for i, c := range coeffsNatural {
		deq[i] = float64(c) * float64(qt[i])
	}
	var residual [64]float64
	dct.Inverse(&deq, &residual)

	var out [64]uint8
	for i := range out {
		v := int32(roundNearest(residual[i])) + int32(pred[i])
		out[i] = clip255(v)
	}
	return out
}

func roundNearest(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}

func clip255(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// constant128 is the prediction forced on every block when use_intra=0:
// a flat 128, not mode 0's mean-of-available-neighbours DC. The two
// only coincide when neither neighbour is available.
func constant128() [64]uint8 {
	var p [64]uint8
	for i := range p {
		p[i] = 128
	}
	return p
}

// encodeBlock selects a prediction mode, computes the residual against
// the source block, quantizes it, writes mode, quantizer delta, and
// coefficients to w, and returns the reconstructed block the decoder
// will also produce so subsequent blocks see identical neighbour
// context. When useIntra is false every block is forced to the
// constant-128 prediction (mode byte still written as DC).
func encodeBlock(w *bio.Writer, source *[64]uint8, ctx *intra.Context, qt *[64]uint16, useIntra, adaptiveQP bool) ([64]uint8, error) {
	var mode intra.Mode
	var pred [64]uint8
	if useIntra {
		mode, pred = intra.SelectMode(source, ctx, true)
	} else {
		mode = intra.DC
		pred = constant128()
	}

	dqp := 0
	if adaptiveQP {
		dqp = chooseDQP(source)
	}
	qTable := qt
	if adaptiveQP {
		scaled := effectiveQuant(qt, dqp)
		qTable = &scaled
	}

	var residual [64]int32
	for i := range residual {
		residual[i] = int32(source[i]) - int32(pred[i])
	}
	var coeffsFloat [64]float64
	dct.Forward(float64Block(&residual), &coeffsFloat)

	var quantized [64]int32
	for i, c := range coeffsFloat {
		quantized[i] = quantizeRound(c, qTable[i])
	}

	if err := w.WriteBits(uint32(mode), 8); err != nil {
		return [64]uint8{}, err
	}
	if err := w.WriteBits(uint32(int8ToByte(int8(dqp))), 8); err != nil {
		return [64]uint8{}, err
	}
	if err := coeff.EncodeBlock(w, &quantized); err != nil {
		return [64]uint8{}, err
	}

	return reconstructBlock(&quantized, qTable, &pred), nil
}

// decodeBlock is the decode-side counterpart to encodeBlock: it reads
// mode, quantizer delta, and coefficients from r, and calls the shared
// reconstructBlock routine. The container's use_intra flag, not the
// per-block mode byte, decides the prediction: when useIntra is false
// every block is forced to the constant-128 prediction regardless of
// the mode byte it carries, matching the encoder's use_intra=0
// behavior exactly; only when useIntra is true does the mode byte
// select among the eleven modes via already-reconstructed neighbours.
func decodeBlock(r *bio.Reader, ctx *intra.Context, qt *[64]uint16, useIntra, adaptiveQP bool) ([64]uint8, error) {
	modeBits, err := r.ReadBits(8)
	if err != nil {
		return [64]uint8{}, err
	}
	if modeBits > 10 {
		return [64]uint8{}, wkerr.Newf(wkerr.UnsupportedFeature, "unknown intra mode id %d", modeBits)
	}
	dqpBits, err := r.ReadBits(8)
	if err != nil {
		return [64]uint8{}, err
	}
	dqp := int(byteToInt8(uint8(dqpBits)))

	qTable := qt
	if adaptiveQP {
		scaled := effectiveQuant(qt, dqp)
		qTable = &scaled
	}

	coeffs, err := coeff.DecodeBlock(r)
	if err != nil {
		return [64]uint8{}, err
	}

	var pred [64]uint8
	if useIntra {
		pred = intra.Predict(intra.Mode(modeBits), ctx)
	} else {
		pred = constant128()
	}
	return reconstructBlock(coeffs, qTable, &pred), nil
}

func float64Block(in *[64]int32) *[64]float64 {
	var out [64]float64
	for i, v := range in {
		out[i] = float64(v)
	}
	return &out
}

func quantizeRound(c float64, q uint16) int32 {
	v := c / float64(q)
	if v >= 0 {
		return int32(v + 0.5)
	}
	return -int32(-v + 0.5)
}

func int8ToByte(v int8) uint8 { return uint8(v) }
func byteToInt8(v uint8) int8 { return int8(v) }
