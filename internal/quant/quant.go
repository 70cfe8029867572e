// Package quant derives per-quality quantization tables from the
// standard JPEG base luminance/chrominance tables and provides the
// canonical zig-zag scan order used to serialize an 8x8 coefficient
// block as a 1D run.
package quant

// BlockSize is the coefficient block dimension.
const BlockSize = 8

// baseLuma is the standard JPEG Annex K luminance quantization table,
// in natural (row-major) order.
var baseLuma = [64]uint16{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

// baseChroma is the standard JPEG Annex K chrominance quantization
// table, in natural (row-major) order.
var baseChroma = [64]uint16{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// ZigZag maps a natural row-major index to its position in the
// canonical zig-zag scan so that low-frequency coefficients cluster
// near the start of the serialized run.
var ZigZag = [64]int{
	0, 1, 5, 6, 14, 15, 27, 28,
	2, 4, 7, 13, 16, 26, 29, 42,
	3, 8, 12, 17, 25, 30, 41, 43,
	9, 11, 18, 24, 31, 40, 44, 53,
	10, 19, 23, 32, 39, 45, 52, 54,
	20, 22, 33, 38, 46, 51, 55, 60,
	21, 34, 37, 47, 50, 56, 59, 61,
	35, 36, 48, 49, 57, 58, 62, 63,
}

// scaleFactor converts a quality level in [1,100] to the scale factor
// used by the standard JPEG quantization table derivation.
func scaleFactor(quality int) int {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	if quality < 50 {
		return 5000 / quality
	}
	return 200 - 2*quality
}

// clip bounds v to the inclusive range [1,255], the valid range for an
// 8-bit quantization table entry.
func clip(v int) uint16 {
	if v < 1 {
		return 1
	}
	if v > 255 {
		return 255
	}
	return uint16(v)
}

// scale derives a quality-scaled table from a base table.
func scale(base *[64]uint16, quality int) [64]uint16 {
	s := scaleFactor(quality)
	var out [64]uint16
	for i, b := range base {
		out[i] = clip((int(b)*s + 50) / 100)
	}
	return out
}

// Tables returns the luma and chroma quantization tables for the given
// quality level (clamped to [1,100]).
func Tables(quality int) (luma, chroma [64]uint16) {
	return scale(&baseLuma, quality), scale(&baseChroma, quality)
}
