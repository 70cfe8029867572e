package wk

import (
	"github.com/wk-codec/wk/internal/lossless"
	"github.com/wk-codec/wk/internal/wkerr"
)

// encodeLossless implements the IDAT payload: for every row, pick the
// predictor minimizing the residual SAD among the five PNG-style
// filters, prefix the row with that predictor's id, and entropy-code
// the whole predictor+residual stream with a canonical Huffman code.
func encodeLossless(s *Surface) ([]byte, error) {
	channels := s.ColorType.Channels()
	rowStride := s.Width * channels
	blob := make([]byte, 0, s.Height*(1+rowStride))

	var prevRow []byte
	for y := 0; y < s.Height; y++ {
		row := s.Pix[y*rowStride : (y+1)*rowStride]
		predictor, residual := lossless.SelectPredictor(row, prevRow, channels)
		blob = append(blob, byte(predictor))
		blob = append(blob, residual...)
		prevRow = row
	}

	return lossless.Compress(blob)
}

// decodeLossless reverses encodeLossless.
func decodeLossless(h *Header, payload []byte) (*Surface, error) {
	channels := h.ColorType.Channels()
	rowStride := int(h.Width) * channels

	blob, err := lossless.Decompress(payload)
	if err != nil {
		return nil, err
	}

	want := int(h.Height) * (1 + rowStride)
	if len(blob) != want {
		return nil, wkerr.Newf(wkerr.MalformedContainer, "decompressed lossless stream is %d bytes, want %d", len(blob), want)
	}

	pix := make([]byte, int(h.Height)*rowStride)
	var prevRow []byte
	off := 0
	for y := 0; y < int(h.Height); y++ {
		predictor := lossless.Predictor(blob[off])
		off++
		row := pix[y*rowStride : (y+1)*rowStride]
		copy(row, blob[off:off+rowStride])
		off += rowStride
		lossless.UnfilterRow(predictor, row, prevRow, channels)
		prevRow = row
	}

	return &Surface{Width: int(h.Width), Height: int(h.Height), ColorType: h.ColorType, Pix: pix}, nil
}
