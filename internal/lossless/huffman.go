package lossless

import (
	"bytes"

	"github.com/wk-codec/wk/internal/bio"
	"github.com/wk-codec/wk/internal/wkerr"
)

// node is a canonical Huffman tree node. Leaf nodes have symbol >= 0;
// internal nodes have symbol == -1 and both children set.
type node struct {
	freq      uint32
	symbol    int
	minSymbol int
	left      *node
	right     *node
}

// code is a Huffman codeword: the low `length` bits of bits, MSB
// first.
type code struct {
	bits   uint32
	length uint8
}

// buildTree constructs the canonical Huffman tree from a frequency
// table, repeatedly combining the two minimum-frequency nodes (ties
// broken by the lower of the two nodes' minimum symbol) into a new
// parent. Returns nil if no symbol has non-zero frequency.
func buildTree(freq *[256]uint32) *node {
	var active []*node
	for sym, f := range freq {
		if f > 0 {
			active = append(active, &node{freq: f, symbol: sym, minSymbol: sym})
		}
	}
	if len(active) == 0 {
		return nil
	}
	for len(active) > 1 {
		i, j := twoMinimum(active)
		a, b := active[i], active[j]
		parent := &node{
			freq:      a.freq + b.freq,
			symbol:    -1,
			minSymbol: minInt(a.minSymbol, b.minSymbol),
			left:      a,
			right:     b,
		}
		// Remove the larger index first so the smaller index stays valid.
		if i > j {
			i, j = j, i
		}
		active = append(active[:j], active[j+1:]...)
		active = append(active[:i], active[i+1:]...)
		active = append(active, parent)
	}
	return active[0]
}

// twoMinimum returns the indices of the two nodes with the lowest
// (freq, minSymbol) key, which is how ties are broken deterministically.
func twoMinimum(nodes []*node) (int, int) {
	i, j := 0, 1
	if less(nodes[j], nodes[i]) {
		i, j = j, i
	}
	for k := 2; k < len(nodes); k++ {
		if less(nodes[k], nodes[i]) {
			i, j = k, i
		} else if less(nodes[k], nodes[j]) {
			j = k
		}
	}
	return i, j
}

func less(a, b *node) bool {
	if a.freq != b.freq {
		return a.freq < b.freq
	}
	return a.minSymbol < b.minSymbol
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// assignCodes walks the tree MSB-first (left=0, right=1) and fills in
// codes for every leaf. A single-symbol tree gets the single-bit code
// `0`.
func assignCodes(root *node) [256]code {
	var codes [256]code
	if root == nil {
		return codes
	}
	if root.symbol >= 0 {
		codes[root.symbol] = code{bits: 0, length: 1}
		return codes
	}
	var walk func(n *node, bits uint32, length uint8)
	walk = func(n *node, bits uint32, length uint8) {
		if n.symbol >= 0 {
			codes[n.symbol] = code{bits: bits, length: length}
			return
		}
		walk(n.left, bits<<1, length+1)
		walk(n.right, (bits<<1)|1, length+1)
	}
	walk(root, 0, 0)
	return codes
}

// Compress entropy-codes data with a canonical Huffman code and
// returns the IDAT-layout payload: the 256-entry frequency table,
// original length, Huffman-coded length, and the Huffman bytes
// themselves.
func Compress(data []byte) ([]byte, error) {
	var freq [256]uint32
	for _, b := range data {
		freq[b]++
	}

	root := buildTree(&freq)
	codes := assignCodes(root)

	bitBuf := &bytes.Buffer{}
	w := bio.NewWriter(bitBuf)
	for _, b := range data {
		c := codes[b]
		if err := w.WriteBits(c.bits, uint(c.length)); err != nil {
			return nil, wkerr.Wrap(wkerr.IoError, err, "writing huffman bit stream")
		}
	}
	if err := w.Flush(); err != nil {
		return nil, wkerr.Wrap(wkerr.IoError, err, "flushing huffman bit stream")
	}

	var out []byte
	for sym := 0; sym < 256; sym++ {
		out = bio.PutU32LE(out, freq[sym])
	}
	out = bio.PutU32LE(out, uint32(len(data)))
	huffBytes := bitBuf.Bytes()
	out = bio.PutU32LE(out, uint32(len(huffBytes)))
	out = append(out, huffBytes...)
	return out, nil
}

// Decompress reverses Compress, reconstructing the original byte
// sequence from an IDAT-layout payload.
func Decompress(payload []byte) ([]byte, error) {
	if len(payload) < 256*4+8 {
		return nil, wkerr.New(wkerr.MalformedContainer, "lossless payload shorter than frequency table header")
	}

	var freq [256]uint32
	off := 0
	for sym := 0; sym < 256; sym++ {
		freq[sym] = bio.U32LE(payload[off : off+4])
		off += 4
	}
	originalLength := bio.U32LE(payload[off : off+4])
	off += 4
	huffmanLength := bio.U32LE(payload[off : off+4])
	off += 4

	if off+int(huffmanLength) > len(payload) {
		return nil, wkerr.New(wkerr.MalformedContainer, "huffman_length exceeds payload bounds")
	}
	huffBytes := payload[off : off+int(huffmanLength)]

	if originalLength == 0 {
		return nil, nil
	}

	root := buildTree(&freq)
	if root == nil {
		return nil, wkerr.New(wkerr.MalformedContainer, "non-zero original_length with an empty frequency table")
	}

	out := make([]byte, 0, originalLength)
	r := bio.NewReader(bytes.NewReader(huffBytes))

	// Single-symbol trees never branch; read one bit per symbol and
	// discard it (it is always 0).
	if root.symbol >= 0 {
		for uint32(len(out)) < originalLength {
			if _, err := r.ReadBit(); err != nil {
				return nil, wkerr.Wrap(wkerr.DecodeLimitExceeded, err, "huffman stream ended before original_length symbols were read")
			}
			out = append(out, byte(root.symbol))
		}
		return out, nil
	}

	cur := root
	for uint32(len(out)) < originalLength {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, wkerr.Wrap(wkerr.DecodeLimitExceeded, err, "huffman stream ended before original_length symbols were read")
		}
		if bit == 0 {
			cur = cur.left
		} else {
			cur = cur.right
		}
		if cur.symbol >= 0 {
			out = append(out, byte(cur.symbol))
			cur = root
		}
	}
	return out, nil
}
