// Package container implements the WK chunked binary file format: the
// magic header, the fixed-order chunk sequence, and per-chunk CRC-32
// integrity checks.
package container

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/wk-codec/wk/internal/bio"
	"github.com/wk-codec/wk/internal/header"
	"github.com/wk-codec/wk/internal/wkerr"
)

// Magic is the eight-byte sequence every WK file begins with.
var Magic = [8]byte{'W', 'K', '3', '.', '0', 0x00, 0x00, 0x00}

// Chunk type tags, stored as four ASCII bytes.
const (
	TypeIHDR = "IHDR"
	TypeICCP = "ICCP"
	TypeIDAT = "IDAT"
	TypeIDLS = "IDLS"
	TypeIEND = "IEND"
)

// Chunk is a single length-prefixed, type-tagged, CRC-checked frame.
type Chunk struct {
	Type    string
	Payload []byte
}

// Container holds the fully parsed (or about-to-be-written) contents
// of a WK file: the mandatory header, the mandatory image payload
// (lossless or lossy, per Header.Compression), an optional ICC
// profile blob, and any unrecognized chunks encountered between IHDR
// and IEND, preserved in original order for forward compatibility.
type Container struct {
	Header    *header.Header
	ImageData []byte
	ICCP      []byte
	Unknown   []Chunk
}

// WriteChunk serializes a single chunk: type, length, payload, then
// the IEEE CRC-32 of type||payload.
func WriteChunk(w io.Writer, typ string, payload []byte) error {
	if len(typ) != 4 {
		return wkerr.Newf(wkerr.InternalInvariant, "chunk type %q is not 4 bytes", typ)
	}
	typeBytes := []byte(typ)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	crc := bio.CRC32(typeBytes, payload)
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc)

	if _, err := w.Write(typeBytes); err != nil {
		return wkerr.Wrap(wkerr.IoError, err, "writing chunk type")
	}
	if _, err := w.Write(lenBuf[:]); err != nil {
		return wkerr.Wrap(wkerr.IoError, err, "writing chunk length")
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return wkerr.Wrap(wkerr.IoError, err, "writing chunk payload")
		}
	}
	if _, err := w.Write(crcBuf[:]); err != nil {
		return wkerr.Wrap(wkerr.IoError, err, "writing chunk crc")
	}
	return nil
}

// ReadChunk parses a single chunk from r and verifies its CRC.
func ReadChunk(r io.Reader) (*Chunk, error) {
	var typeBuf [4]byte
	if _, err := io.ReadFull(r, typeBuf[:]); err != nil {
		return nil, wkerr.Wrap(wkerr.IoError, err, "reading chunk type")
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, wkerr.Wrap(wkerr.IoError, err, "reading chunk length")
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, wkerr.Wrap(wkerr.CorruptChunk, err, "reading chunk payload")
		}
	}

	var crcBuf [4]byte
	if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
		return nil, wkerr.Wrap(wkerr.IoError, err, "reading chunk crc")
	}
	wantCRC := binary.LittleEndian.Uint32(crcBuf[:])
	gotCRC := bio.CRC32(typeBuf[:], payload)
	if gotCRC != wantCRC {
		return nil, wkerr.Newf(wkerr.CorruptChunk, "chunk %q crc mismatch: got 0x%08X, want 0x%08X",
			string(typeBuf[:]), gotCRC, wantCRC)
	}

	return &Chunk{Type: string(typeBuf[:]), Payload: payload}, nil
}

// readerState names the chunk-reader state machine's current stage,
// used only for error messages.
type readerState int

const (
	stateExpectMagic readerState = iota
	stateExpectIHDR
	stateReadChunks
	stateDone
)

func (s readerState) String() string {
	switch s {
	case stateExpectMagic:
		return "ExpectMagic"
	case stateExpectIHDR:
		return "ExpectIHDR"
	case stateReadChunks:
		return "ReadChunks"
	case stateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Write serializes a complete container: magic, IHDR, optional ICCP,
// any unknown chunks (written back verbatim, in their original order),
// the lossless or lossy image data chunk, and a terminating IEND.
func Write(w io.Writer, c *Container) error {
	if c.Header == nil {
		return wkerr.New(wkerr.InternalInvariant, "container has no header")
	}
	if _, err := w.Write(Magic[:]); err != nil {
		return wkerr.Wrap(wkerr.IoError, err, "writing magic")
	}
	if err := WriteChunk(w, TypeIHDR, c.Header.Bytes()); err != nil {
		return err
	}
	if c.ICCP != nil {
		if err := WriteChunk(w, TypeICCP, c.ICCP); err != nil {
			return err
		}
	}
	for _, u := range c.Unknown {
		if err := WriteChunk(w, u.Type, u.Payload); err != nil {
			return err
		}
	}

	dataType := TypeIDLS
	if c.Header.Compression == header.Lossless {
		dataType = TypeIDAT
	}
	if err := WriteChunk(w, dataType, c.ImageData); err != nil {
		return err
	}

	return WriteChunk(w, TypeIEND, nil)
}

// Read parses a complete container, driving the
// ExpectMagic -> ExpectIHDR -> ReadChunks -> Done state machine (IEND
// is recognized inside ReadChunks) and validating the fixed chunk
// ordering rules. Any bytes after the IEND chunk are rejected.
func Read(r io.Reader) (*Container, error) {
	state := stateExpectMagic

	var magicBuf [8]byte
	if _, err := io.ReadFull(r, magicBuf[:]); err != nil {
		return nil, wkerr.Wrap(wkerr.InvalidMagic, err, "reading magic")
	}
	if !bytes.Equal(magicBuf[:], Magic[:]) {
		return nil, wkerr.New(wkerr.InvalidMagic, "magic bytes do not match the WK signature")
	}
	state = stateExpectIHDR

	c := &Container{}
	haveImageData := false
	done := false

	for !done {
		chunk, err := ReadChunk(r)
		if err != nil {
			return nil, err
		}

		switch state {
		case stateExpectIHDR:
			if chunk.Type != TypeIHDR {
				return nil, wkerr.Newf(wkerr.MalformedContainer, "expected IHDR first, got %q (state %s)", chunk.Type, state)
			}
			h, err := header.Parse(chunk.Payload)
			if err != nil {
				return nil, err
			}
			c.Header = h
			state = stateReadChunks

		case stateReadChunks:
			switch chunk.Type {
			case TypeIHDR:
				return nil, wkerr.New(wkerr.MalformedContainer, "duplicate IHDR chunk")
			case TypeICCP:
				if c.ICCP != nil {
					return nil, wkerr.New(wkerr.MalformedContainer, "duplicate ICCP chunk")
				}
				c.ICCP = chunk.Payload
			case TypeIDAT, TypeIDLS:
				if haveImageData {
					return nil, wkerr.New(wkerr.MalformedContainer, "more than one of IDAT/IDLS present")
				}
				c.ImageData = chunk.Payload
				haveImageData = true
			case TypeIEND:
				if !haveImageData {
					return nil, wkerr.New(wkerr.MalformedContainer, "IEND reached without IDAT or IDLS")
				}
				if len(chunk.Payload) != 0 {
					return nil, wkerr.New(wkerr.MalformedContainer, "IEND payload must be empty")
				}
				state = stateDone
				done = true
			default:
				// Unknown chunk type: preserved, not an error.
				c.Unknown = append(c.Unknown, *chunk)
			}

		default:
			return nil, wkerr.Newf(wkerr.InternalInvariant, "chunk reader in unexpected state %s", state)
		}
	}

	var extra [1]byte
	if n, _ := io.ReadFull(r, extra[:]); n > 0 {
		return nil, wkerr.Newf(wkerr.MalformedContainer, "data after IEND chunk (state %s)", state)
	}

	return c, nil
}
