// Command wk is a thin CLI wrapper around the wk codec: encode,
// lossless, decode, info, and benchmark subcommands operating on
// files named on the command line.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wk-codec/wk"
	"github.com/wk-codec/wk/internal/wkerr"
)

// Exit codes per the codec's external interface: 0 success, 1 I/O
// error, 2 malformed file, 3 unsupported combination.
const (
	exitOK = iota
	exitIOError
	exitMalformed
	exitUnsupported
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitUnsupported)
	}

	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:])
	case "lossless":
		err = runLossless(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "benchmark":
		err = runBenchmark(os.Args[2:])
	default:
		usage()
		os.Exit(exitUnsupported)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "wk:", err)
		os.Exit(exitCodeFor(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  wk encode <in> <out> <quality>
  wk lossless <in> <out>
  wk decode <in> <out>
  wk info <in>
  wk benchmark <in> <outdir>`)
}

func exitCodeFor(err error) int {
	var pathErr *fs.PathError
	switch {
	case wkerr.Is(err, wkerr.IoError), errors.As(err, &pathErr):
		return exitIOError
	case wkerr.Is(err, wkerr.MalformedContainer), wkerr.Is(err, wkerr.InvalidMagic), wkerr.Is(err, wkerr.CorruptChunk):
		return exitMalformed
	case wkerr.Is(err, wkerr.UnsupportedFeature):
		return exitUnsupported
	default:
		return exitMalformed
	}
}

func runEncode(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("encode requires <in> <out> <quality>")
	}
	quality, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("quality must be an integer: %w", err)
	}

	surface, err := readSurface(args[0])
	if err != nil {
		return err
	}
	data, err := wk.EncodeLossy(surface, quality, &wk.Options{UseIntra: true})
	if err != nil {
		return err
	}
	return os.WriteFile(args[1], data, 0o644)
}

func runLossless(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("lossless requires <in> <out>")
	}
	surface, err := readSurface(args[0])
	if err != nil {
		return err
	}
	data, err := wk.EncodeLossless(surface, nil)
	if err != nil {
		return err
	}
	return os.WriteFile(args[1], data, 0o644)
}

func runDecode(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("decode requires <in> <out>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	surface, _, err := wk.Decode(data)
	if err != nil {
		return err
	}
	return writeSurface(args[1], surface)
}

func runInfo(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("info requires <in>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	h, err := wk.GetFileInfo(data)
	if err != nil {
		return err
	}
	fmt.Printf("dimensions: %dx%d\ncolor_type: %s\ncompression: %s\nquality: %d\nbit_depth: %d\n",
		h.Width, h.Height, h.ColorType, h.Compression, h.Quality, h.BitDepth)
	return nil
}

// runBenchmark encodes in at a spread of quality levels plus the
// lossless path, writes each candidate (and a same-quality baseline
// JPEG for size comparison) to outdir, and reports size and wall-clock
// time for each.
func runBenchmark(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("benchmark requires <in> <outdir>")
	}
	surface, err := readSurface(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(args[1], 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", args[1], err)
	}

	base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	qualities := []int{10, 30, 50, 70, 90}

	for _, q := range qualities {
		start := time.Now()
		data, err := wk.EncodeLossy(surface, q, &wk.Options{UseIntra: true})
		if err != nil {
			return err
		}
		elapsed := time.Since(start)
		out := filepath.Join(args[1], fmt.Sprintf("%s_q%d.wk", base, q))
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}

		var jpegBuf bytes.Buffer
		if err := wk.EncodeJPEG(&jpegBuf, surface, q); err != nil {
			return err
		}
		jpegOut := filepath.Join(args[1], fmt.Sprintf("%s_q%d.jpg", base, q))
		if err := os.WriteFile(jpegOut, jpegBuf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", jpegOut, err)
		}

		fmt.Printf("q=%-3d wk %8d bytes  %v    jpeg %8d bytes\n", q, len(data), elapsed, jpegBuf.Len())
	}

	start := time.Now()
	data, err := wk.EncodeLossless(surface, nil)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	out := filepath.Join(args[1], base+"_lossless.wk")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("lossless  %8d bytes  %v\n", len(data), elapsed)

	return nil
}

// readSurface loads in as a Surface, decoding through the standard
// library image package when the extension is not .wk.
func readSurface(path string) (*wk.Surface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".wk" {
		s, _, err := wk.Decode(data)
		return s, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return wk.DecodeExternal(f)
}

// writeSurface writes a decoded surface to path, using the standard
// library PNG encoder unless the extension is .wk (a raw Surface
// round trip has no use outside this CLI, so .wk here always means
// "re-encode losslessly").
func writeSurface(path string, s *wk.Surface) error {
	if strings.ToLower(filepath.Ext(path)) == ".wk" {
		data, err := wk.EncodeLossless(s, nil)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return wk.EncodePNG(f, s)
}
