package wk

import (
	"github.com/wk-codec/wk/internal/colorspace"
	"github.com/wk-codec/wk/internal/header"
)

// planeSet holds the per-channel sample planes a surface decomposes
// into for lossy coding: a luma/gray plane, optional chroma planes,
// and an optional alpha plane that travels through the container raw
// rather than through the DCT pipeline.
type planeSet struct {
	Y, Cb, Cr *colorspace.Plane
	A         *colorspace.Plane
}

// buildPlanes decomposes a surface into its component planes,
// applying the BT.601 color transform for RGB/RGBA surfaces. Gray and
// GrayAlpha surfaces carry their single sample plane as Y directly,
// with no chroma planes.
func buildPlanes(s *Surface) *planeSet {
	ps := &planeSet{}
	channels := s.ColorType.Channels()

	switch s.ColorType {
	case header.Gray, header.GrayAlpha:
		ps.Y = colorspace.NewPlane(s.Width, s.Height)
		for i := 0; i < s.Width*s.Height; i++ {
			ps.Y.Pix[i] = s.Pix[i*channels]
		}
		if s.ColorType.HasAlpha() {
			ps.A = colorspace.NewPlane(s.Width, s.Height)
			for i := 0; i < s.Width*s.Height; i++ {
				ps.A.Pix[i] = s.Pix[i*channels+1]
			}
		}

	case header.RGB, header.RGBA:
		ps.Y = colorspace.NewPlane(s.Width, s.Height)
		ps.Cb = colorspace.NewPlane(s.Width, s.Height)
		ps.Cr = colorspace.NewPlane(s.Width, s.Height)
		for i := 0; i < s.Width*s.Height; i++ {
			r := s.Pix[i*channels]
			g := s.Pix[i*channels+1]
			b := s.Pix[i*channels+2]
			y, cb, cr := colorspace.ToYCbCr(r, g, b)
			ps.Y.Pix[i] = y
			ps.Cb.Pix[i] = cb
			ps.Cr.Pix[i] = cr
		}
		if s.ColorType.HasAlpha() {
			ps.A = colorspace.NewPlane(s.Width, s.Height)
			for i := 0; i < s.Width*s.Height; i++ {
				ps.A.Pix[i] = s.Pix[i*channels+3]
			}
		}
	}
	return ps
}

// combinePlanes reassembles a surface from decoded planes, applying
// the inverse color transform for RGB/RGBA.
func combinePlanes(ps *planeSet, ct header.ColorType, width, height int) *Surface {
	channels := ct.Channels()
	pix := make([]byte, width*height*channels)

	switch ct {
	case header.Gray, header.GrayAlpha:
		for i := 0; i < width*height; i++ {
			pix[i*channels] = ps.Y.Pix[i]
			if ct.HasAlpha() {
				pix[i*channels+1] = ps.A.Pix[i]
			}
		}

	case header.RGB, header.RGBA:
		for i := 0; i < width*height; i++ {
			r, g, b := colorspace.ToRGB(ps.Y.Pix[i], ps.Cb.Pix[i], ps.Cr.Pix[i])
			pix[i*channels] = r
			pix[i*channels+1] = g
			pix[i*channels+2] = b
			if ct.HasAlpha() {
				pix[i*channels+3] = ps.A.Pix[i]
			}
		}
	}

	return &Surface{Width: width, Height: height, ColorType: ct, Pix: pix}
}

// padPlane extends p on the right and bottom so both dimensions are a
// multiple of the block size, replicating the last valid row/column
// (edge replication minimizes the high-frequency energy the padding
// itself would otherwise introduce at block boundaries).
func padPlane(p *colorspace.Plane, block int) *colorspace.Plane {
	pw := roundUp(p.Width, block)
	ph := roundUp(p.Height, block)
	if pw == p.Width && ph == p.Height {
		return p
	}
	out := colorspace.NewPlane(pw, ph)
	for y := 0; y < ph; y++ {
		sy := y
		if sy >= p.Height {
			sy = p.Height - 1
		}
		for x := 0; x < pw; x++ {
			sx := x
			if sx >= p.Width {
				sx = p.Width - 1
			}
			out.Set(x, y, p.At(sx, sy))
		}
	}
	return out
}

// cropPlane returns the top-left width x height region of p, undoing
// the block-size padding applied before coding.
func cropPlane(p *colorspace.Plane, width, height int) *colorspace.Plane {
	if p.Width == width && p.Height == height {
		return p
	}
	out := colorspace.NewPlane(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out.Set(x, y, p.At(x, y))
		}
	}
	return out
}

func roundUp(v, multiple int) int {
	if v%multiple == 0 {
		return v
	}
	return v + (multiple - v%multiple)
}
