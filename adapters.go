package wk

import (
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/wk-codec/wk/internal/header"
	"github.com/wk-codec/wk/internal/wkerr"
)

// FromImage converts a standard library image.Image into the RGBA8
// Surface the codec operates on. Images carrying no alpha information
// become RGB surfaces; everything else becomes RGBA.
func FromImage(img image.Image) *Surface {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if !hasAlpha(img) {
		pix := make([]byte, width*height*3)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				i := (y*width + x) * 3
				pix[i] = byte(r >> 8)
				pix[i+1] = byte(g >> 8)
				pix[i+2] = byte(b >> 8)
			}
		}
		return &Surface{Width: width, Height: height, ColorType: header.RGB, Pix: pix}
	}

	pix := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*width + x) * 4
			pix[i] = byte(r >> 8)
			pix[i+1] = byte(g >> 8)
			pix[i+2] = byte(b >> 8)
			pix[i+3] = byte(a >> 8)
		}
	}
	return &Surface{Width: width, Height: height, ColorType: header.RGBA, Pix: pix}
}

// hasAlpha reports whether img's color model carries an alpha
// channel distinct from fully opaque.
func hasAlpha(img image.Image) bool {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model, color.YCbCrModel, color.CMYKModel:
		return false
	default:
		bounds := img.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				_, _, _, a := img.At(x, y).RGBA()
				if a != 0xFFFF {
					return true
				}
			}
		}
		return false
	}
}

// ToImage converts a decoded Surface into a standard library
// image.Image for further processing or re-encoding to another
// format.
func ToImage(s *Surface) image.Image {
	switch s.ColorType {
	case header.Gray:
		img := image.NewGray(image.Rect(0, 0, s.Width, s.Height))
		copy(img.Pix, s.Pix)
		return img
	case header.GrayAlpha:
		img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
		for i := 0; i < s.Width*s.Height; i++ {
			g, a := s.Pix[i*2], s.Pix[i*2+1]
			img.Pix[i*4] = g
			img.Pix[i*4+1] = g
			img.Pix[i*4+2] = g
			img.Pix[i*4+3] = a
		}
		return img
	case header.RGBA:
		img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
		copy(img.Pix, s.Pix)
		return img
	default: // header.RGB
		img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
		for i := 0; i < s.Width*s.Height; i++ {
			img.Pix[i*4] = s.Pix[i*3]
			img.Pix[i*4+1] = s.Pix[i*3+1]
			img.Pix[i*4+2] = s.Pix[i*3+2]
			img.Pix[i*4+3] = 0xFF
		}
		return img
	}
}

// DecodeExternal reads any image format the standard library
// recognizes (PNG, JPEG, GIF) and converts it to a Surface.
func DecodeExternal(r io.Reader) (*Surface, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, wkerr.Wrap(wkerr.MalformedContainer, err, "decoding external image format")
	}
	return FromImage(img), nil
}

// EncodePNG writes s to w as a PNG, for round-tripping through
// external tools.
func EncodePNG(w io.Writer, s *Surface) error {
	if err := png.Encode(w, ToImage(s)); err != nil {
		return wkerr.Wrap(wkerr.IoError, err, "encoding PNG")
	}
	return nil
}

// EncodeJPEG writes s to w as a baseline JPEG at the given quality,
// for comparison benchmarking against the lossy WK path.
func EncodeJPEG(w io.Writer, s *Surface, quality int) error {
	if err := jpeg.Encode(w, ToImage(s), &jpeg.Options{Quality: quality}); err != nil {
		return wkerr.Wrap(wkerr.IoError, err, "encoding JPEG")
	}
	return nil
}
