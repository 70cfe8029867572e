package colorspace

import "testing"

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestToYCbCr_Gray(t *testing.T) {
	y, cb, cr := ToYCbCr(128, 128, 128)
	if absDiff(y, 128) > 1 {
		t.Errorf("Y = %d, want ~128", y)
	}
	if absDiff(cb, 128) > 1 {
		t.Errorf("Cb = %d, want ~128", cb)
	}
	if absDiff(cr, 128) > 1 {
		t.Errorf("Cr = %d, want ~128", cr)
	}
}

func TestToYCbCr_Black(t *testing.T) {
	y, cb, cr := ToYCbCr(0, 0, 0)
	if y != 0 {
		t.Errorf("Y = %d, want 0", y)
	}
	if absDiff(cb, 128) > 1 || absDiff(cr, 128) > 1 {
		t.Errorf("Cb=%d Cr=%d, want ~128", cb, cr)
	}
}

func TestToYCbCr_White(t *testing.T) {
	y, _, _ := ToYCbCr(255, 255, 255)
	if y != 255 {
		t.Errorf("Y = %d, want 255", y)
	}
}

func TestRoundTrip_RGBtoYCbCrtoRGB(t *testing.T) {
	samples := [][3]uint8{
		{0, 0, 0}, {255, 255, 255}, {255, 0, 0}, {0, 255, 0}, {0, 0, 255},
		{128, 64, 200}, {17, 200, 33}, {255, 128, 0},
	}
	for _, s := range samples {
		y, cb, cr := ToYCbCr(s[0], s[1], s[2])
		r, g, b := ToRGB(y, cb, cr)
		if absDiff(r, s[0]) > 2 || absDiff(g, s[1]) > 2 || absDiff(b, s[2]) > 2 {
			t.Errorf("round trip %v -> YCbCr(%d,%d,%d) -> (%d,%d,%d), want within 2",
				s, y, cb, cr, r, g, b)
		}
	}
}

func TestSubsample420_EvenDimensions(t *testing.T) {
	p := NewPlane(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			p.set(x, y, uint8(100))
		}
	}
	sub := Subsample420(p)
	if sub.Width != 2 || sub.Height != 2 {
		t.Fatalf("Subsample420 dims = %dx%d, want 2x2", sub.Width, sub.Height)
	}
	for _, v := range sub.Pix {
		if v != 100 {
			t.Errorf("subsampled constant plane value = %d, want 100", v)
		}
	}
}

func TestSubsample420_OddDimensions(t *testing.T) {
	p := NewPlane(3, 3)
	for i := range p.Pix {
		p.Pix[i] = 50
	}
	sub := Subsample420(p)
	if sub.Width != 2 || sub.Height != 2 {
		t.Fatalf("Subsample420(3x3) dims = %dx%d, want 2x2", sub.Width, sub.Height)
	}
}

func TestUpsample420_ConstantPlaneRoundTrip(t *testing.T) {
	p := NewPlane(8, 8)
	for i := range p.Pix {
		p.Pix[i] = 77
	}
	sub := Subsample420(p)
	up := Upsample420(sub, 8, 8)
	for i, v := range up.Pix {
		if absDiff(v, 77) > 1 {
			t.Errorf("upsampled[%d] = %d, want ~77", i, v)
		}
	}
}
