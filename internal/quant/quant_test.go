package quant

import "testing"

func TestTables_Quality50MatchesBase(t *testing.T) {
	luma, chroma := Tables(50)
	if luma != baseLuma {
		t.Error("Tables(50) luma should equal the unscaled base luma table")
	}
	if chroma != baseChroma {
		t.Error("Tables(50) chroma should equal the unscaled base chroma table")
	}
}

func TestTables_Quality100MinimizesEntries(t *testing.T) {
	luma, _ := Tables(100)
	for i, v := range luma {
		if v != 1 {
			t.Errorf("Tables(100) luma[%d] = %d, want 1", i, v)
		}
	}
}

func TestTables_Quality1MaximizesEntries(t *testing.T) {
	luma, chroma := Tables(1)
	for i := range luma {
		if luma[i] != 255 {
			t.Errorf("Tables(1) luma[%d] = %d, want 255 (clipped)", i, luma[i])
		}
		if chroma[i] != 255 {
			t.Errorf("Tables(1) chroma[%d] = %d, want 255 (clipped)", i, chroma[i])
		}
	}
}

func TestTables_ClampsOutOfRangeQuality(t *testing.T) {
	lowLuma, _ := Tables(-5)
	lumaAt1, _ := Tables(1)
	if lowLuma != lumaAt1 {
		t.Error("Tables(-5) should clamp to Tables(1)")
	}

	highLuma, _ := Tables(250)
	lumaAt100, _ := Tables(100)
	if highLuma != lumaAt100 {
		t.Error("Tables(250) should clamp to Tables(100)")
	}
}

func TestTables_MonotonicWithQuality(t *testing.T) {
	// Higher quality should never produce a larger step size for any
	// given table entry.
	prevLuma, _ := Tables(1)
	for q := 2; q <= 100; q++ {
		luma, _ := Tables(q)
		for i := range luma {
			if luma[i] > prevLuma[i] {
				t.Fatalf("quality %d luma[%d]=%d exceeds quality %d luma[%d]=%d",
					q, i, luma[i], q-1, i, prevLuma[i])
			}
		}
		prevLuma = luma
	}
}

func TestZigZag_IsPermutation(t *testing.T) {
	seen := make(map[int]bool, 64)
	for _, v := range ZigZag {
		if v < 0 || v > 63 {
			t.Fatalf("ZigZag entry %d out of range [0,63]", v)
		}
		if seen[v] {
			t.Fatalf("ZigZag entry %d appears more than once", v)
		}
		seen[v] = true
	}
	if len(seen) != 64 {
		t.Errorf("ZigZag covers %d distinct values, want 64", len(seen))
	}
}

func TestZigZag_StartsAtDC(t *testing.T) {
	if ZigZag[0] != 0 {
		t.Errorf("ZigZag[0] = %d, want 0 (DC coefficient first)", ZigZag[0])
	}
}
