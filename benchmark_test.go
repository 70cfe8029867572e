package wk

import (
	"testing"

	"github.com/wk-codec/wk/internal/header"
)

func BenchmarkEncodeLossy(b *testing.B) {
	s := gradientSurface(256, 256, header.RGB)
	opts := &Options{UseIntra: true}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := EncodeLossy(s, 75, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeLossy(b *testing.B) {
	s := gradientSurface(256, 256, header.RGB)
	data, err := EncodeLossy(s, 75, &Options{UseIntra: true})
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodeLossless(b *testing.B) {
	s := gradientSurface(256, 256, header.RGB)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := EncodeLossless(s, nil); err != nil {
			b.Fatal(err)
		}
	}
}
