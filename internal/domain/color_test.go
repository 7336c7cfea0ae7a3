package domain

import (
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{in: "#2563eb", want: color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff}, ok: true},
		{in: "fff", want: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, ok: true},
		{in: "#11223380", want: color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80}, ok: true},
		{in: "#12345", ok: false},
		{in: "#zzzzzz", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseHexColor(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("ParseHexColor(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
