package colorspace

import "testing"

func TestParseColorSpace(t *testing.T) {
	cases := []struct {
		in      byte
		want    ColorSpace
		wantErr bool
	}{
		{1, Monochrome, false},
		{3, RGB, false},
		{4, RGBA, false},
		{2, 0, true},
		{5, 0, true},
	}
	for _, tc := range cases {
		got, err := ParseColorSpace(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseColorSpace(%d): want error, got nil", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColorSpace(%d): unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseColorSpace(%d) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDecodeOrderPutsAlphaFirst(t *testing.T) {
	order := DecodeOrder(RGBA)
	if len(order) == 0 || order[0] != ChanAlpha {
		t.Fatalf("DecodeOrder(RGBA) = %v, want alpha first", order)
	}
}

func TestImageAtSet(t *testing.T) {
	img := NewImage(3, 2, RGB)
	p := Pixel{Values: [4]ColorValue{1, 2, 3, 0}}
	img.Set(2, 1, p)
	if got := img.At(2, 1); got != p {
		t.Errorf("At(2, 1) = %+v, want %+v", got, p)
	}
}
