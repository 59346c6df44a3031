package header

import (
	"bytes"
	"testing"

	"github.com/deepteams/flif/internal/bitio"
	"github.com/deepteams/flif/internal/colorspace"
)

func buildPrimaryHeader(flags, bpcDigit byte, width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("FLIF")
	buf.WriteByte(flags)
	buf.WriteByte(bpcDigit)
	buf.Write(encodeVarint(width))
	buf.Write(encodeVarint(height))
	return buf.Bytes()
}

func encodeVarint(v uint32) []byte {
	if v == 0 {
		return []byte{0}
	}
	var groups []byte
	for v > 0 {
		groups = append([]byte{byte(v & 0x7f)}, groups...)
		v >>= 7
	}
	for i := 0; i < len(groups)-1; i++ {
		groups[i] |= 0x80
	}
	return groups
}

func TestReadHeaderRGB(t *testing.T) {
	raw := buildPrimaryHeader(0x33, '1', 9, 4) // non-interlaced, RGB, 1 byte/channel
	r := bitio.NewReader(bytes.NewReader(raw))

	h, err := Read(r, DefaultLimits())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if h.ColorSpace != colorspace.RGB {
		t.Errorf("ColorSpace = %v, want RGB", h.ColorSpace)
	}
	if h.Width != 10 || h.Height != 5 {
		t.Errorf("dimensions = %dx%d, want 10x5", h.Width, h.Height)
	}
	if h.Interlaced || h.Animated {
		t.Errorf("Interlaced/Animated = %v/%v, want false/false", h.Interlaced, h.Animated)
	}
}

func TestReadHeaderBadMagic(t *testing.T) {
	r := bitio.NewReader(bytes.NewReader([]byte("NOPE")))
	if _, err := Read(r, DefaultLimits()); err != ErrBadMagic {
		t.Errorf("Read() error = %v, want ErrBadMagic", err)
	}
}

func TestReadHeaderRejectsPixelOverflow(t *testing.T) {
	raw := buildPrimaryHeader(0x33, '1', 0xFFFFFFF, 0xFFFFFFF)
	r := bitio.NewReader(bytes.NewReader(raw))
	limits := DefaultLimits()
	limits.MaxPixels = 100

	_, err := Read(r, limits)
	if err == nil {
		t.Fatal("Read() with tiny pixel limit: want error, got nil")
	}
}
