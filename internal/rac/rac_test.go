package rac

import (
	"bytes"
	"testing"

	"github.com/deepteams/flif/internal/bitio"
)

func newTestDecoder(t *testing.T, payload []byte) *Decoder {
	t.Helper()
	d, err := NewDecoder(bitio.NewReader(bytes.NewReader(payload)))
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	return d
}

func TestNewDecoderPadsShortInput(t *testing.T) {
	// Fewer than the 3 bytes NewDecoder wants to prime low: missing bytes
	// are padded with 0xFF rather than failing.
	if _, err := newTestDecoderErr([]byte{0x12}); err != nil {
		t.Fatalf("NewDecoder() on short input: error = %v, want nil (EOF padded)", err)
	}
}

func newTestDecoderErr(payload []byte) (*Decoder, error) {
	return NewDecoder(bitio.NewReader(bytes.NewReader(payload)))
}

func TestScaleChanceWithinRange(t *testing.T) {
	for _, chance := range []uint32{0, 1, 2048, 4095, 4096} {
		got := scaleChance(chance, maxRange)
		if got > maxRange {
			t.Errorf("scaleChance(%d, maxRange) = %d, want <= %d", chance, got, maxRange)
		}
	}
}

func TestReadUniformDegenerateRange(t *testing.T) {
	d := newTestDecoder(t, nil)
	got, err := d.ReadUniform(7, 7)
	if err != nil {
		t.Fatalf("ReadUniform(7, 7) error = %v", err)
	}
	if got != 7 {
		t.Errorf("ReadUniform(7, 7) = %d, want 7", got)
	}
}

func TestReadUniformStaysInRange(t *testing.T) {
	d := newTestDecoder(t, bytes.Repeat([]byte{0xA5}, 64))
	for i := 0; i < 100; i++ {
		got, err := d.ReadUniform(3, 19)
		if err != nil {
			t.Fatalf("ReadUniform() error = %v", err)
		}
		if got < 3 || got > 19 {
			t.Fatalf("ReadUniform(3, 19) = %d, out of range", got)
		}
	}
}

func TestReadBitConsumesInput(t *testing.T) {
	d := newTestDecoder(t, bytes.Repeat([]byte{0x00}, 32))
	for i := 0; i < 16; i++ {
		if _, err := d.ReadBit(); err != nil {
			t.Fatalf("ReadBit() error = %v", err)
		}
	}
}
