package bitio

import (
	"bytes"
	"testing"
)

func TestReadVarint(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want uint32
	}{
		{"zero", []byte{0x00}, 0},
		{"two-byte-a", []byte{0x82, 0x5F}, 351},
		{"two-byte-b", []byte{0x82, 0x2F}, 303},
		{"max-uint32", []byte{0x8F, 0xFF, 0xFF, 0xFF, 0x7F}, 4294967295},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tc.in))
			got, err := r.ReadVarint()
			if err != nil {
				t.Fatalf("ReadVarint() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("ReadVarint() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestReadVarintOverflow(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F}))
	_, err := r.ReadVarint()
	if err != ErrVarintOverflow {
		t.Fatalf("ReadVarint() error = %v, want ErrVarintOverflow", err)
	}
}

func TestReadByteEOF(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	if _, err := r.ReadByte(); err == nil {
		t.Fatal("ReadByte() on empty reader: want error, got nil")
	}
}
