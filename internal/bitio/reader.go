// Package bitio provides byte-level input primitives for the FLIF decoder:
// a buffered byte source and the unsigned varint encoding used throughout
// the container format.
//
// This mirrors the role of the WebP codec's internal/bitio package (a
// dedicated low-level I/O layer shared by the rest of the decoder) but a
// different wire encoding: FLIF's header and metadata fields are
// byte-aligned varints, not packed bitfields, so there is no bit-window
// cache here — that machinery lives in internal/rac instead, where the
// range coder consumes raw bytes directly.
package bitio

import (
	"io"

	"github.com/pkg/errors"
)

// ErrVarintOverflow is returned when a varint's accumulated value would
// overflow the requested unsigned integer width.
var ErrVarintOverflow = errors.New("bitio: varint overflow")

// Reader wraps an io.Reader with single-byte and varint reads. It never
// reads ahead: positioning is not required of the underlying source, and
// every call consumes exactly as many bytes as it needs.
type Reader struct {
	r io.Reader
}

// NewReader wraps r for byte-oriented reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadByte reads a single byte, propagating the underlying error verbatim
// (including io.EOF) so callers can distinguish a clean end-of-stream from
// a truncated one.
func (br *Reader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(br.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadFull reads exactly len(buf) bytes.
func (br *Reader) ReadFull(buf []byte) error {
	_, err := io.ReadFull(br.r, buf)
	return err
}

// ReadVarint reads an unsigned byte-packed varint: the high bit of each
// byte is a continuation flag, the low seven bits are payload, most
// significant group first. The accumulator is shifted left by seven bits
// on every continuation byte; an accumulation that would overflow a
// uint32 returns ErrVarintOverflow.
func (br *Reader) ReadVarint() (uint32, error) {
	var acc uint32
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b < 0x80 {
			sum, ok := addOverflow(acc, uint32(b))
			if !ok {
				return 0, ErrVarintOverflow
			}
			return sum, nil
		}
		payload := uint32(b & 0x7f)
		sum, ok := addOverflow(acc, payload)
		if !ok {
			return 0, ErrVarintOverflow
		}
		shifted, ok := mulOverflow(sum, 128)
		if !ok {
			return 0, ErrVarintOverflow
		}
		acc = shifted
	}
}

func addOverflow(a, b uint32) (uint32, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

func mulOverflow(a, b uint32) (uint32, bool) {
	if a == 0 {
		return 0, true
	}
	p := a * b
	if p/a != b {
		return 0, false
	}
	return p, true
}
