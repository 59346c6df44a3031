// Package rac implements FLIF's binary range coder (RAC) and the adaptive
// chance machinery layered on top of it: the chance/update tables, the
// near-zero integer coder, and the uniform symbol coder.
//
// The range coder here plays the same role as the WebP codec's
// internal/bitio.BoolReader — a hot, speed-critical arithmetic decoder that
// every other decoding stage reads through — but a different algorithm:
// FLIF keeps a 32-bit low/range pair renormalized in 8-bit chunks against a
// 24-bit ceiling, with 12-bit chances scaled into the current range at read
// time, rather than VP8's 8-bit probability/256-range split.
package rac

import (
	"io"

	"github.com/pkg/errors"
	"github.com/deepteams/flif/internal/bitio"
)

const (
	// maxRangeBits is the number of bits in the coder's range ceiling.
	maxRangeBits = 24
	// minRangeBits is the renormalization threshold exponent.
	minRangeBits = 16
	// MinRange is the lower bound the range must stay above after every
	// public call: 2^16.
	MinRange uint32 = 1 << minRangeBits
	// maxRange is the initial/ceiling range: 2^24.
	maxRange uint32 = 1 << maxRangeBits

	// chanceBits is the fixed-point precision of a 12-bit chance.
	chanceBits = 12
	// ChanceScale is the chance domain: chances are integers in [0, 4096).
	ChanceScale uint32 = 1 << chanceBits
)

// Decoder is a binary range decoder reading from an underlying byte source.
// ReadBit and ReadChance take no chance table; Read below layers adaptive
// chances on top via this package's ChanceTable.
type Decoder struct {
	r     *bitio.Reader
	low   uint32
	range_ uint32
	eof   bool
}

// NewDecoder constructs a Decoder, consuming the first three bytes of r as
// the initial low register. A premature EOF pads missing bytes with 0xFF,
// per the FLIF reference: this lets a well-formed stream that happens to
// truncate exactly on a byte boundary still decode instead of failing on
// an I/O error that isn't really a corruption.
func NewDecoder(r *bitio.Reader) (*Decoder, error) {
	d := &Decoder{r: r, range_: maxRange}

	// ceil(maxRangeBits / 8) = 3 bytes.
	const initialBytes = (maxRangeBits + 7) / 8
	var low uint32
	for i := 0; i < initialBytes; i++ {
		b, err := d.nextByte()
		if err != nil {
			return nil, err
		}
		low = (low << 8) | uint32(b)
	}
	d.low = low
	return d, nil
}

// nextByte reads one byte from the underlying source, substituting 0xFF
// forever once EOF has been observed. Any other I/O error aborts the
// decode.
func (d *Decoder) nextByte() (byte, error) {
	if d.eof {
		return 0xFF, nil
	}
	b, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			d.eof = true
			return 0xFF, nil
		}
		return 0, errors.WithMessage(err, "rac: reading input byte")
	}
	return b, nil
}

// scaleChance expands a 12-bit chance into the current range without
// 32-bit overflow: c_scaled = (range/4096)*chance + ((range%4096)*chance +
// 2048)/4096.
func scaleChance(chance12, range_ uint32) uint32 {
	upper := (range_ / ChanceScale) * chance12
	lower := ((range_%ChanceScale)*chance12 + ChanceScale/2) / ChanceScale
	return upper + lower
}

// renormalize restores range_ above MinRange, shifting in input bytes
// 8 bits at a time. The loop runs at most twice per call: one shift
// multiplies range_ by 256, and range_ was > MinRange/256 going in.
func (d *Decoder) renormalize() error {
	for d.range_ <= MinRange {
		b, err := d.nextByte()
		if err != nil {
			return err
		}
		d.low = (d.low << 8) | uint32(b)
		d.range_ <<= 8
	}
	return nil
}

// readScaled performs one range-coder step given an already-scaled chance
// (in [0, range_)), narrowing [low, range_) and renormalizing.
func (d *Decoder) readScaled(scaled uint32) (bool, error) {
	var bit bool
	if d.low >= d.range_-scaled {
		d.low -= d.range_ - scaled
		d.range_ = scaled
		bit = true
	} else {
		d.range_ -= scaled
		bit = false
	}
	if err := d.renormalize(); err != nil {
		return false, err
	}
	return bit, nil
}

// ReadBit decodes one bit with an implicit 50/50 chance.
func (d *Decoder) ReadBit() (bool, error) {
	return d.readScaled(d.range_ >> 1)
}

// ReadChance decodes one bit using an explicit 12-bit chance in [0, 4096).
func (d *Decoder) ReadChance(chance12 uint32) (bool, error) {
	return d.readScaled(scaleChance(chance12, d.range_))
}

// Read decodes one bit using the chance currently stored for entry in
// table, then updates that entry's chance via the table's update rule.
func (d *Decoder) Read(table *ChanceTable, entry ChanceTableEntry) (bool, error) {
	chance := table.Get(entry)
	bit, err := d.readScaled(scaleChance(uint32(chance), d.range_))
	if err != nil {
		return false, err
	}
	table.Update(entry, bit)
	return bit, nil
}
