package rac

// ReadUniform decodes an integer uniformly distributed over [min, max]
// (inclusive) using a plain binary search over the range: each step reads
// one unbiased bit deciding whether the true value lies in the upper or
// lower half of the remaining span. Used for the handful of header/
// transform fields that have no adaptive context (bit-depth-derived bounds,
// channel-compaction lookup values).
func (d *Decoder) ReadUniform(min, max int64) (int64, error) {
	if min == max {
		return min, nil
	}
	lo, hi := min, max
	for lo < hi {
		mid := lo + (hi-lo)/2
		bit, err := d.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}
