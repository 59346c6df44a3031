package transform

import "github.com/deepteams/flif/internal/colorspace"

// permutePlanes reassigns which physical channel slot each logical
// channel is stored in. The reference encoder picks the order that puts
// the largest-range channel first, so downstream MANIAC trees see a
// consistent layout regardless of image content; the decoder only needs
// to know the same fixed order to read pixels back into their logical
// channels.
//
// Only the range side of this transform is implemented: the conditional,
// per-pixel crange narrowing the reference takes advantage of during
// encoding is not needed for decoding, since by the time a decoder reads
// this stage every channel's range is already fixed by Bounds/Channel
// Compact upstream.
type permutePlanes struct {
	order [4]colorspace.Channel // order[slot] = logical channel stored there
}

// fixedPermutation is the reference decoder's constant ordering: Y/Red
// first (it typically carries the widest range after YCoCg), then the
// two chroma-like planes, then alpha last.
var fixedPermutation = [4]colorspace.Channel{
	colorspace.ChanY, colorspace.ChanCo, colorspace.ChanCg, colorspace.ChanAlpha,
}

func newPermutePlanes(prev colorspace.CRange) *permutePlanes {
	return &permutePlanes{order: fixedPermutation}
}

func (t *permutePlanes) Name() string { return "Permute-Planes" }

// CRange just relabels which range belongs to which slot; it performs no
// narrowing.
func (t *permutePlanes) CRange(prev colorspace.CRange) colorspace.CRange {
	var out colorspace.CRange
	for slot, ch := range t.order {
		out[slot] = prev[ch]
	}
	return out
}

func (t *permutePlanes) Range(ch colorspace.Channel, prev colorspace.CRange) colorspace.ColorRange {
	return t.CRange(prev)[ch]
}

// Undo restores each pixel's channels to their logical slots.
func (t *permutePlanes) Undo(img *colorspace.Image) {
	for i := range img.Pixels {
		p := &img.Pixels[i]
		permuted := p.Values
		for slot, ch := range t.order {
			p.Set(ch, permuted[slot])
		}
	}
}
