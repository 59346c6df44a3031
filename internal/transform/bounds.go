package transform

import (
	"github.com/pkg/errors"

	"github.com/deepteams/flif/internal/colorspace"
	"github.com/deepteams/flif/internal/rac"
)

// bounds tightens each channel's recorded range to the [min, max] actually
// observed when the stream was written, one near-zero-coded pair per
// channel. It changes no pixel value; Undo is a no-op, and the only
// effect is on the range every later stage (and the MANIAC trees) sees.
type bounds struct {
	ranges colorspace.CRange
}

func newBounds(d *rac.Decoder, prev colorspace.CRange) (*bounds, error) {
	table := rac.NewChanceTable(rac.NewUpdateTable(19, 2))
	b := &bounds{}
	for ch := colorspace.Channel(0); ch < 4; ch++ {
		r := prev[ch]
		minV, err := d.ReadNearZero(table, int64(r.Min), int64(r.Max))
		if err != nil {
			return nil, errors.WithMessagef(err, "transform: bounds min for channel %d", ch)
		}
		maxV, err := d.ReadNearZero(table, minV, int64(r.Max))
		if err != nil {
			return nil, errors.WithMessagef(err, "transform: bounds max for channel %d", ch)
		}
		b.ranges[ch] = colorspace.ColorRange{Min: colorspace.ColorValue(minV), Max: colorspace.ColorValue(maxV)}
	}
	return b, nil
}

func (t *bounds) Name() string { return "Bounds" }

func (t *bounds) CRange(prev colorspace.CRange) colorspace.CRange {
	var out colorspace.CRange
	for ch := colorspace.Channel(0); ch < 4; ch++ {
		// Intersect with prev in case an earlier stage already narrowed
		// this channel further than the recorded bound; fall back to the
		// recorded bound if the intersection is empty, matching the
		// reference decoder's behavior when a later stage's range and the
		// stored bound disagree.
		lo := maxCV(t.ranges[ch].Min, prev[ch].Min)
		hi := minCV(t.ranges[ch].Max, prev[ch].Max)
		if lo > hi {
			out[ch] = t.ranges[ch]
		} else {
			out[ch] = colorspace.ColorRange{Min: lo, Max: hi}
		}
	}
	return out
}

func (t *bounds) Range(ch colorspace.Channel, prev colorspace.CRange) colorspace.ColorRange {
	return t.CRange(prev)[ch]
}

func (t *bounds) Undo(img *colorspace.Image) {}

func minCV(a, b colorspace.ColorValue) colorspace.ColorValue {
	if a < b {
		return a
	}
	return b
}

func maxCV(a, b colorspace.ColorValue) colorspace.ColorValue {
	if a > b {
		return a
	}
	return b
}
