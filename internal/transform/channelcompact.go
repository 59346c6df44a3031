package transform

import (
	"github.com/pkg/errors"

	"github.com/deepteams/flif/internal/colorspace"
	"github.com/deepteams/flif/internal/rac"
)

// channelCompact remaps each channel's sparse set of actually-used values
// down to a dense [0, count-1] range before entropy coding, and restores
// the original values on Undo via a per-channel lookup table. Real images
// rarely use every value a channel's bit depth allows (a palette-like PNG
// converted to FLIF might only ever emit a handful of distinct reds), so
// compacting shrinks the range the rest of the chain has to reason about.
type channelCompact struct {
	tables [4][]colorspace.ColorValue // tables[ch][compact value] = original value
}

func newChannelCompact(d *rac.Decoder, prev colorspace.CRange) (*channelCompact, error) {
	cc := &channelCompact{}
	for ch := colorspace.Channel(0); ch < 4; ch++ {
		r := prev[ch]
		if r.Min == 0 && r.Max == 0 && ch != colorspace.ChanY {
			// Unused trailing channel (Monochrome/RGB): nothing to read.
			continue
		}
		countMinusOne, err := d.ReadUniform(0, int64(r.Max-r.Min))
		if err != nil {
			return nil, errors.WithMessagef(err, "transform: channel compact count for channel %d", ch)
		}
		count := int(countMinusOne) + 1
		table := make([]colorspace.ColorValue, count)
		prevVal := r.Min - 1
		for i := 0; i < count; i++ {
			lo := int64(prevVal) + 1
			hi := int64(r.Max) - int64(count-1-i)
			v, err := d.ReadUniform(lo, hi)
			if err != nil {
				return nil, errors.WithMessagef(err, "transform: channel compact value %d for channel %d", i, ch)
			}
			table[i] = colorspace.ColorValue(v)
			prevVal = colorspace.ColorValue(v)
		}
		cc.tables[ch] = table
	}
	return cc, nil
}

func (t *channelCompact) Name() string { return "Channel-Compact" }

func (t *channelCompact) CRange(prev colorspace.CRange) colorspace.CRange {
	var out colorspace.CRange
	for ch := colorspace.Channel(0); ch < 4; ch++ {
		if len(t.tables[ch]) == 0 {
			out[ch] = prev[ch]
			continue
		}
		out[ch] = colorspace.ColorRange{Min: 0, Max: colorspace.ColorValue(len(t.tables[ch]) - 1)}
	}
	return out
}

func (t *channelCompact) Range(ch colorspace.Channel, prev colorspace.CRange) colorspace.ColorRange {
	return t.CRange(prev)[ch]
}

// Undo maps every pixel's compacted channel values back through the
// per-channel lookup table.
func (t *channelCompact) Undo(img *colorspace.Image) {
	for i := range img.Pixels {
		p := &img.Pixels[i]
		for ch := colorspace.Channel(0); ch < 4; ch++ {
			table := t.tables[ch]
			if len(table) == 0 {
				continue
			}
			idx := int(p.Get(ch))
			if idx >= 0 && idx < len(table) {
				p.Set(ch, table[idx])
			}
		}
	}
}
