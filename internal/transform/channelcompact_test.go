package transform

import (
	"testing"

	"github.com/deepteams/flif/internal/colorspace"
)

func TestChannelCompactUndoMapsThroughTable(t *testing.T) {
	cc := &channelCompact{}
	cc.tables[colorspace.ChanY] = []colorspace.ColorValue{10, 50, 200}

	img := colorspace.NewImage(1, 1, colorspace.Monochrome)
	img.Set(0, 0, colorspace.Pixel{Values: [4]colorspace.ColorValue{1, 0, 0, 0}})

	cc.Undo(img)

	got := img.At(0, 0).Get(colorspace.ChanY)
	if got != 50 {
		t.Errorf("Undo() mapped index 1 to %d, want 50", got)
	}
}

func TestChannelCompactCRangeReflectsTableSize(t *testing.T) {
	cc := &channelCompact{}
	cc.tables[colorspace.ChanY] = make([]colorspace.ColorValue, 7)

	prev := colorspace.CRange{colorspace.ColorRange{Min: 0, Max: 255}}
	out := cc.CRange(prev)
	if out[colorspace.ChanY].Max != 6 {
		t.Errorf("CRange() max = %d, want 6", out[colorspace.ChanY].Max)
	}
}
