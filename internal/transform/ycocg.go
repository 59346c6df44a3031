package transform

import "github.com/deepteams/flif/internal/colorspace"

// ycocg is the reversible YCoCg-R color decorrelation: it replaces
// Red/Green/Blue with a luma-like Y plane and two chroma planes (Co, Cg)
// that are cheap to entropy-code because real images concentrate almost
// all of their energy in Y. The transform is exactly invertible in
// integer arithmetic, which is why FLIF can use it losslessly.
type ycocg struct {
	origMax4 colorspace.ColorValue // old_max/4 + 1, old_max the largest Red/Green/Blue maximum
}

func newYCoCg(prev colorspace.CRange) *ycocg {
	oldMax := maxCV(prev[colorspace.ChanY].Max, maxCV(prev[colorspace.ChanCo].Max, prev[colorspace.ChanCg].Max))
	return &ycocg{origMax4: oldMax/4 + 1}
}

func (t *ycocg) Name() string { return "YCoCg" }

// CRange produces the chained range immediately usable by Snap/entropy
// coding: the Y plane is widened to a multiple of 4 (so the later /2
// divisions used in Undo never lose a representable value), and Co/Cg
// each get a diamond-shaped bound that tightens as Y approaches either
// extreme of its range, the standard behavior of a reversible YCoCg
// transform bounded to a fixed bit depth.
func (t *ycocg) CRange(prev colorspace.CRange) colorspace.CRange {
	var out colorspace.CRange
	yMax := 4*t.origMax4 - 1
	out[colorspace.ChanY] = colorspace.ColorRange{Min: 0, Max: yMax}

	// Co and Cg share the same diamond shape; Cg additionally narrows
	// around whatever Co ends up contributing, but since ranges here are
	// data-independent upper bounds (not per-pixel), both use the widest
	// possible diamond envelope over all Y.
	widest := t.diamondBound(yMax / 2)
	out[colorspace.ChanCo] = colorspace.ColorRange{Min: -widest - 1, Max: widest}
	out[colorspace.ChanCg] = colorspace.ColorRange{Min: -widest - 1, Max: widest}
	out[colorspace.ChanAlpha] = prev[colorspace.ChanAlpha]
	return out
}

// diamondBound returns the widest chroma magnitude reachable for a Y
// value of yMid, the midpoint of the Y range, which is where the diamond
// is widest.
func (t *ycocg) diamondBound(yMid colorspace.ColorValue) colorspace.ColorValue {
	origMax4 := t.origMax4
	switch {
	case yMid < origMax4:
		return 4*yMid + 3
	case yMid >= 3*origMax4:
		return 4*(4*origMax4-1-yMid) + 3
	default:
		return 4*origMax4 - 1
	}
}

// Range returns the static per-channel bound computed by CRange; YCoCg
// has no per-pixel range narrowing beyond what CRange already captures.
func (t *ycocg) Range(ch colorspace.Channel, prev colorspace.CRange) colorspace.ColorRange {
	return t.CRange(prev)[ch]
}

// Undo reconstructs Red/Green/Blue from Y/Co/Cg in place, using the
// standard reversible YCoCg-R inverse. Right-shifts implement floor
// division so the transform round-trips exactly for negative chroma.
func (t *ycocg) Undo(img *colorspace.Image) {
	for i := range img.Pixels {
		p := &img.Pixels[i]
		y := p.Get(colorspace.ChanY)
		co := p.Get(colorspace.ChanCo)
		cg := p.Get(colorspace.ChanCg)

		tmp := y - (cg >> 1)
		green := cg + tmp
		blue := tmp - (co >> 1)
		red := blue + co

		p.Set(colorspace.ChanY, red)
		p.Set(colorspace.ChanCo, green)
		p.Set(colorspace.ChanCg, blue)
	}
}
