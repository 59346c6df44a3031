// Package decodeimage drives the pixel-level decode loop: for every pixel
// of every channel, it builds a property vector from already-decoded
// neighbors, asks that channel's MANIAC tree for a residual relative to
// the neighborhood's predicted value, and writes the reconstructed sample.
//
// This is the structural analog of the WebP codec's
// internal/lossless.decodeImageStream scanline loop (decode_image.go),
// specialized the same way: pixels near the image border use a reduced
// neighbor set, interior pixels use the full one.
package decodeimage

import (
	"github.com/pkg/errors"

	"github.com/deepteams/flif/internal/colorspace"
	"github.com/deepteams/flif/internal/header"
	"github.com/deepteams/flif/internal/maniac"
	"github.com/deepteams/flif/internal/rac"
)

// maxDiffBound caps the five texture-delta property slots (see
// internal/maniac.BuildPropertyRanges): differences between 8-bit samples
// never exceed this in absolute value.
const maxDiffBound = 255

// Decode reconstructs the full pixel buffer for a non-interlaced,
// single-frame image: width/height/color space from h, per-channel bit
// depth and the transform chain from sh.
func Decode(d *rac.Decoder, h *header.Header, sh *header.SecondHeader, limits header.Limits) (*colorspace.Image, error) {
	if h.Interlaced {
		return nil, errors.New("decodeimage: interlaced decoding not implemented")
	}
	if h.Animated {
		return nil, errors.New("decodeimage: animated decoding not implemented")
	}
	if h.BytesPerChannel != 1 {
		return nil, errors.New("decodeimage: only 8-bit channels are implemented")
	}

	order := colorspace.DecodeOrder(h.ColorSpace)
	entropyRange := sh.Chain.FinalCRange(baseCRange(h))

	updates := rac.NewUpdateTable(sh.AlphaDivisor, sh.Cutoff)
	trees := make(map[colorspace.Channel]*maniac.Tree, len(order))
	for i, ch := range order {
		prange := maniac.BuildPropertyRanges(order[:i], ch, entropyRange, maxDiffBound)
		tree, err := maniac.LoadTree(d, prange, limits.MaxManiacNodes, updates)
		if err != nil {
			return nil, errors.WithMessagef(err, "decodeimage: loading tree for channel %d", ch)
		}
		trees[ch] = tree
	}

	img := colorspace.NewImage(h.Width, h.Height, h.ColorSpace)

	for y := 0; y < h.Height; y++ {
		for x := 0; x < h.Width; x++ {
			var decodedValues [4]colorspace.ColorValue
			for i, ch := range order {
				n := neighborhoodFor(img, x, y, ch)
				chRange := entropyRange[ch]
				mid := (chRange.Min + chRange.Max) / 2

				// A fully transparent pixel forces every color channel to
				// its midpoint rather than entropy-coding it: the value is
				// never visible, so the reference encoder never spends
				// bits on it.
				if ch != colorspace.ChanAlpha && sh.AlphaZero && decodedValues[colorspace.ChanAlpha] == 0 {
					decodedValues[ch] = mid
					continue
				}

				guess := maniac.Guess(n, mid)
				props := maniac.BuildPropertyVector(order[:i], ch, decodedValues, n, guess)

				lo := int64(chRange.Min) - int64(guess)
				hi := int64(chRange.Max) - int64(guess)
				residual, err := trees[ch].Decode(d, props, lo, hi)
				if err != nil {
					return nil, errors.WithMessagef(err, "decodeimage: decoding pixel (%d,%d) channel %d", x, y, ch)
				}

				v := guess + colorspace.ColorValue(residual)
				decodedValues[ch] = v
			}

			p := colorspace.Pixel{Values: decodedValues}
			img.Set(x, y, p)
		}
	}

	sh.Chain.Undo(img)
	return img, nil
}

func baseCRange(h *header.Header) colorspace.CRange {
	var cr colorspace.CRange
	maxSample := colorspace.ColorValue(1<<(8*h.BytesPerChannel)) - 1
	for i := 0; i < h.ColorSpace.Channels(); i++ {
		cr[i] = colorspace.ColorRange{Min: 0, Max: maxSample}
	}
	return cr
}

// neighborhoodFor gathers the already-decoded pixels around (x, y) for
// channel ch, setting presence flags for any neighbor that falls outside
// the image.
func neighborhoodFor(img *colorspace.Image, x, y int, ch colorspace.Channel) maniac.Neighborhood {
	var n maniac.Neighborhood
	if x > 0 {
		n.Left = img.At(x-1, y).Get(ch)
		n.HasLeft = true
	}
	if x > 1 {
		n.Left2 = img.At(x-2, y).Get(ch)
		n.HasLeft2 = true
	}
	if y > 0 {
		n.Top = img.At(x, y-1).Get(ch)
		n.HasTop = true
		if x > 0 {
			n.TopLeft = img.At(x-1, y-1).Get(ch)
			n.HasTopLeft = true
		}
		if x < img.Width-1 {
			n.TopRight = img.At(x+1, y-1).Get(ch)
			n.HasTopRight = true
		}
	}
	if y > 1 {
		n.Top2 = img.At(x, y-2).Get(ch)
		n.HasTop2 = true
	}
	return n
}
