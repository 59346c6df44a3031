package maniac

import "github.com/deepteams/flif/internal/colorspace"

// Neighborhood holds the already-decoded pixels around the one currently
// being predicted, each with a presence flag since pixels on the image's
// edges are missing one or more neighbors.
type Neighborhood struct {
	Left, Top, TopLeft, TopRight, Top2, Left2   colorspace.ColorValue
	HasLeft, HasTop, HasTopLeft, HasTopRight, HasTop2, HasLeft2 bool
}

// Guess returns the median3 prediction for a pixel from its left, top, and
// top-left neighbors, falling back gracefully when one or more are
// missing: with no neighbors at all the only sane guess is the channel's
// own midpoint, which the caller supplies.
func Guess(n Neighborhood, channelMid colorspace.ColorValue) colorspace.ColorValue {
	switch {
	case n.HasLeft && n.HasTop && n.HasTopLeft:
		return median3(n.Left+n.Top-n.TopLeft, n.Left, n.Top)
	case n.HasLeft && n.HasTop:
		return median3(n.Left+n.Top, n.Left, n.Top) // topLeft treated as 0 contribution below
	case n.HasLeft:
		return n.Left
	case n.HasTop:
		return n.Top
	default:
		return channelMid
	}
}

func median3(gradient, a, b colorspace.ColorValue) colorspace.ColorValue {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if gradient < lo {
		return lo
	}
	if gradient > hi {
		return hi
	}
	return gradient
}

// medianIndex encodes which of the three median3 candidates the guess
// came from: 0 for the gradient estimate, 1 for the left neighbor, 2 for
// the top neighbor. This is itself a useful predictor feature because it
// tells the tree which kind of local structure (flat, vertical edge,
// horizontal edge) produced the guess.
func medianIndex(n Neighborhood, guess colorspace.ColorValue) int32 {
	switch {
	case n.HasLeft && n.HasTop && guess == n.Left+n.Top-n.TopLeft:
		return 0
	case n.HasLeft && guess == n.Left:
		return 1
	case n.HasTop && guess == n.Top:
		return 2
	default:
		return 0
	}
}

// numFixedProperties is the count of property slots BuildPropertyRanges/
// BuildPropertyVector always emit after the decoded-channel values: the
// median index and five maxdiff-derived texture slots.
const numFixedProperties = 1 + 5

// BuildPropertyRanges returns the property vector's range for one pixel
// of channel ch, in the fixed order: one slot per already-decoded channel
// (per decodeOrder, up to but excluding ch), the median-index slot
// ([0, 2]), then five slots [-maxDiff, maxDiff] for the neighbor-difference
// properties.
func BuildPropertyRanges(decodeOrder []colorspace.Channel, ch colorspace.Channel, decoded colorspace.CRange, maxDiff int32) []PropertyRange {
	var ranges []PropertyRange
	for _, c := range decodeOrder {
		if c == ch {
			break
		}
		ranges = append(ranges, PropertyRange{Min: int32(decoded[c].Min), Max: int32(decoded[c].Max)})
	}
	ranges = append(ranges, PropertyRange{Min: 0, Max: 2})
	for i := 0; i < 5; i++ {
		ranges = append(ranges, PropertyRange{Min: -maxDiff, Max: maxDiff})
	}
	return ranges
}

// BuildPropertyVector computes the actual property values for one pixel,
// in the same order as BuildPropertyRanges: the already-decoded channel
// values at this pixel (decodedValues, indexed like decoded.Channel),
// the median index, and the five neighbor-delta texture features.
// Missing neighbors (edge pixels) contribute 0, matching the reference
// decoder's edge-pixel property vector.
func BuildPropertyVector(decodeOrder []colorspace.Channel, ch colorspace.Channel, decodedValues [4]colorspace.ColorValue, n Neighborhood, guess colorspace.ColorValue) []int32 {
	var props []int32
	for _, c := range decodeOrder {
		if c == ch {
			break
		}
		props = append(props, int32(decodedValues[c]))
	}
	props = append(props, medianIndex(n, guess))

	delta := func(has bool, a, b colorspace.ColorValue) int32 {
		if !has {
			return 0
		}
		return int32(a - b)
	}
	props = append(props,
		delta(n.HasLeft && n.HasTopLeft, n.Left, n.TopLeft),
		delta(n.HasTopLeft && n.HasTop, n.TopLeft, n.Top),
		delta(n.HasTop && n.HasTopRight, n.Top, n.TopRight),
		delta(n.HasTop2 && n.HasTop, n.Top2, n.Top),
		delta(n.HasLeft2 && n.HasLeft, n.Left2, n.Left),
	)
	return props
}
