// Package transform implements FLIF's reversible pixel transform chain:
// a short list of invertible per-pixel or per-channel operations, applied
// forward at encode time and undone in reverse order once every pixel has
// been entropy-decoded.
//
// This plays the same structural role as the WebP codec's
// internal/lossless transform dispatch (subtract-green, predictor,
// cross-color, color-indexing, applied via a tagged switch in
// applyInverseTransforms) but a different, and reversible by
// construction, set of operations.
package transform

import (
	"github.com/pkg/errors"

	"github.com/deepteams/flif/internal/colorspace"
	"github.com/deepteams/flif/internal/rac"
)

// ID is the 4-bit transform identifier read from the stream.
type ID byte

const (
	IDChannelCompact ID = 0
	IDYCoCg          ID = 1
	IDPermutePlanes  ID = 3
	IDBounds         ID = 4
	IDPalette        ID = 5 // recognized, not implemented
	IDColorBuckets   ID = 6 // recognized, not implemented
	IDDuplicateFrame ID = 7 // recognized, not implemented
	IDFrameShape     ID = 10 // recognized, not implemented
	IDFrameLookback  ID = 11 // recognized, not implemented
	IDPaletteAlpha   ID = 12 // recognized, not implemented
)

// ErrUnimplementedTransform names a transform the wire format defines but
// this decoder does not decode pixels for.
var ErrUnimplementedTransform = errors.New("transform: unimplemented transform id")

// Transform is one stage of the reversible chain. Every method takes or
// returns colorspace.CRange values scoped to the chain state immediately
// before this stage, mirroring flif.rs's Transform trait.
type Transform interface {
	// Name identifies the transform, for FlifInfo.TransformNames().
	Name() string
	// Range returns this stage's output range for channel ch, given the
	// range in effect immediately before it.
	Range(ch colorspace.Channel, prev colorspace.CRange) colorspace.ColorRange
	// CRange returns the full per-channel range set after this stage.
	CRange(prev colorspace.CRange) colorspace.CRange
	// Undo reverses this stage over every pixel of img, in place. img's
	// pixels are assumed already in the range this stage's CRange
	// describes; after Undo they are in the range of the stage before it.
	Undo(img *colorspace.Image)
}

// Chain is an ordered list of transforms, applied forward low-index-first
// at encode time (not implemented here) and undone high-index-first at
// decode time.
type Chain struct {
	stages []Transform
}

// LoadChain reads the transform chain from the second header: a leading
// bit says whether another transform follows, then (if so) a 4-bit id.
// Unrecognized or unimplemented ids abort the decode rather than silently
// skipping pixels this decoder cannot reconstruct.
func LoadChain(d *rac.Decoder, base colorspace.CRange) (*Chain, error) {
	c := &Chain{}
	crange := base
	for {
		more, err := d.ReadBit()
		if err != nil {
			return nil, errors.WithMessage(err, "transform: reading chain continuation bit")
		}
		if !more {
			return c, nil
		}
		idBits, err := d.ReadUniform(0, 15)
		if err != nil {
			return nil, errors.WithMessage(err, "transform: reading transform id")
		}
		id := ID(idBits)
		stage, err := newTransform(id, d, crange)
		if err != nil {
			return nil, err
		}
		crange = stage.CRange(crange)
		c.stages = append(c.stages, stage)
	}
}

func newTransform(id ID, d *rac.Decoder, prev colorspace.CRange) (Transform, error) {
	switch id {
	case IDChannelCompact:
		return newChannelCompact(d, prev)
	case IDYCoCg:
		return newYCoCg(prev), nil
	case IDPermutePlanes:
		return newPermutePlanes(prev), nil
	case IDBounds:
		return newBounds(d, prev)
	case IDPalette, IDColorBuckets, IDDuplicateFrame, IDFrameShape, IDFrameLookback, IDPaletteAlpha:
		return nil, errors.Wrapf(ErrUnimplementedTransform, "id %d", id)
	default:
		return nil, errors.Errorf("transform: unknown transform id %d", id)
	}
}

// Names returns the applied transform names, in application order, for
// FlifInfo.TransformNames().
func (c *Chain) Names() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}
	return names
}

// FinalCRange returns the per-channel range in effect after every stage
// has been applied forward (i.e. the range pixels are entropy-coded in).
func (c *Chain) FinalCRange(base colorspace.CRange) colorspace.CRange {
	cr := base
	for _, s := range c.stages {
		cr = s.CRange(cr)
	}
	return cr
}

// Undo reverses every stage over img, last-applied-first.
func (c *Chain) Undo(img *colorspace.Image) {
	for i := len(c.stages) - 1; i >= 0; i-- {
		c.stages[i].Undo(img)
	}
}
