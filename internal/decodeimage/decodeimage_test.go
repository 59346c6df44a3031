package decodeimage

import (
	"testing"

	"github.com/deepteams/flif/internal/colorspace"
	"github.com/deepteams/flif/internal/maniac"
)

func TestNeighborhoodForCorner(t *testing.T) {
	img := colorspace.NewImage(3, 3, colorspace.RGB)
	n := neighborhoodFor(img, 0, 0, colorspace.ChanY)
	if n.HasLeft || n.HasTop || n.HasTopLeft || n.HasTopRight {
		t.Errorf("neighborhoodFor(0,0) = %+v, want no neighbors present", n)
	}
}

func TestNeighborhoodForInterior(t *testing.T) {
	img := colorspace.NewImage(4, 4, colorspace.RGB)
	img.Set(1, 1, colorspace.Pixel{Values: [4]colorspace.ColorValue{7, 0, 0, 0}})

	n := neighborhoodFor(img, 2, 2, colorspace.ChanY)
	if !n.HasTopLeft || n.TopLeft != 7 {
		t.Errorf("neighborhoodFor(2,2).TopLeft = %v (has=%v), want 7 (true)", n.TopLeft, n.HasTopLeft)
	}
}

func TestNeighborhoodMatchesManiacNeighborhood(t *testing.T) {
	// decodeimage.neighborhoodFor must build the same shape maniac.Guess
	// consumes; a field-for-field assignment compile-checks that.
	var n maniac.Neighborhood
	img := colorspace.NewImage(2, 2, colorspace.Monochrome)
	n = neighborhoodFor(img, 1, 1, colorspace.ChanY)
	_ = n
}
