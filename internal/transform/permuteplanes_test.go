package transform

import (
	"testing"

	"github.com/deepteams/flif/internal/colorspace"
)

func TestPermutePlanesUndoIsInvolution(t *testing.T) {
	pp := newPermutePlanes(colorspace.CRange{})

	img := colorspace.NewImage(1, 1, colorspace.RGBA)
	original := colorspace.Pixel{Values: [4]colorspace.ColorValue{1, 2, 3, 4}}
	img.Set(0, 0, original)

	pp.Undo(img)
	pp.Undo(img)

	if got := img.At(0, 0); got != original {
		t.Errorf("Undo() applied twice = %+v, want %+v (involution under fixed permutation)", got, original)
	}
}
