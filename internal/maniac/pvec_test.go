package maniac

import (
	"testing"

	"github.com/deepteams/flif/internal/colorspace"
)

func TestGuessMedian3(t *testing.T) {
	n := Neighborhood{
		Left: 10, HasLeft: true,
		Top: 20, HasTop: true,
		TopLeft: 5, HasTopLeft: true,
	}
	// gradient = left+top-topleft = 25, clamped to [min(10,20), max(10,20)] = [10,20].
	got := Guess(n, 0)
	if got != 20 {
		t.Errorf("Guess() = %d, want 20 (clamped gradient)", got)
	}
}

func TestGuessNoNeighbors(t *testing.T) {
	got := Guess(Neighborhood{}, 128)
	if got != 128 {
		t.Errorf("Guess() with no neighbors = %d, want channel midpoint 128", got)
	}
}

func TestBuildPropertyRangesOrder(t *testing.T) {
	decoded := colorspace.CRange{
		colorspace.ColorRange{Min: 0, Max: 255}, // Y
		colorspace.ColorRange{Min: -100, Max: 100}, // Co
	}
	order := []colorspace.Channel{colorspace.ChanY, colorspace.ChanCo}
	ranges := BuildPropertyRanges(order, colorspace.ChanCg, decoded, 50)

	// Expect: Y range, Co range, median-index [0,2], then 5 maxdiff slots.
	if len(ranges) != 2+1+5 {
		t.Fatalf("len(ranges) = %d, want 8", len(ranges))
	}
	if ranges[0] != (PropertyRange{Min: 0, Max: 255}) {
		t.Errorf("ranges[0] = %+v, want Y range", ranges[0])
	}
	if ranges[2] != (PropertyRange{Min: 0, Max: 2}) {
		t.Errorf("ranges[2] = %+v, want median-index range", ranges[2])
	}
}
