package maniac

import (
	"bytes"
	"testing"

	"github.com/deepteams/flif/internal/bitio"
	"github.com/deepteams/flif/internal/rac"
)

func TestLoadTreeSingleLeafWhenUnsplittable(t *testing.T) {
	d, err := rac.NewDecoder(bitio.NewReader(bytes.NewReader(bytes.Repeat([]byte{0x00}, 16))))
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}

	// An empty property vector forces the property selector's near-zero
	// range to [0, 0], which ReadNearZero short-circuits on min==max
	// without consuming any bits, so LoadTree must produce a single leaf.
	var prange []PropertyRange
	updates := rac.NewUpdateTable(19, 2)

	tree, err := LoadTree(d, prange, 1<<14, updates)
	if err != nil {
		t.Fatalf("LoadTree() error = %v", err)
	}
	if tree.Size() != 1 {
		t.Errorf("Size() = %d, want 1", tree.Size())
	}
	if tree.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", tree.Depth())
	}
}

func TestLoadTreeRespectsNodeLimit(t *testing.T) {
	d, err := rac.NewDecoder(bitio.NewReader(bytes.NewReader(bytes.Repeat([]byte{0x00}, 4096))))
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}

	// A wide splittable range with an adversarial all-zeros bitstream
	// (every decoded bit false, so the Zero bit never ends a selector as
	// "leaf") can drive node construction past any reasonable limit; a tiny limit
	// must surface ErrTooManyNodes rather than allocate unbounded nodes.
	prange := []PropertyRange{{Min: 0, Max: 1000}}
	updates := rac.NewUpdateTable(19, 2)

	_, err = LoadTree(d, prange, 2, updates)
	if err == nil {
		t.Fatal("LoadTree() with node limit 2 on wide range: want error, got nil")
	}
}
