package rac

import "testing"

func TestSeedChances(t *testing.T) {
	ut := NewUpdateTable(19, 2)
	ct := NewChanceTable(ut)

	if got := ct.Get(EntryZero); got != 1000 {
		t.Errorf("Get(EntryZero) = %d, want 1000", got)
	}
	if got := ct.Get(EntrySign); got != 2048 {
		t.Errorf("Get(EntrySign) = %d, want 2048", got)
	}
	if got := ct.Get(expEntry(0, 0)); got != 1000 {
		t.Errorf("Get(exp 0) = %d, want 1000", got)
	}
	if got := ct.Get(mantEntry(7)); got != 2048 {
		t.Errorf("Get(mant 7) = %d, want 2048", got)
	}
}

func TestUpdateTableStaysInBounds(t *testing.T) {
	ut := NewUpdateTable(19, 2)
	// Chance values only ever fall in [cutoff, ChanceScale-cutoff]; 0 and
	// ChanceScale itself are never passed in by a real ChanceTable and
	// would index one past either end of the update table.
	for old := uint32(ut.cutoff); old <= ChanceScale-uint32(ut.cutoff); old += 37 {
		for _, bit := range []bool{true, false} {
			got := ut.Next(bit, uint16(old))
			if uint32(got) > ChanceScale {
				t.Fatalf("Next(%v, %d) = %d, exceeds ChanceScale", bit, old, got)
			}
			if got < ut.cutoff {
				t.Fatalf("Next(%v, %d) = %d, below cutoff %d", bit, old, got, ut.cutoff)
			}
		}
	}
}

func TestChanceTableCloneIsIndependent(t *testing.T) {
	ut := NewUpdateTable(19, 2)
	ct := NewChanceTable(ut)
	clone := ct.Clone()

	ct.Update(EntryZero, true)
	if ct.Get(EntryZero) == clone.Get(EntryZero) {
		t.Fatalf("Clone() shares state with original after Update")
	}
}
