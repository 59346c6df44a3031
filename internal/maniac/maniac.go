// Package maniac implements the per-channel MANIAC (Meta-Adaptive Near-zero
// Integer Arithmetic Coding) decision trees: a small binary tree, one per
// decoded channel, that routes each pixel to an adaptive chance table based
// on a property vector derived from its already-decoded neighbors, then
// decodes that pixel's residual with the near-zero coder against the
// selected table.
//
// Structurally this plays the same role as the WebP codec's Huffman-tree
// decode in internal/lossless/huffman.go — a small tree read once from the
// bitstream, then walked once per symbol — but the leaves here hold
// adaptive probability tables rather than literal symbols, a node can be
// promoted from a shared "Property" context to a split "Inner" one after a
// fixed number of samples, and the tree is walked once per pixel using a
// derived feature vector rather than bit by bit.
package maniac

import (
	"github.com/pkg/errors"

	"github.com/deepteams/flif/internal/rac"
)

// PropertyRange is the known [Min, Max] a property value can take,
// narrowing as a tree descends so deeper splits only ever need to
// distinguish the sub-range their ancestors already selected.
type PropertyRange struct {
	Min, Max int32
}

// NodeKind distinguishes the five node states a MANIAC tree entry can be
// in: a node starts out as either InactiveLeaf or InactiveProperty while
// only its structure (not yet its chance table) is known, and a Property
// node is promoted to Inner once its sample counter reaches zero, at
// which point its two children are activated (InactiveLeaf -> Leaf,
// InactiveProperty -> Property) with chance tables cloned from the
// parent's.
type NodeKind int

const (
	KindInactiveLeaf NodeKind = iota
	KindInactiveProperty
	KindProperty
	KindInner
	KindLeaf
)

// node is one entry of a Tree's flat array. Left/Right are -1 for nodes
// with no children (the two Leaf kinds).
type node struct {
	Kind        NodeKind
	PropertyID  int32
	Value       int32
	Counter     uint32
	Left, Right int
	Table       *rac.ChanceTable
}

// Tree is a single channel's decision tree.
type Tree struct {
	nodes []node
}

// ErrTooManyNodes is returned when a tree's node count would exceed the
// configured limit, guarding against a corrupt or adversarial stream
// forcing unbounded memory use.
var ErrTooManyNodes = errors.New("maniac: tree exceeds node limit")

// ErrInvalidTree is returned when a node's property selector names a
// property whose range cannot be split (Min >= Max), which the stream
// should never produce.
var ErrInvalidTree = errors.New("maniac: split on non-splittable property")

// buildContext holds the three chance tables used only while reading a
// tree's structure from the bitstream: one for the property selector, one
// for the sample counter, one for the split (test) value. They are
// discarded once LoadTree returns; they are unrelated to the per-node
// tables leaves and promoted Property nodes decode residuals against.
type buildContext struct {
	property *rac.ChanceTable
	counter  *rac.ChanceTable
	testVal  *rac.ChanceTable
}

// pendingNode is one entry of LoadTree's work stack: a node index whose
// structure still needs to be read, plus the property ranges in scope at
// that point in the tree.
type pendingNode struct {
	index  int
	prange []PropertyRange
}

// LoadTree reads one channel's decision tree from d. prange is the
// property vector's initial range (see BuildPropertyRanges), maxNodes is
// the configured ceiling on total node count, and updates is the shared
// chance-adaptation rule for every table this tree ever allocates.
//
// Construction is iterative (a work stack rather than recursion) so the
// flat node array always holds parents before children, matching
// flif.rs's ManiacTree::create_nodes: the root (index 0) is read active
// (Leaf or Property, with its own chance table already allocated); every
// other node is read inactive (InactiveLeaf or InactiveProperty, with no
// table yet) and only gets activated later, during decoding, the first
// time traversal reaches it.
func LoadTree(d *rac.Decoder, prange []PropertyRange, maxNodes int, updates *rac.UpdateTable) (*Tree, error) {
	bc := buildContext{
		property: rac.NewChanceTable(updates),
		counter:  rac.NewChanceTable(updates),
		testVal:  rac.NewChanceTable(updates),
	}

	placeholder := node{Kind: KindInactiveLeaf, Left: -1, Right: -1}
	t := &Tree{nodes: []node{placeholder}}

	stack := []pendingNode{{index: 0, prange: append([]PropertyRange(nil), prange...)}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(t.nodes) > maxNodes {
			return nil, ErrTooManyNodes
		}

		childStart := len(t.nodes)
		var n node
		var err error
		if cur.index == 0 {
			n, err = readRootNode(d, &bc, updates, cur.prange, childStart)
		} else {
			n, err = readInnerNode(d, &bc, cur.prange, childStart)
		}
		if err != nil {
			return nil, err
		}

		if n.Kind == KindProperty || n.Kind == KindInactiveProperty {
			if childStart >= len(t.nodes) {
				t.nodes = append(t.nodes, placeholder, placeholder)
			}

			leftRange := append([]PropertyRange(nil), cur.prange...)
			leftRange[n.PropertyID].Min = n.Value + 1

			rightRange := append([]PropertyRange(nil), cur.prange...)
			rightRange[n.PropertyID].Max = n.Value

			stack = append(stack, pendingNode{index: childStart + 1, prange: rightRange})
			stack = append(stack, pendingNode{index: childStart, prange: leftRange})
		}

		t.nodes[cur.index] = n
	}

	return t, nil
}

// readSplit reads the three values every non-leaf node carries (spec
// §4.6: "three context tables — chooses property, counter, test-value
// respectively"): the property selector (near-zero in [0, len(prange)]
// against context[0], 0 meaning "this is a leaf"), the sample counter
// (near-zero in [1, 512] against context[1]), and the split value
// (near-zero in [prange[property].Min, prange[property].Max-1] against
// context[2]). ok is false when the selector chose "leaf".
func readSplit(d *rac.Decoder, bc *buildContext, prange []PropertyRange) (propID int32, value int32, counter uint32, ok bool, err error) {
	selector, err := d.ReadNearZero(bc.property, 0, int64(len(prange)))
	if err != nil {
		return 0, 0, 0, false, errors.WithMessage(err, "maniac: reading property selector")
	}
	if selector == 0 {
		return 0, 0, 0, false, nil
	}
	propID = int32(selector - 1)

	r := prange[propID]
	if r.Min >= r.Max {
		return 0, 0, 0, false, errors.Wrapf(ErrInvalidTree, "property %d", propID)
	}

	c, err := d.ReadNearZero(bc.counter, 1, 512)
	if err != nil {
		return 0, 0, 0, false, errors.WithMessage(err, "maniac: reading node counter")
	}

	v, err := d.ReadNearZero(bc.testVal, int64(r.Min), int64(r.Max)-1)
	if err != nil {
		return 0, 0, 0, false, errors.WithMessage(err, "maniac: reading node split value")
	}

	return propID, int32(v), uint32(c), true, nil
}

// readRootNode reads the tree's root, which is always active: a fresh
// chance table is allocated whether the root turns out to be a Leaf or a
// Property, matching flif.rs's create_node.
func readRootNode(d *rac.Decoder, bc *buildContext, updates *rac.UpdateTable, prange []PropertyRange, childStart int) (node, error) {
	table := rac.NewChanceTable(updates)

	propID, value, counter, ok, err := readSplit(d, bc, prange)
	if err != nil {
		return node{}, err
	}
	if !ok {
		return node{Kind: KindLeaf, Left: -1, Right: -1, Table: table}, nil
	}

	return node{
		Kind:       KindProperty,
		PropertyID: propID,
		Value:      value,
		Counter:    counter,
		Left:       childStart,
		Right:      childStart + 1,
		Table:      table,
	}, nil
}

// readInnerNode reads any non-root node, which is always read inactive: no
// chance table is allocated until traversal activates it, matching
// flif.rs's create_inner_node.
func readInnerNode(d *rac.Decoder, bc *buildContext, prange []PropertyRange, childStart int) (node, error) {
	propID, value, counter, ok, err := readSplit(d, bc, prange)
	if err != nil {
		return node{}, err
	}
	if !ok {
		return node{Kind: KindInactiveLeaf, Left: -1, Right: -1}, nil
	}

	return node{
		Kind:       KindInactiveProperty,
		PropertyID: propID,
		Value:      value,
		Counter:    counter,
		Left:       childStart,
		Right:      childStart + 1,
	}, nil
}

// Size returns the total number of nodes in the tree.
func (t *Tree) Size() int { return len(t.nodes) }

// Depth returns the tree's maximum root-to-leaf depth.
func (t *Tree) Depth() int {
	type frame struct{ index, depth int }
	largest := 0
	stack := []frame{{0, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > largest {
			largest = f.depth
		}
		n := &t.nodes[f.index]
		switch n.Kind {
		case KindProperty, KindInactiveProperty, KindInner:
			stack = append(stack, frame{n.Right, f.depth + 1}, frame{n.Left, f.depth + 1})
		}
	}
	return largest
}

// activate turns an InactiveLeaf into a Leaf or an InactiveProperty into a
// Property, giving it table as its chance table. Called once per child
// when its parent Property node's counter runs out.
func (t *Tree) activate(idx int, table *rac.ChanceTable) {
	n := &t.nodes[idx]
	switch n.Kind {
	case KindInactiveLeaf:
		*n = node{Kind: KindLeaf, Left: -1, Right: -1, Table: table}
	case KindInactiveProperty:
		*n = node{
			Kind:       KindProperty,
			PropertyID: n.PropertyID,
			Value:      n.Value,
			Counter:    n.Counter,
			Left:       n.Left,
			Right:      n.Right,
			Table:      table,
		}
	}
}

// Decode walks the tree for props, decoding a near-zero residual in
// [min, max] against the chance table the walk selects, and returns it.
// min/max are the guessed value's distance to the pixel's known color
// bounds, i.e. the caller has already translated absolute bounds into a
// residual range centered so that 0 means "matches the guess exactly".
//
// Decode mutates the tree: a Property node whose counter has run out only
// gets promoted to Inner the first time traversal reaches it afterward,
// at which point both children are activated with chance tables cloned
// from the shared one (flif.rs's ManiacNode::apply).
func (t *Tree) Decode(d *rac.Decoder, props []int32, min, max int64) (int64, error) {
	idx := 0
	for {
		n := &t.nodes[idx]
		switch n.Kind {
		case KindInner:
			if props[n.PropertyID] > n.Value {
				idx = n.Left
			} else {
				idx = n.Right
			}

		case KindLeaf:
			return d.ReadNearZero(n.Table, min, max)

		case KindProperty:
			if n.Counter > 0 {
				val, err := d.ReadNearZero(n.Table, min, max)
				if err != nil {
					return 0, err
				}
				n.Counter--
				return val, nil
			}

			// Counter already ran out on a previous visit: this sample
			// decodes against whichever branch it falls into, using a
			// clone of the shared table, and both children are activated
			// with their own clone before this node becomes Inner.
			leftTable := n.Table.Clone()
			rightTable := n.Table.Clone()

			var val int64
			var err error
			if props[n.PropertyID] > n.Value {
				val, err = d.ReadNearZero(leftTable, min, max)
			} else {
				val, err = d.ReadNearZero(rightTable, min, max)
			}
			if err != nil {
				return 0, err
			}

			left, right := n.Left, n.Right
			propID, value := n.PropertyID, n.Value
			t.activate(left, leftTable)
			t.activate(right, rightTable)

			*n = node{Kind: KindInner, PropertyID: propID, Value: value, Left: left, Right: right}
			return val, nil

		default:
			return 0, errors.New("maniac: decode reached an inactive node")
		}
	}
}
