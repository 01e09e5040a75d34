// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

package evaltreejit

import (
	"math"
	"strconv"

	"github.com/brannur/evaltreejit/internal/index"
)

// Op is a unary transform applied to a feature value before comparison.
type Op int

const (
	// Bypass leaves the feature value unchanged.
	Bypass Op = iota
	// Sqrt applies the native square root.
	Sqrt
	// Ln applies the natural logarithm.
	Ln
)

func (o Op) String() string {
	switch o {
	case Bypass:
		return "Bypass"
	case Sqrt:
		return "Sqrt"
	case Ln:
		return "Ln"
	default:
		return "Op(" + strconv.Itoa(int(o)) + ")"
	}
}

// Comparator is the ordered relation a predicate tests between the
// transformed feature value and the node's bias.
type Comparator int

const (
	// LessThan is true iff the transformed value is less than bias.
	LessThan Comparator = iota
	// GreaterThan is true iff the transformed value is greater than bias.
	GreaterThan
)

func (c Comparator) String() string {
	switch c {
	case LessThan:
		return "LessThan"
	case GreaterThan:
		return "GreaterThan"
	default:
		return "Comparator(" + strconv.Itoa(int(c)) + ")"
	}
}

// TreeNode is an internal node's predicate: true iff
// comparator(op(input[featureIdx]), bias) holds.
type TreeNode struct {
	FeatureIdx int
	Op         Op
	Comparator Comparator
	Bias       float32
}

// Eval reports whether this node's predicate holds for input, per the
// convention that the left child (2i+1) is reached on true and the right
// child (2i+2) on false. NaN inputs compare false under both orderings,
// so NaN deterministically routes right.
func (n TreeNode) Eval(input []float32) bool {
	w := applyOp(n.Op, input[n.FeatureIdx])
	switch n.Comparator {
	case LessThan:
		return w < n.Bias
	case GreaterThan:
		return w > n.Bias
	default:
		panic("evaltreejit: unknown comparator")
	}
}

func applyOp(op Op, v float32) float32 {
	switch op {
	case Bypass:
		return v
	case Sqrt:
		return float32(math.Sqrt(float64(v)))
	case Ln:
		return float32(math.Log(float64(v)))
	default:
		panic("evaltreejit: unknown op")
	}
}

// DecisionTree is a read-only, perfect binary tree of depth Depth. It is
// never mutated once constructed; the codegen and JIT layers only read
// from it.
type DecisionTree struct {
	depth        int
	featureCount int
	nodes        []TreeNode // indexed 0..NumInternal()-1
}

// NewDecisionTree builds a DecisionTree of the given depth from nodes,
// which must hold exactly NumInternal(depth) entries in breadth-first
// order. It panics if depth is not positive, nodes has the wrong length,
// or any node references a feature index outside [0, featureCount).
func NewDecisionTree(depth, featureCount int, nodes []TreeNode) *DecisionTree {
	if depth <= 0 {
		panic("evaltreejit: tree depth must be positive")
	}
	if featureCount <= 0 {
		panic("evaltreejit: feature count must be positive")
	}

	want := NumInternal(depth)
	if int64(len(nodes)) != want {
		panic("evaltreejit: wrong node count for depth")
	}
	for _, n := range nodes {
		if n.FeatureIdx < 0 || n.FeatureIdx >= featureCount {
			panic("evaltreejit: node feature index out of range")
		}
	}

	cp := make([]TreeNode, len(nodes))
	copy(cp, nodes)

	return &DecisionTree{depth: depth, featureCount: featureCount, nodes: cp}
}

// Depth returns the tree's depth D.
func (t *DecisionTree) Depth() int { return t.depth }

// FeatureCount returns the number of input features the tree's nodes may
// reference.
func (t *DecisionTree) FeatureCount() int { return t.featureCount }

// NumInternal returns 2^Depth() - 1, the number of internal nodes.
func (t *DecisionTree) NumInternal() int64 { return NumInternal(t.depth) }

// NumLeaves returns 2^Depth(), the number of leaves.
func (t *DecisionTree) NumLeaves() int64 { return NumLeaves(t.depth) }

// Node returns the internal node at global index i.
func (t *DecisionTree) Node(i int64) TreeNode { return t.nodes[i] }

// IsLeaf reports whether global index i addresses a leaf rather than an
// internal node.
func (t *DecisionTree) IsLeaf(i int64) bool { return i >= t.NumInternal() }

// NumInternal returns 2^depth - 1, the number of internal nodes in a
// perfect binary tree of the given depth.
func NumInternal(depth int) int64 { return index.NumInternal(depth) }

// NumLeaves returns 2^depth, the number of leaves in a perfect binary
// tree of the given depth.
func NumLeaves(depth int) int64 { return index.NumLeaves(depth) }

// Level returns the zero-based level of global index i, i.e.
// floor(log2(i+1)).
func Level(i int64) int { return index.Level(i) }

