// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

// Package testtree provides the random tree construction and the
// interpretive reference evaluator used only by tests: both are
// explicitly out of the core's scope, but are the "oracle" the
// equivalence property (Equivalence to interpreter) is checked against.
package testtree

import (
	"math/rand/v2"

	evaltreejit "github.com/brannur/evaltreejit"
	"github.com/brannur/evaltreejit/internal/index"
)

// Random builds a random perfect binary tree of the given depth and
// featureCount, each node drawing a uniformly random feature, op,
// comparator, and bias in [0, 1).
func Random(prng *rand.Rand, depth, featureCount int) *evaltreejit.DecisionTree {
	n := index.NumInternal(depth)
	nodes := make([]evaltreejit.TreeNode, n)

	ops := []evaltreejit.Op{evaltreejit.Bypass, evaltreejit.Sqrt, evaltreejit.Ln}
	comparators := []evaltreejit.Comparator{evaltreejit.LessThan, evaltreejit.GreaterThan}

	for i := range nodes {
		nodes[i] = evaltreejit.TreeNode{
			FeatureIdx: prng.IntN(featureCount),
			Op:         ops[prng.IntN(len(ops))],
			Comparator: comparators[prng.IntN(len(comparators))],
			Bias:       float32(prng.Float64()),
		}
	}

	return evaltreejit.NewDecisionTree(depth, featureCount, nodes)
}

// RandomInput returns a random feature vector in [0, 1)^featureCount.
func RandomInput(prng *rand.Rand, featureCount int) []float32 {
	input := make([]float32, featureCount)
	for i := range input {
		input[i] = float32(prng.Float64())
	}
	return input
}

// Interpret walks t from the root, evaluating one predicate per level,
// and returns the terminal leaf index reached. It is the reference
// implementation the compiled evaluators must agree with.
func Interpret(t *evaltreejit.DecisionTree, input []float32) int64 {
	idx := int64(0)
	n := t.NumInternal()

	for idx < n {
		node := t.Node(idx)
		if node.Eval(input) {
			idx = 2*idx + 1
		} else {
			idx = 2*idx + 2
		}
	}

	return idx
}
