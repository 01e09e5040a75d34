// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

// Package index maps between the global index space of a perfect binary
// tree and the local bit-offset space of a subtree embedded inside it.
//
// A perfect binary tree of depth D has its N = 2^D - 1 internal nodes and
// 2^D leaves numbered breadth-first: node i has children 2i+1 (true) and
// 2i+2 (false). A subtree rooted at global index R occupies a contiguous
// block of indices on every level below R; this package computes that
// block's offset so the codegen emitter can address ancestors of a leaf
// without walking the tree.
package index

import "math/bits"

// Level returns the zero-based level of global index i, i.e. floor(log2(i+1)).
func Level(i int64) int {
	return bits.Len64(uint64(i+1)) - 1
}

// FirstOnLevel returns the global index of the first (leftmost) node on
// level, the root being level 0.
func FirstOnLevel(level int) int64 {
	return 1<<uint(level) - 1
}

// NumInternal returns the number of internal nodes, 2^depth - 1, in a
// perfect binary tree of the given depth.
func NumInternal(depth int) int64 {
	return 1<<uint(depth) - 1
}

// NumLeaves returns the number of leaves, 2^depth, in a perfect binary
// tree of the given depth.
func NumLeaves(depth int) int64 {
	return 1 << uint(depth)
}

// BitOffsetToGlobal maps a bit-offset within a subtree rooted at global
// index root to the corresponding global index.
//
// The subtree's internal bit-offsets 0..2^levels-2 are assigned in
// breadth-first order; offsets at 2^levels-1 and beyond address the
// subtree's own leaf frontier, one level below its deepest internal
// level, using the same breadth-first numbering. Both ranges are valid
// inputs: the codegen emitter uses the first to address predicate nodes
// and the second to resolve the global index a leaf descriptor routes to.
func BitOffsetToGlobal(root int64, bitOffset int) int64 {
	rootLevel := Level(root)
	level := bits.Len64(uint64(bitOffset+1)) - 1

	firstOnGlobalLevel := FirstOnLevel(rootLevel + level)
	subtreeRootOffset := root - FirstOnLevel(rootLevel)
	firstSubtreeIdxOnLevel := firstOnGlobalLevel + subtreeRootOffset<<uint(level)

	return firstSubtreeIdxOnLevel + int64(bitOffset) - (1<<uint(level) - 1)
}
