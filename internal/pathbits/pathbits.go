// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

// Package pathbits builds, for a k-level subtree, the set of root-to-leaf
// bit constraints the codegen emitter needs to turn a condition-vector
// switch into per-leaf case blocks.
package pathbits

// true routes to the left child (2*bitOffset+1), false to the right
// (2*bitOffset+2): a node's predicate is a LessThan-style comparison, and
// "true" (condition holds) descends toward the lower-valued subtree that
// convention puts on the left.

// Leaf describes one of a k-level subtree's 2^k leaves.
type Leaf struct {
	// Slot is the leaf's position in the subtree's own breadth-first
	// numbering, continuing the same 2i+1/2i+2 child recursion used for
	// the subtree's internal bit-offsets one level past the deepest
	// internal level. Combined with the subtree root via
	// index.BitOffsetToGlobal, it resolves to the leaf's global index.
	Slot int

	// Bits maps the bit-offset of every ancestor on this leaf's path
	// (within the subtree's internal bit-offsets 0..2^k-2) to the boolean
	// outcome required of that ancestor for traversal to reach this leaf.
	Bits map[int]bool
}

// Build returns the levels-level subtree's 2^levels leaf descriptors in
// the recursive true-first, false-second order: the deepest descendant of
// the root's true child comes before any descendant of the false child.
//
// The recursion mirrors the tree's own indexing: "this" node's bit-offset
// is threaded down to its children as 2*bitOffset+1 (true) and
// 2*bitOffset+2 (false), so by the time remaining reaches zero the
// bitOffset parameter already equals the leaf's breadth-first slot.
func Build(levels int) []Leaf {
	return build(0, levels)
}

func build(bitOffset, remaining int) []Leaf {
	if remaining == 0 {
		return []Leaf{{Slot: bitOffset, Bits: map[int]bool{}}}
	}

	trueLeaves := build(2*bitOffset+1, remaining-1)
	for i := range trueLeaves {
		trueLeaves[i].Bits[bitOffset] = true
	}

	falseLeaves := build(2*bitOffset+2, remaining-1)
	for i := range falseLeaves {
		falseLeaves[i].Bits[bitOffset] = false
	}

	return append(trueLeaves, falseLeaves...)
}
