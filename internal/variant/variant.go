// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

// Package variant expands a leaf's fixed-bit path template into the full
// set of condition-vector values that route to that leaf, so the codegen
// emitter can attach every such value as a case label targeting the
// leaf's block.
package variant

import "github.com/brannur/evaltreejit/internal/pathbits"

// Enumerate returns every condition-vector value that routes to leaf,
// given that the subtree's condition vector has numInternal meaningful
// bits (0..numInternal-1). Bits present in leaf.Bits are fixed to their
// required value; the remaining "don't care" bits are enumerated over
// every combination, producing 2^v values where v = numInternal -
// len(leaf.Bits).
func Enumerate(leaf pathbits.Leaf, numInternal int) []uint64 {
	var template uint64
	var freeMask uint64

	for b := 0; b < numInternal; b++ {
		v, ok := leaf.Bits[b]
		if !ok {
			freeMask |= 1 << uint(b)
			continue
		}
		if v {
			template |= 1 << uint(b)
		}
	}

	free := freeBits(freeMask)
	variants := make([]uint64, 0, 1<<uint(len(free)))

	for combo := uint64(0); combo < 1<<uint(len(free)); combo++ {
		var extra uint64
		for i, b := range free {
			if combo&(1<<uint(i)) != 0 {
				extra |= 1 << uint(b)
			}
		}
		variants = append(variants, template|extra)
	}

	return variants
}

func freeBits(mask uint64) []int {
	var bits []int
	for b := 0; b < 64; b++ {
		if mask&(1<<uint(b)) != 0 {
			bits = append(bits, b)
		}
	}
	return bits
}
