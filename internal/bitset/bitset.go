/*
Copyright 2014 Will Fitzgerald. All rights reserved.
Use of this source code is governed by a BSD-style
license that can be found in the LICENSE file.
*/

// Package bitset implements a growable bitset over non-negative integers.
//
// This is a simplified and stripped down version of:
//
//	github.com/bits-and-blooms/bitset
//
// It is used by the variant package to check the exhaustiveness and
// disjointness properties of the condition-vector variants generated for
// a leaf: each leaf's variant set is ORed into a running union, and
// ANDed against every other leaf's set to confirm no overlap.
//
// All bugs belong to me.
package bitset

import (
	"math/bits"
)

// the wordSize of a bit set
const wordSize = 64

// log2WordSize is lg(wordSize)
const log2WordSize = 6

// A BitSet is a slice of words. This is an internal package
// with a wide open public API.
type BitSet []uint64

// extendSet adds additional words to incorporate new bits if needed.
func (b *BitSet) extendSet(i uint) {
	nsize := wordsNeeded(i)
	if b == nil {
		*b = make([]uint64, nsize)
	} else if len(*b) < nsize {
		newset := make([]uint64, nsize)
		copy(newset, *b)
		*b = newset
	}
}

// bitsCapacity returns the number of possible bits in the current set.
func (b BitSet) bitsCapacity() uint {
	return uint(len(b) * 64)
}

// wordsNeeded calculates the number of words needed to hold bit index i.
func wordsNeeded(i uint) int {
	return int(i+wordSize) >> log2WordSize
}

// bitsIndex calculates the index of i in a `uint64`
func bitsIndex(i uint) uint {
	return i & (wordSize - 1) // (i % 64) but faster
}

// Test whether bit i is set.
func (b BitSet) Test(i uint) bool {
	if i >= b.bitsCapacity() {
		return false
	}
	return b[i>>log2WordSize]&(1<<bitsIndex(i)) != 0
}

// Set bit i to 1, the capacity of the bitset is increased accordingly.
func (b *BitSet) Set(i uint) {
	if i >= b.bitsCapacity() {
		b.extendSet(i)
	}
	(*b)[i>>log2WordSize] |= (1 << bitsIndex(i))
}

// InPlaceUnion creates the destructive union of base set with compare set.
// This is the BitSet equivalent of | (or).
func (b *BitSet) InPlaceUnion(c BitSet) {
	bLen := len(*b)
	cLen := len(c)

	if bLen >= cLen {
		for i := range cLen {
			(*b)[i] |= c[i]
		}
		return
	}

	newset := make([]uint64, cLen)
	copy(newset, *b)
	*b = newset

	for i := range cLen {
		(*b)[i] |= c[i]
	}
}

// IntersectionCardinality computes the cardinality of the intersection
// of b and c, used to assert that two leaves' variant sets are disjoint
// (cardinality zero).
func (b BitSet) IntersectionCardinality(c BitSet) uint {
	if len(b) <= len(c) {
		return uint(popcntAndSlice(b, c))
	}
	return uint(popcntAndSlice(c, b))
}

// Count (number of set bits).
// Also known as "popcount" or "population count".
func (b BitSet) Count() int {
	return popcntSlice(b)
}

func popcntSlice(s []uint64) int {
	var cnt int
	for _, x := range s {
		cnt += bits.OnesCount64(x)
	}
	return cnt
}

func popcntAndSlice(s, m []uint64) int {
	var cnt int
	for i := range s {
		// panics if mask slice m is too short
		cnt += bits.OnesCount64(s[i] & m[i])
	}
	return cnt
}
