/*
Copyright 2014 Will Fitzgerald. All rights reserved.
Use of this source code is governed by a BSD-style
license that can be found in the LICENSE file.
*/

package bitset

import "testing"

func TestSetTest(t *testing.T) {
	var b BitSet
	if b.Test(0) {
		t.Fatal("empty set must not test true")
	}

	b.Set(63)
	b.Set(64)
	b.Set(200)

	for _, i := range []uint{63, 64, 200} {
		if !b.Test(i) {
			t.Fatalf("bit %d should be set", i)
		}
	}
	if b.Test(65) {
		t.Fatal("bit 65 should not be set")
	}
}

func TestCount(t *testing.T) {
	var b BitSet
	for _, i := range []uint{1, 2, 3, 100, 200} {
		b.Set(i)
	}
	if got := b.Count(); got != 5 {
		t.Fatalf("Count() = %d, want 5", got)
	}
}

func TestIntersectionCardinality(t *testing.T) {
	var a, b BitSet
	for _, i := range []uint{1, 2, 3} {
		a.Set(i)
	}
	for _, i := range []uint{2, 3, 4} {
		b.Set(i)
	}
	if got := a.IntersectionCardinality(b); got != 2 {
		t.Fatalf("IntersectionCardinality() = %d, want 2", got)
	}

	var c BitSet
	c.Set(500)
	if got := a.IntersectionCardinality(c); got != 0 {
		t.Fatalf("IntersectionCardinality() = %d, want 0 (disjoint)", got)
	}
}

func TestInPlaceUnion(t *testing.T) {
	var a, b BitSet
	a.Set(1)
	b.Set(2)
	b.Set(300)

	a.InPlaceUnion(b)

	for _, i := range []uint{1, 2, 300} {
		if !a.Test(i) {
			t.Fatalf("union missing bit %d", i)
		}
	}
	if got := a.Count(); got != 3 {
		t.Fatalf("Count() after union = %d, want 3", got)
	}
}
