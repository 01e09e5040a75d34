// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"strings"
	"testing"
)

type fakeTree struct {
	nodes []NodeData
}

func (f fakeTree) NumInternal() int64   { return int64(len(f.nodes)) }
func (f fakeTree) Node(i int64) NodeData { return f.nodes[i] }

// depth2Tree mirrors the concrete end-to-end scenario: root splits on
// feature 0 at 0.5, both children split on feature 0 at 0.25 and 0.75.
func depth2Tree() fakeTree {
	return fakeTree{nodes: []NodeData{
		{FeatureIdx: 0, Comparator: comparatorLessThan, Bias: 0.5},
		{FeatureIdx: 0, Comparator: comparatorLessThan, Bias: 0.25},
		{FeatureIdx: 0, Comparator: comparatorLessThan, Bias: 0.75},
	}}
}

func TestEmitSingleFunctionWholeTree(t *testing.T) {
	tree := depth2Tree()
	mod := Emit(tree, 2, 1, 2, 2, "gen0")

	if len(mod.Symbols) != 1 || mod.Symbols[0] != "NodeEvaluator_0" {
		t.Fatalf("symbols = %v, want [NodeEvaluator_0]", mod.Symbols)
	}
	if !strings.Contains(mod.Source, "func NodeEvaluator_0(input []float32) int64 {") {
		t.Fatalf("source missing evaluator signature:\n%s", mod.Source)
	}
	// go build -buildmode=plugin requires the built package to be named
	// main regardless of the caller-supplied scratch module name.
	if !strings.Contains(mod.Source, "package main\n") {
		t.Fatalf("source missing package main:\n%s", mod.Source)
	}
	// every leaf's variant set must appear as one case line. Each leaf's
	// path fixes 2 of the 3 condition bits, leaving one free bit, so each
	// case lists two values, and the four cases together cover 0..7.
	for _, want := range []string{"case 3, 7:", "case 1, 5:", "case 4, 6:", "case 0, 2:"} {
		if !strings.Contains(mod.Source, want) {
			t.Fatalf("source missing %q:\n%s", want, mod.Source)
		}
	}
	// the four leaves 3..6 must be stored as results.
	for _, want := range []string{"result1 = 3", "result1 = 4", "result1 = 5", "result1 = 6"} {
		if !strings.Contains(mod.Source, want) {
			t.Fatalf("source missing %q:\n%s", want, mod.Source)
		}
	}
}

func TestEmitNestedSwitchesPerFunction(t *testing.T) {
	// depth 2, functionDepth 2, switchDepth 1: one function per node on
	// level 0, each containing two nested 1-level switches.
	tree := depth2Tree()
	mod := Emit(tree, 2, 1, 2, 1, "gen1")

	if strings.Count(mod.Source, "switch cv") != 3 {
		t.Fatalf("expected 3 nested switches (1 root + 2 children), got source:\n%s", mod.Source)
	}
}

func TestEmitOneFunctionPerLevel(t *testing.T) {
	// depth 2, functionDepth 1: two levels of functions, 1 + 2 = 3 total.
	tree := depth2Tree()
	mod := Emit(tree, 2, 1, 1, 1, "gen2")

	want := []string{"NodeEvaluator_0", "NodeEvaluator_1", "NodeEvaluator_2"}
	if len(mod.Symbols) != len(want) {
		t.Fatalf("symbols = %v, want %v", mod.Symbols, want)
	}
	for _, w := range want {
		found := false
		for _, s := range mod.Symbols {
			if s == w {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing symbol %s in %v", w, mod.Symbols)
		}
	}
}
