// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

// Package codegen emits the Go source of a compiled evaluator module for
// a perfect binary decision tree: one function per internal-subtree root,
// each evaluating functionDepth levels via functionDepth/switchDepth
// nested condition-vector switches.
//
// A native JIT toolchain has no stable, unprivileged Go binding; this
// package instead emits ordinary Go source, and the engine package
// submits it to `go build -buildmode=plugin`, the closest the standard
// toolchain offers to compile-and-load-a-module-by-name. The emitted
// functions still honor the evaluator ABI of §6: external symbol
// NodeEvaluator_<globalIndex>, one argument, int64 return, no I/O.
package codegen

import (
	"fmt"
	"strings"

	"github.com/brannur/evaltreejit/internal/index"
	"github.com/brannur/evaltreejit/internal/pathbits"
	"github.com/brannur/evaltreejit/internal/variant"
)

// NodeData is the predicate data codegen needs for one internal node.
// Op and Comparator carry the same integer values as the root package's
// Op and Comparator types; codegen depends on neither to avoid an import
// cycle (root imports codegen), per §6: "the codegen touches [the tree]
// only by index."
type NodeData struct {
	FeatureIdx int
	Op         int
	Comparator int
	Bias       float32
}

const (
	opBypass = iota
	opSqrt
	opLn
)

const (
	comparatorLessThan = iota
	comparatorGreaterThan
)

// TreeAccessor is the minimal read-only view of a tree the emitter needs.
type TreeAccessor interface {
	NumInternal() int64
	Node(i int64) NodeData
}

// Module is the generated Go source for one compiled tree, plus the
// external symbol name of each evaluator function it defines.
type Module struct {
	Source  string
	Symbols []string
}

// Emit generates the Go source for every evaluator function needed to
// traverse tree of the given depth, partitioned per §4.6: one function
// per node on every level that is a multiple of functionDepth, each
// advancing functionDepth levels via nested switches of width
// switchDepth.
//
// Emit does not use packageName: the package clause is always main, as
// go build -buildmode=plugin requires. The engine passes the same name to
// its own build step as the scratch module's path, so successive
// plugin.Open calls in the same process do not collide on Go's global
// plugin symbol table.
func Emit(tree TreeAccessor, depth, featureCount, functionDepth, switchDepth int, packageName string) Module {
	var b strings.Builder
	var symbols []string

	fmt.Fprintf(&b, "// Code generated by evaltreejit codegen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package main\n\n")
	fmt.Fprintf(&b, "import \"math\"\n\n")

	numInternal := tree.NumInternal()

	for level := 0; level < depth; level += functionDepth {
		first := index.FirstOnLevel(level)
		count := int64(1) << uint(level)

		for offset := int64(0); offset < count; offset++ {
			root := first + offset
			name := fmt.Sprintf("NodeEvaluator_%d", root)
			symbols = append(symbols, name)

			fmt.Fprintf(&b, "func %s(input []float32) int64 {\n", name)
			emitFunctionBody(&b, tree, root, functionDepth, switchDepth, numInternal, newCounter())
			fmt.Fprintf(&b, "}\n\n")
		}
	}

	return Module{Source: b.String(), Symbols: symbols}
}

// counter hands out unique suffixes for nested-switch local variables.
type counter struct{ n int }

func newCounter() *counter { return &counter{} }

func (c *counter) next() int {
	c.n++
	return c.n
}

// emitFunctionBody writes the statements of one evaluator function: a
// chain of functionDepth/switchDepth nested condition-vector switches,
// the last of which stores its result and returns it.
func emitFunctionBody(b *strings.Builder, tree TreeAccessor, root int64, remainingFunctionLevels, switchDepth int, numInternal int64, c *counter) {
	resultVar := fmt.Sprintf("result%d", c.next())
	fmt.Fprintf(b, "\tvar %s int64\n", resultVar)
	emitSwitch(b, tree, root, remainingFunctionLevels, switchDepth, numInternal, resultVar, c)
	fmt.Fprintf(b, "\treturn %s\n", resultVar)
}

// emitSwitch emits one condition-vector switch over the switchDepth-level
// subtree rooted at subtreeRoot, assigning the traversal's outcome to
// resultVar. If more function-levels remain below this switch, each case
// recurses into a nested switch instead of storing a leaf index.
func emitSwitch(b *strings.Builder, tree TreeAccessor, subtreeRoot int64, remainingFunctionLevels, switchDepth int, numInternal int64, resultVar string, c *counter) {
	id := c.next()
	cvVar := fmt.Sprintf("cv%d", id)
	ni := 1<<uint(switchDepth) - 1

	fmt.Fprintf(b, "\tvar %s uint64\n", cvVar)
	for bo := 0; bo < ni; bo++ {
		global := index.BitOffsetToGlobal(subtreeRoot, bo)
		n := tree.Node(global)
		fmt.Fprintf(b, "\tif %s {\n\t\t%s |= 1 << %d\n\t}\n", condExpr(n), cvVar, bo)
	}

	fmt.Fprintf(b, "\tswitch %s {\n", cvVar)

	leaves := pathbits.Build(switchDepth)
	for _, leaf := range leaves {
		variants := variant.Enumerate(leaf, ni)
		fmt.Fprintf(b, "\tcase ")
		for i, v := range variants {
			if i > 0 {
				fmt.Fprint(b, ", ")
			}
			fmt.Fprintf(b, "%d", v)
		}
		fmt.Fprint(b, ":\n")

		globalLeaf := index.BitOffsetToGlobal(subtreeRoot, leaf.Slot)
		nextRemaining := remainingFunctionLevels - switchDepth

		if nextRemaining > 0 && globalLeaf < numInternal {
			emitSwitch(b, tree, globalLeaf, nextRemaining, switchDepth, numInternal, resultVar, c)
		} else {
			fmt.Fprintf(b, "\t\t%s = %d\n", resultVar, globalLeaf)
		}
	}

	fmt.Fprintf(b, "\t}\n")
}

// condExpr renders the Go boolean expression for node n's predicate.
// true routes left (bit set to 1), matching the tree package's
// left-child-on-true convention.
func condExpr(n NodeData) string {
	w := fmt.Sprintf("input[%d]", n.FeatureIdx)
	switch n.Op {
	case opSqrt:
		w = fmt.Sprintf("float32(math.Sqrt(float64(%s)))", w)
	case opLn:
		w = fmt.Sprintf("float32(math.Log(float64(%s)))", w)
	}

	switch n.Comparator {
	case comparatorLessThan:
		return fmt.Sprintf("%s < %s", w, biasLiteral(n.Bias))
	case comparatorGreaterThan:
		return fmt.Sprintf("%s > %s", w, biasLiteral(n.Bias))
	default:
		panic("codegen: unknown comparator")
	}
}

func biasLiteral(f float32) string {
	return fmt.Sprintf("float32(%v)", float64(f))
}
