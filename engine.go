// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

package evaltreejit

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"plugin"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/brannur/evaltreejit/internal/codegen"
	"github.com/brannur/evaltreejit/internal/index"
)

// CompileStats reports how an Engine's evaluators came to be: from the
// on-disk object cache, or freshly generated and compiled.
type CompileStats struct {
	FromCache bool
}

// Engine is the JIT host: it owns a compiled module's loaded plugin and
// the resolved evaluators map, and drives traversal at run time.
//
// There is no native LLVM-style JIT binding available to a Go process
// without cgo; this host emits Go source (internal/codegen) and submits
// it to the standard toolchain's plugin build mode, the closest
// equivalent to "compile a module and resolve symbols from it" that the
// stdlib offers. The object cache semantics of §4.7 map directly onto
// the resulting .so file.
type Engine struct {
	tree       *DecisionTree
	cfg        Config
	evaluators map[int64]func([]float32) int64
	closed     bool

	// Stats records how this instantiation came to have its evaluators.
	Stats CompileStats
}

var nativeTargetOnce sync.Once

// ensureNativeTarget performs process-wide one-time initialization
// equivalent to selecting a native target machine, guarded so that
// multiple engines created in the same process do not re-enter it.
func ensureNativeTarget() {
	nativeTargetOnce.Do(func() {
		if _, err := exec.LookPath("go"); err != nil {
			panic("evaltreejit: JIT unavailable: go toolchain not found in PATH")
		}
	})
}

var moduleCounter atomic.Int64

// NewEngine compiles tree under cfg and resolves its evaluators. If
// cfg.CacheDir is set and a matching tree file and object file are both
// present, compilation is skipped entirely and the cached object is
// loaded instead (Stats.FromCache reports this to callers and tests).
//
// Misconfiguration (cfg.validate), a missing go toolchain, and emitted
// code that fails to compile are all fatal: NewEngine panics rather than
// returning an error, per §7 ("Fatal assertion... indicates an emitter
// bug, not runtime data"). Cache I/O problems are recoverable: NewEngine
// falls back to in-memory compilation.
func NewEngine(tree *DecisionTree, cfg Config) (*Engine, error) {
	cfg.validate(tree.depth)
	ensureNativeTarget()

	var stats CompileStats
	var objPath string

	// A cache directory that cannot be created is a cache I/O error:
	// proceed in-memory with caching disabled.
	if cfg.CacheDir != "" && os.MkdirAll(cfg.CacheDir, 0o755) == nil {
		treePath := filepath.Join(cfg.CacheDir, treeFileName(tree.depth, tree.featureCount))
		objPath = filepath.Join(cfg.CacheDir, objFileName(tree.depth, tree.featureCount, cfg))

		if plug, err := loadFromCache(tree, treePath, objPath); err == nil {
			evaluators, err := resolveSymbols(plug, expectedSymbols(tree, cfg))
			if err != nil {
				panic(err)
			}
			stats.FromCache = true
			return &Engine{tree: tree, cfg: cfg, evaluators: evaluators, Stats: stats}, nil
		}

		// Cache miss or stale: (re)write the tree file so a future
		// instantiation can validate against it. A write failure here
		// is a cache I/O error; proceed in-memory per §7.
		_ = writeTreeFile(treePath, tree)
	}

	adapter := treeAdapter{tree}
	pkgName := fmt.Sprintf("evaltreejitgen%d", moduleCounter.Add(1))
	mod := codegen.Emit(adapter, tree.depth, tree.featureCount, cfg.FunctionDepth, cfg.SwitchDepth, pkgName)

	plug, err := buildAndLoadPlugin(mod.Source, pkgName, objPath)
	if err != nil && objPath != "" {
		// The build may have failed only because the object could not be
		// written at the cache path: retry once without caching.
		plug, err = buildAndLoadPlugin(mod.Source, pkgName, "")
	}
	if err != nil {
		panic(fmt.Sprintf("evaltreejit: emitted module failed verification: %v", err))
	}

	evaluators, err := resolveSymbols(plug, mod.Symbols)
	if err != nil {
		panic(err)
	}

	return &Engine{tree: tree, cfg: cfg, evaluators: evaluators, Stats: stats}, nil
}

// Run traverses tree from the root, invoking the resolved evaluator for
// each internal index reached until a leaf index is returned. It panics
// if invoked after Close, mirroring the dangling-pointer hazard of raw
// JIT function pointers described in §9.
func (e *Engine) Run(input []float32) int64 {
	if e.closed {
		panic("evaltreejit: Run called on a closed Engine")
	}

	idx := int64(0)
	n := e.tree.NumInternal()

	for idx < n {
		fn, ok := e.evaluators[idx]
		if !ok {
			panic(fmt.Sprintf("evaltreejit: no evaluator registered for internal index %d", idx))
		}
		idx = fn(input)
	}

	return idx
}

// Close tears down the engine. Function pointers obtained from it become
// invalid; Go plugins cannot be unloaded from a running process, so
// Close only severs the Engine's own references, matching the resource
// model of §5: "function pointers become dangling after teardown."
func (e *Engine) Close() {
	e.closed = true
	e.evaluators = nil
}

type treeAdapter struct{ t *DecisionTree }

func (a treeAdapter) NumInternal() int64 { return a.t.NumInternal() }

func (a treeAdapter) Node(i int64) codegen.NodeData {
	n := a.t.Node(i)
	return codegen.NodeData{
		FeatureIdx: n.FeatureIdx,
		Op:         int(n.Op),
		Comparator: int(n.Comparator),
		Bias:       n.Bias,
	}
}

func loadFromCache(tree *DecisionTree, treePath, objPath string) (*plugin.Plugin, error) {
	st, err := readTreeFile(treePath)
	if err != nil {
		return nil, err
	}
	if !treeMatches(tree, st) {
		return nil, ErrCacheStale
	}
	if _, err := os.Stat(objPath); err != nil {
		return nil, ErrCacheMiss
	}
	return plugin.Open(objPath)
}

// expectedSymbols reconstructs the evaluator symbol names a cached
// object file must export, without re-running the emitter: one per node
// on every level that is a multiple of functionDepth.
func expectedSymbols(tree *DecisionTree, cfg Config) []string {
	var symbols []string
	for level := 0; level < tree.depth; level += cfg.FunctionDepth {
		first := index.FirstOnLevel(level)
		count := int64(1) << uint(level)
		for offset := int64(0); offset < count; offset++ {
			symbols = append(symbols, fmt.Sprintf("NodeEvaluator_%d", first+offset))
		}
	}
	return symbols
}

func resolveSymbols(plug *plugin.Plugin, symbols []string) (map[int64]func([]float32) int64, error) {
	evaluators := make(map[int64]func([]float32) int64, len(symbols))

	for _, name := range symbols {
		sym, err := plug.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("evaltreejit: symbol %s: %w", name, err)
		}
		fn, ok := sym.(func([]float32) int64)
		if !ok {
			return nil, fmt.Errorf("evaltreejit: symbol %s has unexpected type %T", name, sym)
		}
		idx, err := strconv.ParseInt(strings.TrimPrefix(name, "NodeEvaluator_"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("evaltreejit: malformed symbol name %s", name)
		}
		evaluators[idx] = fn
	}

	return evaluators, nil
}

// buildAndLoadPlugin writes source to a scratch module, builds it with
// `go build -buildmode=plugin`, and loads the result. If objPath is
// empty the object is written to a temporary file and discarded after
// loading (caching disabled); otherwise it is built directly at objPath
// so it survives as the on-disk object cache entry.
func buildAndLoadPlugin(source, pkgName, objPath string) (*plugin.Plugin, error) {
	dir, err := os.MkdirTemp("", "evaltreejit-src-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(fmt.Sprintf("module %s\n\ngo 1.23\n", pkgName)), 0o644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, "module.go"), []byte(source), 0o644); err != nil {
		return nil, err
	}

	out := objPath
	if out == "" {
		f, err := os.CreateTemp("", "evaltreejit-*.so")
		if err != nil {
			return nil, err
		}
		out = f.Name()
		f.Close()
		defer os.Remove(out)
	}

	cmd := exec.Command("go", "build", "-buildmode=plugin", "-o", out, ".")
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%w:\n%s", err, output)
	}

	return plugin.Open(out)
}
