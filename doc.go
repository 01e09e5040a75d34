// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

// Package evaltreejit is a just-in-time specializing compiler for
// perfect binary decision trees.
//
// Given a fully populated tree of depth D whose internal nodes each
// evaluate a predicate over one feature of an input vector, Engine
// generates Go evaluator functions that replace interpretive traversal:
// each compiled function advances a fixed number of tree levels per
// call by assembling a condition vector from several node predicates at
// once and dispatching on it with a single switch, rather than
// following one pointer per level.
//
// The core pipeline is: internal/index maps between a subtree's local
// bit-offsets and the full tree's global node indices; internal/pathbits
// builds, for a subtree of k levels, the root-to-leaf bit constraints of
// each of its 2^k leaves; internal/variant expands each leaf's fixed
// bits into the full set of condition-vector values that route to it;
// internal/codegen emits the Go source of the evaluator functions
// themselves; and Engine submits that source to the Go toolchain's
// plugin build mode, the closest equivalent available to a Go program
// without cgo to a native JIT, caching the resulting object file on
// disk keyed by tree shape and compilation parameters.
//
// Compiled evaluators are pure functions of their input and are safe to
// call concurrently from many goroutines once NewEngine returns.
package evaltreejit
