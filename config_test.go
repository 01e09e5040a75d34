// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

package evaltreejit_test

import (
	"testing"

	evaltreejit "github.com/brannur/evaltreejit"
)

func TestNewEnginePanicsOnBadFunctionDepth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic: functionDepth does not divide tree depth")
		}
	}()
	tree := depth2Tree()
	evaltreejit.NewEngine(tree, evaltreejit.Config{FunctionDepth: 3, SwitchDepth: 1})
}

func TestNewEnginePanicsOnBadSwitchDepth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic: switchDepth does not divide functionDepth")
		}
	}()
	tree := depth2Tree()
	evaltreejit.NewEngine(tree, evaltreejit.Config{FunctionDepth: 2, SwitchDepth: 3})
}
