// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

package evaltreejit

import (
	"encoding/json"
	"os"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// serializedTree is the on-disk representation of a DecisionTree's node
// data, written to the <treeFile> cache key. Following the teacher's own
// persistence convention (encoding/json throughout its serialize/jsonify
// files), the tree cache uses JSON rather than a binary format: cache
// files are small and this keeps them human-inspectable.
//
// Checksum is a fast-path guard computed over the encoded node data: a
// mismatch means the on-disk tree cannot possibly match the in-memory
// one, without needing to decode and compare every node first.
type serializedTree struct {
	Depth        int
	FeatureCount int
	Checksum     uint64
	Nodes        []TreeNode
}

func nodesChecksum(nodes []TreeNode) uint64 {
	buf, err := json.Marshal(nodes)
	if err != nil {
		panic(err) // TreeNode is always marshalable; a failure here is a logic error.
	}
	return xxhash.Sum64(buf)
}

func writeTreeFile(path string, tree *DecisionTree) error {
	st := serializedTree{
		Depth:        tree.depth,
		FeatureCount: tree.featureCount,
		Checksum:     nodesChecksum(tree.nodes),
		Nodes:        tree.nodes,
	}
	buf, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

func readTreeFile(path string) (*serializedTree, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrCacheMiss
	}
	var st serializedTree
	if err := json.Unmarshal(buf, &st); err != nil {
		return nil, ErrCacheStale
	}
	return &st, nil
}

// treeMatches reports whether a cached tree description matches tree
// exactly, so a stale cache (built from different node data under the
// same depth/featureCount key) is never trusted.
func treeMatches(tree *DecisionTree, st *serializedTree) bool {
	if st.Depth != tree.depth || st.FeatureCount != tree.featureCount {
		return false
	}
	if st.Checksum != nodesChecksum(tree.nodes) {
		return false
	}
	return slices.Equal(st.Nodes, tree.nodes)
}
