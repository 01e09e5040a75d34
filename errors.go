// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

package evaltreejit

import "errors"

// ErrCacheMiss is returned by the cache loader when the object file, the
// tree file, or both are absent. It is always recoverable: callers fall
// back to recompiling from the in-memory tree.
var ErrCacheMiss = errors.New("evaltreejit: cache miss")

// ErrCacheStale is returned when a cached tree file cannot be decoded or
// its contents do not match the in-memory tree the engine was asked to
// compile, so the accompanying object file cannot be trusted.
var ErrCacheStale = errors.New("evaltreejit: cache stale")
