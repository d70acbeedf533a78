// Copyright 2025 The scopedref Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !scoped_pincheck

package pinned

import "sync/atomic"

// MoveChecks reports whether guards verify their address at run time.
const MoveChecks = false

// pinState is empty in the default build. Storing the counter's address in
// the guard would make every guard escape to the heap.
type pinState struct{}

func (*pinState) pin(*atomic.Int64) bool { return true }

func (*pinState) at(*atomic.Int64) bool { return true }
