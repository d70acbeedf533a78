// Copyright 2025 The scopedref Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build scoped_pincheck

package pinned

import "sync/atomic"

// MoveChecks reports whether guards verify their address at run time.
const MoveChecks = true

// pinState records the counter's address at the first Lift. Handles point
// at the counter, so that is the address that must not change.
type pinState struct {
	home atomic.Pointer[atomic.Int64]
}

// pin records count on first use and reports whether later calls come
// through the same address.
func (p *pinState) pin(count *atomic.Int64) bool {
	home := p.home.Load()
	if home == count {
		return true
	}
	if home == nil && p.home.CompareAndSwap(nil, count) {
		return true
	}
	return p.home.Load() == count
}

// at reports whether count is the pinned address, or nothing was pinned.
func (p *pinState) at(count *atomic.Int64) bool {
	home := p.home.Load()
	return home == nil || home == count
}
