// Copyright 2025 The scopedref Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !scoped_unchecked

package check

// Enabled reports whether live-count bookkeeping is compiled in.
const Enabled = true
