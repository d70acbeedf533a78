// Copyright 2025 The scopedref Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Goroutine ID extraction for violation reports.
//
// Reports are produced at most once per process, so the portable
// runtime.Stack parser is fast enough and no per-architecture offsets into
// runtime.g are needed.

package abort

import "runtime"

// goroutineID returns the current goroutine ID, or 0 if it cannot be parsed.
func goroutineID() int64 {
	// Only the first line is needed: "goroutine 123 [running]:".
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID extracts the numeric ID from "goroutine 123 [running]:...".
func parseGID(buf []byte) int64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var gid int64
	for _, c := range buf[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		gid = gid*10 + int64(c-'0')
	}
	return gid
}
