// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package blp

// LevelSize returns the width (or height) of the given mip level of an image
// whose base width (or height) is base. It is never less than 1.
func LevelSize(base int, level int) int {
	return max(1, base>>max(level, 0))
}

// MaxValidLevel returns the index of the last mip level before the first
// zero entry of sizes, or 15 if there is no zero entry. It returns -1 when
// sizes[0] is zero.
func MaxValidLevel(sizes *[MaxMipLevels]uint32) int {
	for i, s := range sizes {
		if s == 0 {
			return i - 1
		}
	}
	return MaxMipLevels - 1
}

// ClampLevel clamps level to [0, MaxValidLevel(sizes)]. Legacy tools treat a
// too-high level request as a request for the smallest stored level, so this
// is not an error.
func ClampLevel(level int, sizes *[MaxMipLevels]uint32) int {
	if m := MaxValidLevel(sizes); level > m {
		level = m
	}
	return max(level, 0)
}

// AutoMipCount returns the number of mip levels needed to halve an image of
// the given size down to 1 pixel along its longer side, counting both the
// base and the 1 pixel level. The result is in [1, MaxMipLevels].
func AutoMipCount(width int, height int) int {
	n := 1
	for s := max(width, height); (s > 1) && (n < MaxMipLevels); s >>= 1 {
		n++
	}
	return n
}
