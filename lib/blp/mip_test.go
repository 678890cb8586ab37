// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package blp

import (
	"testing"
)

func TestLevelSize(tt *testing.T) {
	for _, base := range []int{1, 2, 3, 7, 64, 100, 255, 256, 1000, 65535} {
		for level := range MaxMipLevels {
			got := LevelSize(base, level)
			want := max(1, base/(1<<level))
			if got != want {
				tt.Errorf("LevelSize(%d, %d): got %d, want %d", base, level, got, want)
			}
			if got < 1 {
				tt.Errorf("LevelSize(%d, %d): got %d, want positive", base, level, got)
			}
		}
	}

	if got := LevelSize(512, 100); got != 1 {
		tt.Errorf("LevelSize(512, 100): got %d, want 1", got)
	}
	if got := LevelSize(512, -1); got != 512 {
		tt.Errorf("LevelSize(512, -1): got %d, want 512", got)
	}
}

func TestMaxValidLevel(tt *testing.T) {
	for k := range MaxMipLevels {
		sizes := [MaxMipLevels]uint32{}
		for i := range k {
			sizes[i] = uint32(100 + i)
		}
		// Entries after the first zero don't matter.
		for i := k + 1; i < MaxMipLevels; i++ {
			sizes[i] = 9
		}
		if got, want := MaxValidLevel(&sizes), k-1; got != want {
			tt.Errorf("zero at %d: got %d, want %d", k, got, want)
		}
	}

	all := [MaxMipLevels]uint32{}
	for i := range all {
		all[i] = 1
	}
	if got := MaxValidLevel(&all); got != 15 {
		tt.Errorf("all nonzero: got %d, want 15", got)
	}
}

func TestClampLevel(tt *testing.T) {
	sizes := [MaxMipLevels]uint32{100, 50}
	if got := MaxValidLevel(&sizes); got != 1 {
		tt.Fatalf("MaxValidLevel: got %d, want 1", got)
	}

	testCases := []struct {
		level, want int
	}{
		{-3, 0},
		{0, 0},
		{1, 1},
		{2, 1},
		{5, 1},
		{1000, 1},
	}
	for _, tc := range testCases {
		if got := ClampLevel(tc.level, &sizes); got != tc.want {
			tt.Errorf("ClampLevel(%d): got %d, want %d", tc.level, got, tc.want)
		}
	}
}

func TestAutoMipCount(tt *testing.T) {
	testCases := []struct {
		w, h, want int
	}{
		{1, 1, 1},
		{2, 1, 2},
		{1, 2, 2},
		{3, 3, 2},
		{4, 4, 3},
		{5, 2, 3},
		{256, 256, 9},
		{512, 128, 10},
		{32768, 1, 16},
		{65535, 65535, 16},
		{1 << 20, 1, 16},
	}
	for _, tc := range testCases {
		if got := AutoMipCount(tc.w, tc.h); got != tc.want {
			tt.Errorf("AutoMipCount(%d, %d): got %d, want %d", tc.w, tc.h, got, tc.want)
		}
	}
}
