// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package blp

import (
	"bytes"
	"errors"
	"testing"
)

func TestAlphaBufferLen(tt *testing.T) {
	testCases := []struct {
		n     int
		depth uint32
		want  int
	}{
		{0, 8, 0},
		{5, 0, 0},
		{5, 1, 1},
		{8, 1, 1},
		{9, 1, 2},
		{5, 4, 3},
		{6, 4, 3},
		{5, 8, 5},
		{5, 2, -1},
		{5, 16, -1},
	}
	for _, tc := range testCases {
		if got := AlphaBufferLen(tc.n, tc.depth); got != tc.want {
			tt.Errorf("AlphaBufferLen(%d, %d): got %d, want %d", tc.n, tc.depth, got, tc.want)
		}
	}
}

func TestAlphaPacking(tt *testing.T) {
	testCases := []struct {
		name     string
		depth    uint32
		samples  []byte
		packed   []byte
		unpacked []byte
	}{{
		name:     "depth1",
		depth:    1,
		samples:  []byte{0xFF, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x00, 0x7F, 0x80},
		packed:   []byte{0x09, 0x01},
		unpacked: []byte{0xFF, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x00, 0x00, 0xFF},
	}, {
		name:     "depth4",
		depth:    4,
		samples:  []byte{0xAA, 0x55, 0xFF, 0x80, 0x07},
		packed:   []byte{0xA5, 0xF8, 0x00},
		unpacked: []byte{0xAA, 0x55, 0xFF, 0x88, 0x00},
	}, {
		name:     "depth8",
		depth:    8,
		samples:  []byte{0x00, 0x01, 0x7F, 0xFE},
		packed:   []byte{0x00, 0x01, 0x7F, 0xFE},
		unpacked: []byte{0x00, 0x01, 0x7F, 0xFE},
	}, {
		name:     "depth0",
		depth:    0,
		samples:  []byte{0x00, 0x01},
		packed:   nil,
		unpacked: []byte{0xFF, 0xFF},
	}}

	for _, tc := range testCases {
		packed, err := AppendAlpha(nil, tc.samples, tc.depth)
		if err != nil {
			tt.Errorf("tc=%q: AppendAlpha: %v", tc.name, err)
			continue
		}
		if !bytes.Equal(packed, tc.packed) {
			tt.Errorf("tc=%q: packed: got % 02X, want % 02X", tc.name, packed, tc.packed)
		}
		if got, want := len(packed), AlphaBufferLen(len(tc.samples), tc.depth); got != want {
			tt.Errorf("tc=%q: packed length: got %d, want %d", tc.name, got, want)
		}

		unpacked := make([]byte, len(tc.samples))
		if err := UnpackAlpha(unpacked, packed, tc.depth); err != nil {
			tt.Errorf("tc=%q: UnpackAlpha: %v", tc.name, err)
			continue
		}
		if !bytes.Equal(unpacked, tc.unpacked) {
			tt.Errorf("tc=%q: unpacked: got % 02X, want % 02X", tc.name, unpacked, tc.unpacked)
		}
	}
}

func TestAlphaRoundTrip(tt *testing.T) {
	for _, depth := range []uint32{1, 4, 8} {
		// Samples that are exactly representable at this depth.
		step := 0xFF / ((1 << depth) - 1)
		samples := make([]byte, 301)
		for i := range samples {
			samples[i] = byte(((i * 7) % (1 << depth)) * step)
		}

		packed, err := AppendAlpha([]byte{0xEE}, samples, depth)
		if err != nil {
			tt.Fatalf("depth=%d: AppendAlpha: %v", depth, err)
		}
		if packed[0] != 0xEE {
			tt.Errorf("depth=%d: AppendAlpha clobbered dst", depth)
		}

		got := make([]byte, len(samples))
		if err := UnpackAlpha(got, packed[1:], depth); err != nil {
			tt.Fatalf("depth=%d: UnpackAlpha: %v", depth, err)
		}
		if !bytes.Equal(got, samples) {
			tt.Errorf("depth=%d: round trip mismatch:\ngot  % 02X\nwant % 02X", depth, got, samples)
		}
	}
}

func TestAlphaErrors(tt *testing.T) {
	if _, err := AppendAlpha(nil, []byte{1}, 2); !errors.Is(err, ErrUnsupportedAlphaDepth) {
		tt.Errorf("AppendAlpha depth 2: got %v, want %v", err, ErrUnsupportedAlphaDepth)
	}
	if err := UnpackAlpha(make([]byte, 1), []byte{1}, 3); !errors.Is(err, ErrUnsupportedAlphaDepth) {
		tt.Errorf("UnpackAlpha depth 3: got %v, want %v", err, ErrUnsupportedAlphaDepth)
	}

	var tdErr *TruncatedDataError
	if err := UnpackAlpha(make([]byte, 5), []byte{1, 2}, 4); !errors.As(err, &tdErr) {
		tt.Errorf("UnpackAlpha short: got %v, want a *TruncatedDataError", err)
	} else if (tdErr.Length != 3) || (tdErr.Available != 2) {
		tt.Errorf("UnpackAlpha short: got %+v", *tdErr)
	}
}
